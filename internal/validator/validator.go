package validator

import (
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rebooked/campus-service/internal/models"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator   *validator.Validate
	businessValidator *BusinessValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		businessValidator: NewBusinessValidator(models.LifeOrientationExclusion),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// ValidateBusiness validates business rules only
func (v *Validator) ValidateBusiness(s interface{}) ValidationErrors {
	return v.businessValidator.Validate(s)
}

// Validate performs complete validation (struct + business rules).
// Struct tag failures are returned as ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}

	if errors := v.ValidateBusiness(s); len(errors) > 0 {
		return errors
	}

	return nil
}

// Business returns the business validator
func (v *Validator) Business() *BusinessValidator {
	return v.businessValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("subject_marks", validateSubjectMarks)
	validate.RegisterValidation("university_type", validateUniversityType)
	validate.RegisterValidation("degree_sort", validateDegreeSort)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateSubjectMarks(fl validator.FieldLevel) bool {
	var marks float64
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		marks = fl.Field().Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		marks = float64(fl.Field().Int())
	default:
		return false
	}
	// Out-of-range marks are clamped by the calculator, only NaN is unusable.
	return !math.IsNaN(marks)
}

func validateUniversityType(fl validator.FieldLevel) bool {
	_, ok := models.ParseUniversityType(fl.Field().String())
	return ok
}

func validateDegreeSort(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "aps", "name", "university":
		return true
	}
	return false
}
