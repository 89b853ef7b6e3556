package errors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

func (pe *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", pe.Field, pe.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewRuleViolation creates a validation error whose message is derived from the rule
func NewRuleViolation(field, rule, param string, value interface{}) *ValidationError {
	return NewValidationErrorWithRule(field, RuleMessage(rule, param), rule, value)
}

// NewValidationErrorWithRule creates a new validation error with rule
func NewValidationErrorWithRule(field, message, rule string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    rule,
	}
}

// ToValidationErrors converts validator.ValidationErrors to our custom type
func ToValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors

	if validatorErr, ok := err.(validator.ValidationErrors); ok {
		for _, err := range validatorErr {
			errors = append(errors, ValidationError{
				Field:   err.Field(),
				Message: RuleMessage(err.Tag(), err.Param()),
				Value:   err.Value(),
				Rule:    err.Tag(),
			})
		}
	}

	return errors
}

// RuleMessage returns the user-facing message for a failed validation rule
func RuleMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", param)
	case "max":
		return fmt.Sprintf("must be at most %s", param)
	case "len":
		return fmt.Sprintf("must be exactly %s characters", param)
	case "uuid":
		return "must be a valid UUID"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", param)
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", param)
	case "numeric":
		return "must be a number"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", param)

	// Custom validators
	case "subject_marks":
		return "must be a numeric mark"
	case "university_type":
		return "must be a valid university type (traditional, comprehensive, university_of_technology)"
	case "degree_sort":
		return "must be one of: aps, name, university"

	// Business rule validators
	case "min_subjects":
		return fmt.Sprintf("must contain at least %s subjects", param)
	case "required_subject":
		return fmt.Sprintf("must include %s", param)
	case "unique_subject":
		return "must not repeat a subject"

	default:
		return fmt.Sprintf("validation failed for rule '%s'", rule)
	}
}
