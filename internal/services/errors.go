package services

import (
	"errors"
	"fmt"

	apperrors "github.com/rebooked/campus-service/internal/errors"
	"github.com/rebooked/campus-service/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Catalog errors
	ErrUniversityNotFound = errors.New("university not found")
	ErrDegreeNotFound     = errors.New("degree not found")
	ErrEmptyCatalog       = errors.New("catalog has no universities")

	// Saved calculation errors
	ErrCalculationNotFound = errors.New("saved calculation not found")
	ErrMissingOwner        = errors.New("a user or guest id is required")
	ErrPersistenceFailed   = errors.New("saved calculations are unavailable")

	// Export errors
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUniversityNotFound) ||
		errors.Is(err, ErrDegreeNotFound) ||
		errors.Is(err, ErrCalculationNotFound) ||
		repositories.IsNotFoundError(err)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrMissingOwner)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrUnsupportedExportFormat) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsPersistence checks if error came from the saved calculation store
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistenceFailed)
}
