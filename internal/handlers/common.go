package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rebooked/campus-service/internal/services"
	"github.com/rebooked/campus-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// requestLogger prefers the request-scoped logger installed by utils.ContextLogger.
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.LoggerFromContext(c, h.logger.With(
		"request_id", utils.GetRequestID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	))
}

func requestFields(c *gin.Context, additionalFields []interface{}) []interface{} {
	return append([]interface{}{"owner", ownerKey(c)}, additionalFields...)
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Info(message, requestFields(c, additionalFields)...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.requestLogger(c).LogError(err, message, requestFields(c, additionalFields)...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Warn(message, requestFields(c, additionalFields)...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// handleServiceError maps service errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	var validationError *services.ValidationError
	if errors.As(err, &validationError) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, services.ValidationErrors{*validationError})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, businessRuleError.Message, err, map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUniversityNotFound):
		h.RespondWithError(c, http.StatusNotFound, "University not found", err)
	case errors.Is(err, services.ErrDegreeNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Degree not found", err)
	case errors.Is(err, services.ErrCalculationNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Saved calculation not found", err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "Resource not found", err)
	case errors.Is(err, services.ErrMissingOwner):
		h.RespondWithError(c, http.StatusUnauthorized, "Sign in or send an X-Guest-ID header", err)
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
	case errors.Is(err, services.ErrUnsupportedExportFormat):
		h.RespondWithError(c, http.StatusBadRequest, "Unsupported export format", err, "format must be csv or xlsx")
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request", err, err.Error())
	case services.IsPersistence(err):
		h.RespondWithError(c, http.StatusServiceUnavailable, "Saved calculations are temporarily unavailable", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
