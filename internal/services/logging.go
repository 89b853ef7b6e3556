package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// LogLevel represents different log levels for service operations
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service   string
	Component string
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

type requestIDKey struct{}

// WithRequestID stores the request id so service logs can be correlated with HTTP logs.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// ===== OPERATION LOGGING =====

// LogOperation records the outcome of one operation. Successes are logged at successLevel,
// failures at a level chosen from the error kind.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, owner string, resourceID string, resourceType string, successLevel LogLevel, duration time.Duration, err error) {
	logLevel := successLevel
	status := "success"

	if err != nil {
		logLevel = LogLevelError
		status = "error"

		// Adjust log level based on error type
		if IsValidation(err) || IsBusinessRule(err) {
			logLevel = LogLevelWarn
			status = "validation_error"
		} else if IsUnauthorized(err) {
			logLevel = LogLevelWarn
			status = "unauthorized"
		} else if IsNotFound(err) {
			logLevel = LogLevelInfo
			status = "not_found"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("owner", owner),
		slog.String("resource_id", resourceID),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var validationErr ValidationErrors
		var businessErr *BusinessRuleError
		if errors.As(err, &validationErr) {
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErr)))
		} else if errors.As(err, &businessErr) {
			attrs = append(attrs, slog.String("business_rule", businessErr.Rule))
		}
	}

	if requestID := requestIDFrom(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	message := fmt.Sprintf("%s operation %s", operation, status)

	switch logLevel {
	case LogLevelDebug:
		l.logger.LogAttrs(ctx, slog.LevelDebug, message, attrs...)
	case LogLevelInfo:
		l.logger.LogAttrs(ctx, slog.LevelInfo, message, attrs...)
	case LogLevelWarn:
		l.logger.LogAttrs(ctx, slog.LevelWarn, message, attrs...)
	case LogLevelError:
		l.logger.LogAttrs(ctx, slog.LevelError, message, attrs...)
	}
}

func (l *ServiceLogger) LogValidationError(ctx context.Context, operation string, validationErrors ValidationErrors) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Int("error_count", len(validationErrors)),
	}

	for i, err := range validationErrors {
		if i < 5 { // Limit to first 5 errors to avoid log spam
			attrs = append(attrs, slog.Group(fmt.Sprintf("error_%d", i+1),
				slog.String("field", err.Field),
				slog.String("message", err.Message),
				slog.Any("value", err.Value),
			))
		}
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Validation failed", attrs...)
}

// LogDiagnostics reports records skipped while scanning the catalog.
func (l *ServiceLogger) LogDiagnostics(ctx context.Context, operation string, diagnostics []Diagnostic) {
	for _, d := range diagnostics {
		l.logger.LogAttrs(ctx, slog.LevelWarn, "Skipped catalog record",
			slog.String("operation", operation),
			slog.String("scope", d.Scope),
			slog.String("record_id", d.RecordID),
			slog.String("message", d.Message),
		)
	}
}

// ===== CONTEXTUAL LOGGER =====

type ContextualLogger struct {
	serviceLogger *ServiceLogger
	ctx           context.Context
	operation     string
	owner         string
	successLevel  LogLevel
	startTime     time.Time
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string, owner string) *ContextualLogger {
	return &ContextualLogger{
		serviceLogger: l,
		ctx:           ctx,
		operation:     operation,
		owner:         owner,
		successLevel:  LogLevelInfo,
		startTime:     time.Now(),
	}
}

// WithReadOperation is WithOperation for lookups; successful reads are logged at debug level.
func (l *ServiceLogger) WithReadOperation(ctx context.Context, operation string, owner string) *ContextualLogger {
	cl := l.WithOperation(ctx, operation, owner)
	cl.successLevel = LogLevelDebug
	return cl
}

func (cl *ContextualLogger) LogResult(resourceID string, resourceType string, err error) {
	cl.serviceLogger.LogOperation(cl.ctx, cl.operation, cl.owner, resourceID, resourceType, cl.successLevel, time.Since(cl.startTime), err)
}
