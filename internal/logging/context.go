package logging

import (
	"context"
	"log/slog"

	"reviewflow/internal/services"
)

const (
	// FieldComponent is the structured logging key for component names.
	FieldComponent = "component"
	// FieldItemID is the structured logging key for work item identifiers.
	FieldItemID = "item_id"
	// FieldStep is the structured logging key for workflow step identifiers.
	FieldStep = "step"
	// FieldAction is the structured logging key for processing action identifiers.
	FieldAction = "action"
	FieldActor  = "actor"
	FieldGroup  = "group"
	FieldRole   = "role"
	// FieldOutcome carries the outcome tag returned by an action.
	FieldOutcome  = "outcome"
	FieldDecision = "decision"
	FieldReason   = "reason"
	FieldError    = "error"
	// FieldRequestID is the structured logging key for request correlation identifiers.
	FieldRequestID = "request_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	scope := services.ScopeFrom(ctx)
	fields := make([]slog.Attr, 0, 3)
	if scope.ItemID != 0 {
		fields = append(fields, slog.Int64(FieldItemID, scope.ItemID))
	}
	if scope.Step != "" {
		fields = append(fields, slog.String(FieldStep, scope.Step))
	}
	if scope.RequestID != "" {
		fields = append(fields, slog.String(FieldRequestID, scope.RequestID))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
