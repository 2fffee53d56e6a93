package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one invocation of the pipeline.
	FieldRunID = "run_id"
	// FieldSubject is the FreeSurfer subject being processed.
	FieldSubject = "subject"
	// FieldHemisphere is "left" or "right".
	FieldHemisphere = "hemisphere"
	// FieldPath is a file path an event refers to.
	FieldPath = "path"
	// FieldEventType classifies a record for filtering and alerting.
	FieldEventType = "event_type"
	// FieldErrorHint suggests what the operator should check.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

type contextKey int

const (
	subjectKey contextKey = iota
	hemisphereKey
)

// WithSubject records the subject on ctx for ContextFields.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// WithHemisphere records the hemisphere on ctx for ContextFields.
func WithHemisphere(ctx context.Context, hemisphere string) context.Context {
	return context.WithValue(ctx, hemisphereKey, hemisphere)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if subject, ok := ctx.Value(subjectKey).(string); ok && subject != "" {
		fields = append(fields, slog.String(FieldSubject, subject))
	}
	if hemi, ok := ctx.Value(hemisphereKey).(string); ok && hemi != "" {
		fields = append(fields, slog.String(FieldHemisphere, hemi))
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
	return logger.With(attrsToArgs(fields)...)
}
