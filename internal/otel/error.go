package otel

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RecordError marks span as failed and attaches err to it as both an event and
// a recorded error, so traces stay searchable by message. Nil errors are a
// no-op, letting callers record unconditionally on exit paths.
func RecordError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
	span.AddEvent(err.Error())
}
