package output

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTELFormatter records each report as a span.
type OTELFormatter struct {
	tracer trace.Tracer
}

// NewOTELFormatter creates a new OTELFormatter.
func NewOTELFormatter(tracer trace.Tracer) *OTELFormatter {
	return &OTELFormatter{tracer: tracer}
}

// HandleReport emits one "microdump.write" span covering r.Start to r.End.
func (f *OTELFormatter) HandleReport(r *Report) error {
	_, span := f.tracer.Start(context.Background(), "microdump.write",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(r.Start),
	)

	span.SetAttributes(
		attribute.Int("process.pid", r.PID),
		attribute.Int("thread.id", r.TID),
		attribute.Int("microdump.modules", len(r.Modules)),
		attribute.Int("microdump.bytes", r.Bytes),
		attribute.Bool("microdump.ok", r.OK),
	)

	if r.Signal != 0 {
		span.SetAttributes(
			attribute.Int("signal.number", r.Signal),
			attribute.Int("signal.code", r.Code),
			attribute.String("signal.address", fmt.Sprintf("0x%x", r.Addr)),
		)
	}

	for i, issue := range r.Issues {
		span.SetAttributes(attribute.String(fmt.Sprintf("_tracing_warning_%d", i), issue))
	}

	if r.OK {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, "microdump not written")
	}

	span.End(trace.WithTimestamp(r.End))
	return nil
}
