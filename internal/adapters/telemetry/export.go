package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/kiln/internal/core/ports"
)

// SpanLogger exports finished spans as one log line each.
type SpanLogger struct {
	logger ports.Logger
}

// NewSpanLogger creates an exporter writing to logger.
func NewSpanLogger(logger ports.Logger) *SpanLogger {
	return &SpanLogger{logger: logger}
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *SpanLogger) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		e.logger.Info(FormatSpan(s))
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *SpanLogger) Shutdown(context.Context) error {
	return nil
}

// FormatSpan renders a span as "name key=value ... (duration)".
// Attributes keep the order in which they were recorded.
func FormatSpan(s sdktrace.ReadOnlySpan) string {
	var b strings.Builder
	b.WriteString(s.Name())
	for _, kv := range s.Attributes() {
		fmt.Fprintf(&b, " %s=%s", kv.Key, kv.Value.Emit())
	}
	fmt.Fprintf(&b, " (%s)", s.EndTime().Sub(s.StartTime()).Round(time.Millisecond))
	return b.String()
}

// NewProvider returns a tracer provider. When logger is non-nil every span is
// written to it as soon as it ends.
func NewProvider(logger ports.Logger) *sdktrace.TracerProvider {
	if logger == nil {
		return sdktrace.NewTracerProvider()
	}
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(NewSpanLogger(logger)))
}
