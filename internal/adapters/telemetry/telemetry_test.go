package telemetry_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func setupRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })
	return sr, tp
}

func TestOTelTracer_Start(t *testing.T) {
	sr, tp := setupRecorder(t)
	tracer := telemetry.NewTracer(tp, "test")

	ctx, pass := tracer.Start(t.Context(), "pass", ports.WithAttribute("kiln.program", "server"))
	_, invoke := tracer.Start(ctx, "invoke",
		ports.WithAttribute("kiln.plugin", "coffee"),
		ports.WithAttribute("kiln.files", 4),
	)
	invoke.SetAttribute("kiln.seq", 2)
	invoke.End()
	pass.SetAttribute("kiln.changed", true)
	pass.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "invoke", spans[0].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID(), "invoke is a child of pass")
	assert.Equal(t, []attribute.KeyValue{
		attribute.Int("kiln.files", 4),
		attribute.String("kiln.plugin", "coffee"),
		attribute.Int("kiln.seq", 2),
	}, spans[0].Attributes())

	assert.Equal(t, "pass", spans[1].Name())
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("kiln.program", "server"),
		attribute.Bool("kiln.changed", true),
	}, spans[1].Attributes())
}

func TestOTelSpan_SetAttribute(t *testing.T) {
	sr, tp := setupRecorder(t)
	tracer := telemetry.NewTracer(tp, "test")

	_, span := tracer.Start(t.Context(), "attrs")
	span.SetAttribute("s", "v")
	span.SetAttribute("i64", int64(7))
	span.SetAttribute("f", 1.5)
	span.SetAttribute("list", []string{"/a", "/b"})
	span.SetAttribute("other", struct{ X int }{3})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("s", "v"),
		attribute.Int64("i64", 7),
		attribute.Float64("f", 1.5),
		attribute.StringSlice("list", []string{"/a", "/b"}),
		attribute.String("other", "{3}"),
	}, spans[0].Attributes())
}

func TestOTelSpan_RecordError(t *testing.T) {
	sr, tp := setupRecorder(t)
	tracer := telemetry.NewTracer(tp, "test")

	_, span := tracer.Start(t.Context(), "pass")
	span.RecordError(errors.New("plugin invocation failed"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "plugin invocation failed", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestSpanLogger(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	var lines []string
	mockLogger.EXPECT().Info(gomock.Any()).Do(func(msg string) {
		lines = append(lines, msg)
	}).Times(1)

	tp := telemetry.NewProvider(mockLogger)
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	_, span := telemetry.NewTracer(tp, "test").Start(t.Context(), "pass", ports.WithAttribute("kiln.program", "web.browser"))
	span.End()

	require.Len(t, lines, 1)
	assert.Regexp(t, `^pass kiln\.program=web\.browser \(\d+(\.\d+)?[mµn]?s\)$`, lines[0])
}
