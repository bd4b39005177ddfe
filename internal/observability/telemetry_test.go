package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/annel0/voxel4d/internal/config"
)

func TestInitTelemetry_DisabledIsNoop(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), config.TracingConfig{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := StartSpan(context.Background(), "world.save", attribute.Int("chunks", 3))
	EndSpan(span, errors.New("disk full"))

	_, loadSpan := StartSpan(context.Background(), "world.load")
	EndSpan(loadSpan, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "world.save", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.Int("chunks", 3))
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}
