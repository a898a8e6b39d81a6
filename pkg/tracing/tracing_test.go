package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupProvider(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := NewProvider(exporter, Options{ServiceName: "techhaven-test"})
	Install(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func TestStartSpanParentChild(t *testing.T) {
	exporter, tp := setupProvider(t)

	ctx, root := StartSpan(context.Background(), "order", "CreateOrder", attribute.Int("items", 2))
	traceID := TraceID(ctx)
	assert.Len(t, traceID, 32)

	childCtx, child := StartSpan(ctx, "order", "DecrStock")
	assert.Equal(t, traceID, TraceID(childCtx), "子Span与父Span属于同一条链路")
	End(child, nil)
	End(root, nil)

	require.NoError(t, tp.ForceFlush(context.Background()))
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "DecrStock", spans[0].Name)
	assert.Equal(t, root.SpanContext().SpanID(), spans[0].Parent.SpanID())
}

func TestEndRecordsError(t *testing.T) {
	exporter, tp := setupProvider(t)

	_, span := StartSpan(context.Background(), "order", "CancelOrder")
	End(span, errors.New("库存回补失败"))

	require.NoError(t, tp.ForceFlush(context.Background()))
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "库存回补失败", spans[0].Status.Description)
}

func TestTraceIDWithoutSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}
