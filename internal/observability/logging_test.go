package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestCtxHandler_AddsContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&ctxHandler{slog.NewTextHandler(&buf, nil)})

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithSubject(ctx, "subject-1")
	ctx = WithTraceID(ctx, "trace-1")

	logger.With(slog.String("component", "test")).InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "subject=subject-1")
	assert.Contains(t, out, "trace_id=trace-1")
	assert.Contains(t, out, "component=test")
}

func TestLogOperationFailure_UsesErrorLevelForInternal(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger
	defer SetLogger(prev)
	SetLogger(slog.New(&ctxHandler{slog.NewTextHandler(&buf, nil)}))

	LogOperationFailure(context.Background(), "deletePost", "INTERNAL", errors.New("boom"))
	assert.Contains(t, buf.String(), "level=ERROR")

	buf.Reset()
	LogOperationFailure(context.Background(), "createLike", "CONFLICT", errors.New("dup"))
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues("metricsTest", "ok"))
	RecordOperation("metricsTest", "")
	assert.Equal(t, before+1, testutil.ToFloat64(OperationsTotal.WithLabelValues("metricsTest", "ok")))
}

func TestStoreMetrics_TrackQuery(t *testing.T) {
	m := NewStoreMetrics("test")
	rec := tracetest.NewSpanRecorder()
	prev := Tracer
	Tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)).Tracer("test")
	defer func() { Tracer = prev }()

	done := m.TrackQuery(context.Background(), "get", "posts")
	time.Sleep(time.Millisecond)
	done()

	assert.Equal(t, 1, testutil.CollectAndCount(StoreQueryLatency, "graphql_api_store_latency_seconds"))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "store.get", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("db.system", "test"))
	assert.Contains(t, spans[0].Attributes(), attribute.String("db.collection", "posts"))
}
