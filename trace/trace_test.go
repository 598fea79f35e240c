package trace

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ceyewan/devmetrics/xerrors"
)

func setupRecorder(t *testing.T) (oteltrace.Tracer, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	install(tp)
	return tp.Tracer("test"), recorder
}

func TestConfig_Validate(t *testing.T) {
	assert.ErrorIs(t, (*Config)(nil).validate(), xerrors.ErrInvalidInput)
	assert.ErrorIs(t, (&Config{}).validate(), xerrors.ErrInvalidInput)

	// 未启用时不校验导出参数
	assert.NoError(t, (&Config{ServiceName: "svc", Sampler: 3}).validate())

	cfg := DefaultConfig("svc")
	cfg.Enabled = true
	assert.NoError(t, cfg.validate())

	cfg.Sampler = 1.5
	assert.ErrorIs(t, cfg.validate(), xerrors.ErrInvalidInput)

	cfg = DefaultConfig("svc")
	cfg.Enabled = true
	cfg.Batcher = "stream"
	assert.ErrorIs(t, cfg.validate(), xerrors.ErrInvalidInput)

	cfg = DefaultConfig("svc")
	cfg.Enabled = true
	cfg.Endpoint = ""
	assert.ErrorIs(t, cfg.validate(), xerrors.ErrInvalidInput)
}

func TestInit_DisabledFallsBackToDiscard(t *testing.T) {
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	shutdown, err := Init(DefaultConfig("devmetrics-test"))
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	_, isSDK := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, isSDK)

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	assert.True(t, span.SpanContext().TraceID().IsValid())
}

func TestStartPublishSpan(t *testing.T) {
	tracer, recorder := setupRecorder(t)

	msg := &nats.Msg{Subject: "vm.metrics", Data: []byte("{}\n")}
	_, span := StartPublishSpan(context.Background(), tracer, msg)
	span.End()

	require.NotNil(t, msg.Header)
	assert.NotEmpty(t, http.Header(msg.Header).Get("traceparent"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanNamePublish("vm.metrics"), spans[0].Name())
	assert.Equal(t, oteltrace.SpanKindProducer, spans[0].SpanKind())
	assert.Contains(t, spans[0].Attributes(), attribute.String(AttrMessagingDestination, "vm.metrics"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int(AttrMessagingBodySize, 3))

	// 注入的上下文可被下游还原为同一条 Trace
	extracted := otel.GetTextMapPropagator().Extract(context.Background(),
		propagation.HeaderCarrier(http.Header(msg.Header)))
	assert.Equal(t, spans[0].SpanContext().TraceID(), oteltrace.SpanContextFromContext(extracted).TraceID())
}

func TestStartPublishSpan_NilTracerUsesGlobal(t *testing.T) {
	_, recorder := setupRecorder(t)

	_, span := StartPublishSpan(context.Background(), nil, &nats.Msg{})
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "snapshot.publish", spans[0].Name())
}

func TestMarkSpanError(t *testing.T) {
	tracer, recorder := setupRecorder(t)

	_, span := tracer.Start(context.Background(), "op")
	MarkSpanError(span, nil)
	MarkSpanError(span, errors.New("nats: timeout"))
	MarkSpanError(nil, errors.New("ignored"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "nats: timeout", spans[0].Status().Description)
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, recorder := setupRecorder(t)

	engine := gin.New()
	engine.Use(GinMiddleware("devmetrics-admin"))
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, oteltrace.SpanKindServer, spans[0].SpanKind())
}
