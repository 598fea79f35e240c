package trace

import (
	"context"
	"net/http"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// StartPublishSpan 为一次 NATS 发布启动生产者 Span，并把链路上下文注入 msg.Header
//
// tracer 为 nil 时使用全局 TracerProvider。
func StartPublishSpan(ctx context.Context, tracer oteltrace.Tracer, msg *nats.Msg) (context.Context, oteltrace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}

	spanCtx, span := tracer.Start(ctx, SpanNamePublish(msg.Subject), oteltrace.WithSpanKind(oteltrace.SpanKindProducer))
	span.SetAttributes(
		attribute.String(AttrMessagingSystem, MessagingSystemNATS),
		attribute.String(AttrMessagingDestination, msg.Subject),
		attribute.String(AttrMessagingOperation, MessagingOperationPublish),
		attribute.Int(AttrMessagingBodySize, len(msg.Data)),
	)

	if msg.Header == nil {
		msg.Header = nats.Header{}
	}
	otel.GetTextMapPropagator().Inject(spanCtx, propagation.HeaderCarrier(http.Header(msg.Header)))
	return spanCtx, span
}

// MarkSpanError 记录并将 Span 标记为错误，当 err 不为 nil 时
func MarkSpanError(span oteltrace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
