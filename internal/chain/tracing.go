package chain

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/relay/internal/event"
	"github.com/zjrosen/relay/internal/tracing"
)

// Tracing returns a link that wraps the rest of the chain in a span.
// describe names the span suffix and supplies attributes. A nil tracer gives
// a pass-through link.
func Tracing[T any](tracer trace.Tracer, describe func(T) (string, []attribute.KeyValue)) Link[T] {
	if tracer == nil {
		return Middleware("tracing", func(next Handler[T]) Handler[T] { return next })
	}
	return Middleware("tracing", func(next Handler[T]) Handler[T] {
		return HandlerFunc[T](func(ctx context.Context, v T) bool {
			name, attrs := describe(v)
			ctx, span := tracer.Start(ctx, tracing.SpanPrefixChain+name,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			handled := next.Handle(ctx, v)

			span.SetAttributes(attribute.Bool(tracing.AttrHandled, handled))
			if !handled {
				span.AddEvent(tracing.EventDropped)
			}
			span.SetStatus(codes.Ok, "")
			return handled
		})
	})
}

// EventTracing is Tracing specialised for input events.
func EventTracing(tracer trace.Tracer) Link[event.Event] {
	return Tracing(tracer, func(e event.Event) (string, []attribute.KeyValue) {
		return string(e.Kind()), []attribute.KeyValue{
			attribute.String(tracing.AttrEventKind, string(e.Kind())),
			attribute.String(tracing.AttrEventText, e.String()),
		}
	})
}
