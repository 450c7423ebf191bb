package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/shortcuts/internal/command"
	"github.com/zjrosen/shortcuts/internal/processor"
)

// NewTracingMiddleware opens a span per processed command. The span is a
// child of the span context the submitter attached to the command. A nil
// tracer yields a pass-through middleware.
func NewTracingMiddleware(tracer trace.Tracer) processor.Middleware {
	if tracer == nil {
		return func(next processor.CommandHandler) processor.CommandHandler {
			return next
		}
	}

	return func(next processor.CommandHandler) processor.CommandHandler {
		return processor.HandlerFunc(func(ctx context.Context, cmd command.Command) (*command.CommandResult, error) {
			ctx = restoreSpanContext(ctx, cmd)

			ctx, span := tracer.Start(ctx, SpanPrefixCommand+cmd.Type().String(),
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			span.SetAttributes(
				attribute.String(AttrCommandID, cmd.ID()),
				attribute.String(AttrCommandType, cmd.Type().String()),
			)
			if s, ok := cmd.(interface{ Source() command.CommandSource }); ok {
				span.SetAttributes(attribute.String(AttrCommandSource, s.Source().String()))
			}

			result, err := next.Handle(ctx, cmd)

			switch {
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			case result != nil && !result.Success && result.Error != nil:
				span.RecordError(result.Error)
				span.SetStatus(codes.Error, result.Error.Error())
			case result != nil && !result.Success:
				span.SetStatus(codes.Error, "command failed without error details")
			default:
				span.SetStatus(codes.Ok, "")
			}
			return result, err
		})
	}
}

// restoreSpanContext parents the command span under the submitter's span.
func restoreSpanContext(ctx context.Context, cmd command.Command) context.Context {
	if c, ok := cmd.(interface{ SpanContext() trace.SpanContext }); ok {
		if sc := c.SpanContext(); sc.IsValid() {
			return trace.ContextWithRemoteSpanContext(ctx, sc)
		}
	}
	return ctx
}
