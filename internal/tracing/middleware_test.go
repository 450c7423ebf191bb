package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/shortcuts/internal/command"
	"github.com/zjrosen/shortcuts/internal/processor"
)

type testCommand struct {
	command.BaseCommand
}

func newTestCommand() *testCommand {
	return &testCommand{BaseCommand: command.NewBaseCommand("test_command", command.SourceChannel)}
}

func setupTestTracer(t *testing.T) (trace.Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	return provider.Tracer("test-tracer"), exporter
}

func handlerReturning(res *command.CommandResult, err error) processor.CommandHandler {
	return processor.HandlerFunc(func(context.Context, command.Command) (*command.CommandResult, error) {
		return res, err
	})
}

func TestTracingMiddleware_NilTracerPassesThrough(t *testing.T) {
	wrapped := NewTracingMiddleware(nil)(handlerReturning(command.OK("ok"), nil))

	res, err := wrapped.Handle(context.Background(), newTestCommand())
	require.NoError(t, err)
	require.Equal(t, "ok", res.Data)
}

func TestTracingMiddleware_RecordsSpan(t *testing.T) {
	tracer, exporter := setupTestTracer(t)
	wrapped := NewTracingMiddleware(tracer)(handlerReturning(command.OK(nil), nil))

	cmd := newTestCommand()
	_, err := wrapped.Handle(context.Background(), cmd)
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Equal(t, "command.process.test_command", spans[0].Name)
	require.Equal(t, codes.Ok, spans[0].Status.Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	require.Equal(t, cmd.ID(), attrs[AttrCommandID])
	require.Equal(t, "test_command", attrs[AttrCommandType])
	require.Equal(t, "channel", attrs[AttrCommandSource])
}

func TestTracingMiddleware_RecordsFailures(t *testing.T) {
	tracer, exporter := setupTestTracer(t)

	_, _ = NewTracingMiddleware(tracer)(handlerReturning(nil, errors.New("handler exploded"))).Handle(context.Background(), newTestCommand())
	_, _ = NewTracingMiddleware(tracer)(handlerReturning(command.Fail(errors.New("instance not running")), nil)).Handle(context.Background(), newTestCommand())
	_, _ = NewTracingMiddleware(tracer)(handlerReturning(&command.CommandResult{Success: false}, nil)).Handle(context.Background(), newTestCommand())

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	require.Equal(t, "handler exploded", spans[0].Status.Description)
	require.Equal(t, "instance not running", spans[1].Status.Description)
	require.Equal(t, "command failed without error details", spans[2].Status.Description)
	for _, s := range spans {
		require.Equal(t, codes.Error, s.Status.Code)
	}
}

func TestTracingMiddleware_ParentsUnderSubmitterSpan(t *testing.T) {
	tracer, exporter := setupTestTracer(t)

	_, parent := tracer.Start(context.Background(), "orchestrator.launch")
	cmd := newTestCommand()
	cmd.SetSpanContext(parent.SpanContext())
	parent.End()

	_, err := NewTracingMiddleware(tracer)(handlerReturning(command.OK(nil), nil)).Handle(context.Background(), cmd)
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	child := spans[1]
	require.Equal(t, parent.SpanContext().TraceID(), child.SpanContext.TraceID())
	require.Equal(t, parent.SpanContext().SpanID(), child.Parent.SpanID())
}
