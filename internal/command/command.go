// Package command provides the command types processed by the FIFO command
// processor. Concrete commands live with the state they mutate and embed
// BaseCommand.
package command

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Command represents an explicit intent entering the processor.
type Command interface {
	// ID returns unique command identifier for tracing/correlation
	ID() string
	// Type returns the command type for handler routing
	Type() CommandType
	// Validate checks command preconditions before execution
	Validate() error
	// CreatedAt returns when command was created
	CreatedAt() time.Time
}

// CommandType identifies the kind of command for handler routing.
type CommandType string

// String returns the string representation of the CommandType.
func (ct CommandType) String() string {
	return string(ct)
}

// CommandSource identifies where the command originated.
type CommandSource string

const (
	// SourceUser indicates the command came from a caller of the public API.
	SourceUser CommandSource = "user"
	// SourceChannel indicates the command was produced by a backend notification.
	SourceChannel CommandSource = "channel"
	// SourceInternal indicates the command was system-generated (timers, evictions).
	SourceInternal CommandSource = "internal"
)

// String returns the string representation of the CommandSource.
func (cs CommandSource) String() string {
	return string(cs)
}

// BaseCommand provides common fields for all commands.
// Concrete command types should embed this struct.
type BaseCommand struct {
	id          string
	cmdType     CommandType
	createdAt   time.Time
	source      CommandSource
	spanContext trace.SpanContext
}

// NewBaseCommand creates a BaseCommand with a generated UUID and current timestamp.
func NewBaseCommand(cmdType CommandType, source CommandSource) BaseCommand {
	return BaseCommand{
		id:        uuid.New().String(),
		cmdType:   cmdType,
		createdAt: time.Now(),
		source:    source,
	}
}

// ID returns the unique command identifier.
func (b *BaseCommand) ID() string {
	return b.id
}

// Type returns the command type for handler routing.
func (b *BaseCommand) Type() CommandType {
	return b.cmdType
}

// CreatedAt returns when the command was created.
func (b *BaseCommand) CreatedAt() time.Time {
	return b.createdAt
}

// Source returns the origin of this command.
func (b *BaseCommand) Source() CommandSource {
	return b.source
}

// TraceID returns the trace ID of the attached span context, if any.
func (b *BaseCommand) TraceID() string {
	if b.spanContext.IsValid() {
		return b.spanContext.TraceID().String()
	}
	return ""
}

// SpanContext returns the OpenTelemetry span context for trace propagation.
func (b *BaseCommand) SpanContext() trace.SpanContext {
	return b.spanContext
}

// SetSpanContext sets the OpenTelemetry span context for trace propagation.
func (b *BaseCommand) SetSpanContext(sc trace.SpanContext) {
	b.spanContext = sc
}

// Validate is a no-op for BaseCommand. Concrete commands should override this.
func (b *BaseCommand) Validate() error {
	return nil
}

// CommandResult contains the outcome of command execution.
type CommandResult struct {
	// Success indicates whether the command executed successfully.
	Success bool
	// Error contains the error if Success is false.
	Error error
	// Data contains optional result data for the caller.
	Data any
}

// OK returns a successful result carrying data.
func OK(data any) *CommandResult {
	return &CommandResult{Success: true, Data: data}
}

// Fail returns a failed result.
func Fail(err error) *CommandResult {
	return &CommandResult{Success: false, Error: err}
}

var (
	// ErrNotRunning is returned when submitting to a stopped processor.
	ErrNotRunning = errors.New("command processor is not running")
)
