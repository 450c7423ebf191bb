// Package processor provides the FIFO command processor. A single goroutine
// takes commands off a buffered queue and runs their handlers one at a time,
// so state owned by the handlers needs no locks.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zjrosen/shortcuts/internal/command"
	"github.com/zjrosen/shortcuts/internal/log"
)

// DefaultQueueCapacity is the default buffer size for the command queue.
const DefaultQueueCapacity = 256

// ErrUnknownCommandType is returned for commands without a registered handler.
var ErrUnknownCommandType = errors.New("unknown command type")

// CommandHandler processes one command type.
type CommandHandler interface {
	Handle(ctx context.Context, cmd command.Command) (*command.CommandResult, error)
}

// HandlerFunc adapts a function to CommandHandler.
type HandlerFunc func(ctx context.Context, cmd command.Command) (*command.CommandResult, error)

// Handle implements CommandHandler.
func (f HandlerFunc) Handle(ctx context.Context, cmd command.Command) (*command.CommandResult, error) {
	return f(ctx, cmd)
}

// Option configures the CommandProcessor.
type Option func(*CommandProcessor)

// WithQueueCapacity sets the command queue buffer capacity.
func WithQueueCapacity(capacity int) Option {
	return func(p *CommandProcessor) {
		if capacity > 0 {
			p.queueCapacity = capacity
		}
	}
}

// WithMiddleware adds middleware to be applied to all handlers.
// Middleware is applied in order: first middleware wraps outermost.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(p *CommandProcessor) {
		p.middlewares = append(p.middlewares, middlewares...)
	}
}

// CommandProcessor processes commands sequentially in FIFO order.
type CommandProcessor struct {
	queue         chan queueItem
	queueCapacity int

	handlers    map[command.CommandType]CommandHandler
	middlewares []Middleware

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	running  atomic.Bool
	started  atomic.Bool
	readyCh  chan struct{} // Closed when processor is ready to accept commands
	readyMu  sync.Mutex    // Protects readyCh initialization
	readySet bool          // True after readyCh is closed
}

// queueItem wraps a command with the channel its result is delivered on.
type queueItem struct {
	cmd      command.Command
	resultCh chan *command.CommandResult
}

// New creates a new CommandProcessor with the given options.
func New(opts ...Option) *CommandProcessor {
	p := &CommandProcessor{
		queueCapacity: DefaultQueueCapacity,
		handlers:      make(map[command.CommandType]CommandHandler),
		readyCh:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.queue = make(chan queueItem, p.queueCapacity)
	return p
}

// RegisterHandler registers a handler for a command type.
// Must be called before Run() is called.
// The handler is wrapped with all configured middleware.
func (p *CommandProcessor) RegisterHandler(cmdType command.CommandType, handler CommandHandler) {
	p.handlers[cmdType] = ChainMiddleware(handler, p.middlewares...)
}

// Run starts the command processing loop.
// This method blocks until the context is cancelled or Stop() is called.
// Run can only be called once - subsequent calls return immediately.
func (p *CommandProcessor) Run(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}

	p.ctx, p.cancel = context.WithCancel(ctx)

	// Add to wait group BEFORE setting running to avoid race with Drain()
	p.wg.Add(1)
	p.running.Store(true)

	p.readyMu.Lock()
	if !p.readySet {
		close(p.readyCh)
		p.readySet = true
	}
	p.readyMu.Unlock()

	defer func() {
		p.running.Store(false)
		p.wg.Done()
	}()

	for {
		select {
		case <-p.ctx.Done():
			return
		case item, ok := <-p.queue:
			if !ok {
				// Queue closed during Drain
				return
			}
			p.processItem(item)
		}
	}
}

// WaitForReady blocks until the processor is ready to accept commands.
func (p *CommandProcessor) WaitForReady(ctx context.Context) error {
	select {
	case <-p.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitAndWait adds a command to the queue and waits for the result.
// It waits for queue space, bounded by ctx.
func (p *CommandProcessor) SubmitAndWait(ctx context.Context, cmd command.Command) (*command.CommandResult, error) {
	if !p.running.Load() {
		return nil, command.ErrNotRunning
	}

	resultCh := make(chan *command.CommandResult, 1)
	item := queueItem{
		cmd:      cmd,
		resultCh: resultCh,
	}

	select {
	case p.queue <- item:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, command.ErrNotRunning
	}

	select {
	case result := <-resultCh:
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, command.ErrNotRunning
	}
}

// Stop cancels the processing context and waits for shutdown.
// Any pending commands in the queue are NOT processed.
func (p *CommandProcessor) Stop() {
	p.running.Store(false)
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *CommandProcessor) processItem(item queueItem) {
	result := p.processCommand(item.cmd)
	item.resultCh <- result
	close(item.resultCh)
}

// processCommand validates, routes and runs one command. Errors and handler
// panics are folded into the result so the loop never stops.
func (p *CommandProcessor) processCommand(cmd command.Command) (result *command.CommandResult) {
	if err := cmd.Validate(); err != nil {
		return command.Fail(err)
	}

	handler, ok := p.handlers[cmd.Type()]
	if !ok {
		return command.Fail(fmt.Errorf("%w: %s", ErrUnknownCommandType, cmd.Type()))
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error(log.CatRegistry, "command handler panicked",
				"command_id", cmd.ID(),
				"command_type", cmd.Type().String(),
				"panic", fmt.Sprint(r),
			)
			result = command.Fail(fmt.Errorf("handler panic: %v", r))
		}
	}()

	res, err := handler.Handle(p.ctx, cmd)
	if err != nil {
		return command.Fail(err)
	}
	if res == nil {
		return command.OK(nil)
	}
	return res
}
