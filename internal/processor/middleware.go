package processor

import (
	"context"
	"time"

	"github.com/zjrosen/shortcuts/internal/command"
	"github.com/zjrosen/shortcuts/internal/log"
)

// Middleware wraps a CommandHandler to add additional behavior.
// Middleware functions are composed using ChainMiddleware.
type Middleware func(CommandHandler) CommandHandler

// ChainMiddleware applies middlewares to a handler in reverse order.
// The first middleware in the list will be the outermost wrapper.
// For example: ChainMiddleware(handler, logging, timeout)
// Results in: logging(timeout(handler))
func ChainMiddleware(handler CommandHandler, middlewares ...Middleware) CommandHandler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// ===========================================================================
// Logging Middleware
// ===========================================================================

// NewLoggingMiddleware creates a middleware that logs command execution.
func NewLoggingMiddleware() Middleware {
	return func(next CommandHandler) CommandHandler {
		return HandlerFunc(func(ctx context.Context, cmd command.Command) (*command.CommandResult, error) {
			start := time.Now()

			traceID := ""
			if hasTraceID, ok := cmd.(interface{ TraceID() string }); ok {
				traceID = hasTraceID.TraceID()
			}
			source := ""
			if hasSource, ok := cmd.(interface{ Source() command.CommandSource }); ok {
				source = string(hasSource.Source())
			}

			result, err := next.Handle(ctx, cmd)
			duration := time.Since(start)

			switch {
			case err != nil:
				log.Error(log.CatRegistry, "command failed",
					"command_id", cmd.ID(),
					"command_type", cmd.Type().String(),
					"trace_id", traceID,
					"duration", duration,
					"source", source,
					"error", err.Error(),
				)
			case result != nil && !result.Success:
				errMsg := ""
				if result.Error != nil {
					errMsg = result.Error.Error()
				}
				log.Debug(log.CatRegistry, "command rejected",
					"command_id", cmd.ID(),
					"command_type", cmd.Type().String(),
					"trace_id", traceID,
					"source", source,
					"error", errMsg,
				)
			default:
				log.Debug(log.CatRegistry, "command completed",
					"command_id", cmd.ID(),
					"command_type", cmd.Type().String(),
					"trace_id", traceID,
					"duration", duration,
					"source", source,
				)
			}

			return result, err
		})
	}
}

// ===========================================================================
// Timeout Middleware
// ===========================================================================

// DefaultTimeoutWarningThreshold is the default threshold for logging slow handler warnings.
const DefaultTimeoutWarningThreshold = 50 * time.Millisecond

// TimeoutMiddlewareConfig configures the timeout middleware.
type TimeoutMiddlewareConfig struct {
	WarningThreshold time.Duration
}

// NewTimeoutMiddleware creates a middleware that logs warnings when handlers
// exceed the configured threshold. Slow handlers are never aborted.
func NewTimeoutMiddleware(cfg TimeoutMiddlewareConfig) Middleware {
	threshold := cfg.WarningThreshold
	if threshold == 0 {
		threshold = DefaultTimeoutWarningThreshold
	}

	return func(next CommandHandler) CommandHandler {
		return HandlerFunc(func(ctx context.Context, cmd command.Command) (*command.CommandResult, error) {
			start := time.Now()
			result, err := next.Handle(ctx, cmd)

			if duration := time.Since(start); duration > threshold {
				log.Warn(log.CatRegistry, "handler exceeded time threshold",
					"command_id", cmd.ID(),
					"command_type", cmd.Type().String(),
					"duration", duration,
					"threshold", threshold,
				)
			}
			return result, err
		})
	}
}
