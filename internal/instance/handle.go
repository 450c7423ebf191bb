package instance

import (
	"context"
	"sync"

	"github.com/zjrosen/shortcuts/internal/rpc"
)

// ExitHandle is a one-shot completion owned by the caller of Launch. It is
// resolved exactly once: with the exit info when the process exits, or with
// an error when the launch never produced a process.
type ExitHandle struct {
	once sync.Once
	done chan struct{}
	info rpc.ExitInfo
	err  error
}

// NewExitHandle creates an unresolved handle.
func NewExitHandle() *ExitHandle {
	return &ExitHandle{done: make(chan struct{})}
}

// Done is closed once the handle is resolved.
func (h *ExitHandle) Done() <-chan struct{} {
	return h.done
}

// Info returns the outcome. It is only meaningful after Done is closed.
func (h *ExitHandle) Info() (rpc.ExitInfo, error) {
	select {
	case <-h.done:
		return h.info, h.err
	default:
		return rpc.ExitInfo{}, ErrPending
	}
}

// Wait blocks until the handle resolves or ctx ends.
func (h *ExitHandle) Wait(ctx context.Context) (rpc.ExitInfo, error) {
	select {
	case <-h.done:
		return h.info, h.err
	case <-ctx.Done():
		return rpc.ExitInfo{}, ctx.Err()
	}
}

// OnExit calls fn with the exit info once the process exits. fn is never
// called when the handle resolves with an error.
func (h *ExitHandle) OnExit(fn func(rpc.ExitInfo)) {
	if fn == nil {
		return
	}
	go func() {
		<-h.done
		if h.err == nil {
			fn(h.info)
		}
	}()
}

func (h *ExitHandle) resolve(info rpc.ExitInfo) bool {
	return h.settle(info, nil)
}

func (h *ExitHandle) abandon(err error) bool {
	return h.settle(rpc.ExitInfo{}, err)
}

func (h *ExitHandle) settle(info rpc.ExitInfo, err error) bool {
	fired := false
	h.once.Do(func() {
		h.info = info
		h.err = err
		fired = true
		close(h.done)
	})
	return fired
}
