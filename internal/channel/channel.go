// Package channel implements the event channel between the shortcuts core and
// the backend: a Server-Sent-Events stream for inbound notifications and a
// POST endpoint for outbound messages.
//
// Connect never fails. While the stream is down the channel retries with
// exponential backoff and Send fails fast with ErrDisconnected.
package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/rpc"
)

// ErrDisconnected is returned by Send while the stream is down.
var ErrDisconnected = errors.New("event channel disconnected")

// Config configures a Channel.
type Config struct {
	// URL is the backend base URL; the stream lives at URL/events.
	URL string

	MinBackoff time.Duration
	MaxBackoff time.Duration

	// Buffer is the number of received frames queued ahead of the handlers.
	Buffer int

	SendTimeout time.Duration

	// HTTPClient is used for the stream. It must not set a Timeout.
	HTTPClient *http.Client
}

// Channel is a reconnecting, typed, bidirectional message transport.
type Channel struct {
	cfg       Config
	stream    *http.Client
	send      *http.Client
	eventsURL string
	connected atomic.Bool
	connects  atomic.Int64
	mu        sync.RWMutex
	handlers  map[string][]Handler
	onState   []func(State)
	state     State
	runMu     sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a disconnected channel.
func New(cfg Config) *Channel {
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = 250 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = cfg.MinBackoff
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	stream := cfg.HTTPClient
	if stream == nil {
		stream = &http.Client{}
	}
	return &Channel{
		cfg:       cfg,
		stream:    stream,
		send:      &http.Client{Transport: stream.Transport, Timeout: cfg.SendTimeout},
		eventsURL: strings.TrimRight(cfg.URL, "/") + "/events",
		handlers:  make(map[string][]Handler),
	}
}

// On registers h for messages of type typ. Handlers for the same type run in
// registration order on the channel's dispatch goroutine.
func (c *Channel) On(typ string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[typ] = append(c.handlers[typ], h)
}

// OnStateChange registers fn to be called on every connection state change.
func (c *Channel) OnStateChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onState = append(c.onState, fn)
}

// Connected reports whether the stream is currently live.
func (c *Channel) Connected() bool {
	return c.connected.Load()
}

// Connects returns how many times the stream has been established.
func (c *Channel) Connects() int64 {
	return c.connects.Load()
}

// Connect starts the receive loop. It returns immediately; connection
// failures are retried in the background. Calling Connect on a running
// channel is a no-op.
func (c *Channel) Connect(ctx context.Context) {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	inbox := make(chan Message, c.cfg.Buffer)
	dispatchDone := make(chan struct{})

	log.SafeGo("channel.dispatch", func() {
		defer close(dispatchDone)
		for msg := range inbox {
			c.dispatch(msg)
		}
	})

	done := c.done
	log.SafeGo("channel.run", func() {
		defer close(done)
		defer func() { <-dispatchDone }()
		defer close(inbox)
		c.run(runCtx, inbox)
	})
}

// Disconnect stops the receive loop and waits for in-flight handlers.
func (c *Channel) Disconnect() {
	c.runMu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	c.setState(StateDisconnected)
}

// Send posts a message to the backend. Delivery is not confirmed beyond the
// HTTP acknowledgment; callers correlate replies through inbound messages.
func (c *Channel) Send(ctx context.Context, typ string, payload any) error {
	if !c.Connected() {
		return ErrDisconnected
	}

	msg := Message{Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s payload: %w", typ, err)
		}
		msg.Payload = raw
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding %s message: %w", typ, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.eventsURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.send.Do(req)
	if err != nil {
		return fmt.Errorf("sending %s: %w", typ, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sending %s: backend returned %s", typ, resp.Status)
	}
	return nil
}

func (c *Channel) run(ctx context.Context, inbox chan<- Message) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.MinBackoff
	b.MaxInterval = c.cfg.MaxBackoff

	attempts := 0
	for {
		c.setState(StateConnecting)
		err := c.consume(ctx, inbox, b)
		c.setState(StateDisconnected)
		if ctx.Err() != nil {
			return
		}

		attempts++
		wait := b.NextBackOff()
		log.Warn(log.CatChannel, "stream down, reconnecting", "attempt", attempts, "wait", wait, "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// consume holds one stream open until it ends. The backoff is reset once the
// backend confirms the stream with its connected frame.
func (c *Channel) consume(ctx context.Context, inbox chan<- Message, b *backoff.ExponentialBackOff) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.eventsURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.stream.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream returned %s", resp.Status)
	}

	err = readFrames(resp.Body, func(msg Message) bool {
		if msg.Type == rpc.EventConnected {
			if !c.Connected() {
				if c.connects.Add(1) > 1 {
					log.Info(log.CatChannel, "stream re-established")
				}
				b.Reset()
				c.setState(StateConnected)
			}
			return true
		}
		select {
		case inbox <- msg:
			return true
		case <-ctx.Done():
			return false
		}
	})
	if err == nil {
		err = errors.New("stream closed by backend")
	}
	return err
}

func (c *Channel) dispatch(msg Message) {
	c.mu.RLock()
	handlers := append([]Handler(nil), c.handlers[msg.Type]...)
	c.mu.RUnlock()

	if len(handlers) == 0 {
		log.Debug(log.CatChannel, "ignoring message with no handler", "type", msg.Type)
		return
	}
	for _, h := range handlers {
		c.invoke(msg, h)
	}
}

func (c *Channel) invoke(msg Message, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(log.CatChannel, "handler panicked", "type", msg.Type, "panic", fmt.Sprint(r))
		}
	}()
	h(msg)
}

func (c *Channel) setState(s State) {
	c.connected.Store(s == StateConnected)

	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	listeners := append([]func(State){}, c.onState...)
	c.mu.Unlock()

	log.Debug(log.CatChannel, "state changed", "state", s)
	for _, fn := range listeners {
		fn(s)
	}
}
