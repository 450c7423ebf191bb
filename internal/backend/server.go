package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/shortcuts/internal/channel"
	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/pubsub"
	"github.com/zjrosen/shortcuts/internal/rpc"
	"github.com/zjrosen/shortcuts/internal/shortcut"
	"github.com/zjrosen/shortcuts/internal/tracing"
)

const defaultHeartbeat = 15 * time.Second

// Handler serves the RPC surface and the event stream.
type Handler struct {
	db         *DB
	supervisor *Supervisor
	events     *pubsub.Broker[channel.Message]
	tracer     trace.Tracer
	heartbeat  time.Duration
	closing    chan struct{}
	closeOnce  sync.Once
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	DB         *DB
	Supervisor *Supervisor
	Events     *pubsub.Broker[channel.Message]
	// Tracer defaults to the global provider's tracer.
	Tracer trace.Tracer
	// Heartbeat is the interval between keep-alive comments on /events.
	Heartbeat time.Duration
}

// NewHandler creates a handler over the given store, supervisor and event broker.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		db:         cfg.DB,
		supervisor: cfg.Supervisor,
		events:     cfg.Events,
		tracer:     cfg.Tracer,
		heartbeat:  cfg.Heartbeat,
		closing:    make(chan struct{}),
	}
	if h.tracer == nil {
		h.tracer = otel.Tracer("shortcuts-daemon")
	}
	if h.heartbeat <= 0 {
		h.heartbeat = defaultHeartbeat
	}
	return h
}

// Routes returns an http.Handler with all routes registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /rpc/{method}", h.RPC)

	mux.HandleFunc("GET /events", h.StreamEvents)
	mux.HandleFunc("POST /events", h.ReceiveEvent)

	mux.HandleFunc("GET /health", h.Health)

	return mux
}

// CloseStreams ends every open /events stream. http.Server.Shutdown does not
// cancel in-flight requests, so streams must be told to finish.
func (h *Handler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.closing) })
}

// rpcError carries the HTTP status and code for a failed call.
type rpcError struct {
	status  int
	code    string
	message string
	details string
}

// RPC dispatches POST /rpc/{method}.
func (h *Handler) RPC(w http.ResponseWriter, r *http.Request) {
	method := r.PathValue("method")
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := h.tracer.Start(ctx, tracing.SpanPrefixRPC+method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String(tracing.AttrRPCMethod, method)),
	)
	defer span.End()

	start := time.Now()
	result, rerr := h.call(ctx, method, r)
	if rerr != nil {
		span.SetStatus(codes.Error, rerr.message)
		log.Debug(log.CatBackend, "rpc rejected", "method", method, "status", rerr.status, "code", rerr.code, "details", rerr.details)
		h.writeError(w, rerr.status, rerr.code, rerr.message, rerr.details)
		return
	}
	log.Debug(log.CatBackend, "rpc", "method", method, "duration", time.Since(start))

	raw, err := json.Marshal(result)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "encode_failed", "Failed to encode result", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, rpc.ResultEnvelope{Result: raw})
}

func (h *Handler) call(ctx context.Context, method string, r *http.Request) (any, *rpcError) {
	switch method {
	case rpc.MethodListShortcuts:
		all, err := h.db.List(ctx)
		if err != nil {
			return nil, storeError(err)
		}
		return all, nil

	case rpc.MethodAddShortcut, rpc.MethodModifyShortcut:
		var req rpc.ShortcutRequest
		if rerr := decode(r, &req); rerr != nil {
			return nil, rerr
		}
		var (
			all shortcut.Collection
			err error
		)
		if method == rpc.MethodAddShortcut {
			all, err = h.db.Add(ctx, req.Shortcut)
		} else {
			all, err = h.db.Update(ctx, req.Shortcut)
		}
		if err != nil {
			return nil, storeError(err)
		}
		return all, nil

	case rpc.MethodRemoveShortcut:
		var req rpc.RemoveRequest
		if rerr := decode(r, &req); rerr != nil {
			return nil, rerr
		}
		if h.supervisor.Running(req.ID) {
			return nil, &rpcError{status: http.StatusConflict, code: "running", message: "Shortcut is running"}
		}
		all, err := h.db.Remove(ctx, req.ID)
		if err != nil {
			return nil, storeError(err)
		}
		return all, nil

	case rpc.MethodLaunchInstance:
		var req rpc.LaunchRequest
		if rerr := decode(r, &req); rerr != nil {
			return nil, rerr
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String(tracing.AttrShortcutID, req.ShortcutID),
			attribute.String(tracing.AttrLaunchID, req.LaunchID),
		)
		sc, err := h.db.Get(ctx, req.ShortcutID)
		if err != nil {
			return nil, storeError(err)
		}
		ack, err := h.supervisor.Start(sc, req)
		if err != nil {
			return nil, supervisorError(err)
		}
		return ack, nil

	case rpc.MethodStopInstance, rpc.MethodKillInstance:
		var req rpc.InstanceRequest
		if rerr := decode(r, &req); rerr != nil {
			return nil, rerr
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.String(tracing.AttrShortcutID, req.ShortcutID))
		var err error
		if method == rpc.MethodStopInstance {
			err = h.supervisor.Stop(req.ShortcutID)
		} else {
			err = h.supervisor.Kill(req.ShortcutID)
		}
		if err != nil {
			return nil, supervisorError(err)
		}
		return rpc.Ack{ShortcutID: req.ShortcutID}, nil

	default:
		return nil, &rpcError{status: http.StatusNotFound, code: "unknown_method", message: fmt.Sprintf("Unknown method %q", method)}
	}
}

func decode(r *http.Request, v any) *rpcError {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &rpcError{status: http.StatusBadRequest, code: "invalid_json", message: "Invalid JSON body", details: err.Error()}
	}
	return nil
}

func storeError(err error) *rpcError {
	switch {
	case errors.Is(err, ErrNotFound):
		return &rpcError{status: http.StatusNotFound, code: "not_found", message: "Shortcut not found", details: err.Error()}
	case errors.Is(err, ErrDuplicate):
		return &rpcError{status: http.StatusConflict, code: "duplicate", message: "Shortcut already exists", details: err.Error()}
	case errors.Is(err, shortcut.ErrEmptyID), errors.Is(err, shortcut.ErrEmptyName), errors.Is(err, shortcut.ErrEmptyCmd):
		return &rpcError{status: http.StatusBadRequest, code: "validation_error", message: err.Error()}
	default:
		return &rpcError{status: http.StatusInternalServerError, code: "store_failed", message: "Store operation failed", details: err.Error()}
	}
}

func supervisorError(err error) *rpcError {
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		return &rpcError{status: http.StatusConflict, code: "already_running", message: "Shortcut already running", details: err.Error()}
	case errors.Is(err, ErrNotRunning):
		return &rpcError{status: http.StatusConflict, code: "not_running", message: "Shortcut not running", details: err.Error()}
	case errors.Is(err, ErrShuttingDown):
		return &rpcError{status: http.StatusServiceUnavailable, code: "shutting_down", message: "Daemon is shutting down"}
	default:
		return &rpcError{status: http.StatusInternalServerError, code: "spawn_failed", message: "Failed to start process", details: err.Error()}
	}
}

// StreamEvents streams supervisor events via SSE.
// GET /events
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming_unsupported", "Streaming not supported", "")
		return
	}

	ctx := r.Context()
	events := h.events.Subscribe(ctx)

	_, _ = fmt.Fprintf(w, "event: %s\ndata: {}\n\n", rpc.EventConnected)
	flusher.Flush()
	log.Debug(log.CatBackend, "event stream opened", "remote", r.RemoteAddr)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug(log.CatBackend, "event stream closed", "remote", r.RemoteAddr)
			return
		case <-h.closing:
			return
		case <-ticker.C:
			_, _ = fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			msg := event.Payload
			data := msg.Payload
			if len(data) == 0 {
				data = json.RawMessage("{}")
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, data)
			flusher.Flush()
		}
	}
}

// ReceiveEvent handles messages the frontend sends on the channel.
// POST /events
func (h *Handler) ReceiveEvent(w http.ResponseWriter, r *http.Request) {
	var msg channel.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}

	switch msg.Type {
	case rpc.EventPing:
		h.events.Publish(pubsub.UpdatedEvent, channel.Message{Type: rpc.EventPong, Payload: msg.Payload})
	case rpc.EventLog:
		var entry rpc.LogEvent
		if err := msg.Decode(&entry); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid log payload", err.Error())
			return
		}
		frontendLog(entry)
	default:
		log.Debug(log.CatBackend, "ignoring inbound message", "type", msg.Type)
	}

	w.WriteHeader(http.StatusNoContent)
}

func frontendLog(entry rpc.LogEvent) {
	switch log.ParseLevel(entry.Level) {
	case log.LevelDebug:
		log.Debug(log.CatBackend, entry.Message, "source", "frontend")
	case log.LevelWarn:
		log.Warn(log.CatBackend, entry.Message, "source", "frontend")
	case log.LevelError:
		log.Error(log.CatBackend, entry.Message, "source", "frontend")
	default:
		log.Info(log.CatBackend, entry.Message, "source", "frontend")
	}
}

// HealthResponse is the response body for the health endpoint.
type HealthResponse struct {
	Status      string `json:"status"`
	Shortcuts   int    `json:"shortcuts"`
	Running     int    `json:"running"`
	Subscribers int    `json:"subscribers"`
}

// Health reports daemon status.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	all, err := h.db.List(r.Context())
	if err != nil {
		h.writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy"})
		return
	}
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Shortcuts:   len(all),
		Running:     h.supervisor.Count(),
		Subscribers: h.events.SubscriberCount(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error(log.CatBackend, "Failed to encode JSON response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.writeJSON(w, status, rpc.ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// Server wraps the Handler with an http.Server for lifecycle management.
type Server struct {
	server   *http.Server
	listener net.Listener
	port     int // Actual port after binding (useful when using :0)
}

// NewServer binds addr and prepares the server. Port 0 picks a free port.
func NewServer(addr string, handler *Handler) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	port := 0
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		port = tcpAddr.Port
	}

	srv := &http.Server{
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: /events is long-lived.
	}
	srv.RegisterOnShutdown(handler.CloseStreams)

	return &Server{
		listener: listener,
		port:     port,
		server:   srv,
	}, nil
}

// Start serves until Stop is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	log.Info(log.CatBackend, "Starting daemon server", "addr", s.listener.Addr().String())
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	log.Info(log.CatBackend, "Stopping daemon server")
	return s.server.Shutdown(ctx)
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// URL returns the base URL clients should use.
func (s *Server) URL() string {
	return "http://" + s.listener.Addr().String()
}
