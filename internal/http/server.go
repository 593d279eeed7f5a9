package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"expensemcp/internal/log"
	"expensemcp/internal/middleware/ratelimit"
	"expensemcp/internal/middleware/security"
	"expensemcp/internal/middleware/trace"
)

// Endpoints served by the SSE transport.
const (
	SSEPath     = "/sse"
	MessagePath = "/message"
)

// Options tune the SSE server.
type Options struct {
	// BaseURL is the public URL clients post messages to; empty means relative.
	BaseURL string
	// RateLimitPerMinute caps message posts per client; 0 disables it.
	RateLimitPerMinute int
}

// Server serves the MCP SSE transport plus health endpoints.
type Server struct {
	http.Server
	sse     *server.SSEServer
	trace   *trace.Middleware
	limiter *ratelimit.Limiter

	// cancelled on shutdown so open SSE streams return
	baseCtx    context.Context
	cancelBase context.CancelFunc

	shuttingDown atomic.Bool
	shutdownOnce sync.Once
}

// NewServer mounts mcpServer's SSE handlers on a chi router listening on addr.
func NewServer(addr string, mcpServer *server.MCPServer, opts Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	var sseOpts []server.SSEOption
	if opts.BaseURL != "" {
		sseOpts = append(sseOpts, server.WithBaseURL(opts.BaseURL))
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		sse:        server.NewSSEServer(mcpServer, sseOpts...),
		trace:      trace.NewMiddleware(trace.ClientIP),
		baseCtx:    baseCtx,
		cancelBase: cancel,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.trace.Middleware)
	r.Use(log.Middleware(logger))
	r.Use(log.RequestIDMiddleware(trace.GetRequestID))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle(SSEPath, s.sse.SSEHandler())

	// Forwarding headers are client-controlled, so the limiter keys on the
	// connection address. Behind a proxy every client shares the proxy's budget.
	var messages http.Handler = s.sse.MessageHandler()
	if opts.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
		messages = s.limiter.Middleware(trace.RemoteIP, nil)(messages)
	}
	r.Handle(MessagePath, messages)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
		BaseContext:       func(_ net.Listener) context.Context { return s.baseCtx },
	}

	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.shuttingDown.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	}
	body := map[string]any{
		"status":          "ready",
		"active_requests": s.trace.GetMetrics().ActiveRequests,
	}
	if s.limiter != nil {
		body["rate_limited"] = s.limiter.GetMetrics().Rejected
	}
	writeJSON(w, http.StatusOK, body)
}

// Shutdown ends open SSE streams and then gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.shuttingDown.Store(true)
		if s.limiter != nil {
			s.limiter.Stop()
		}
		s.cancelBase()
		if err := s.sse.Shutdown(ctx); err != nil {
			shutdownErr = err
			return
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
