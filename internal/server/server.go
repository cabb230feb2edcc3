// ============================================================================
// dcmd - Declarative Command Dispatcher
// ============================================================================
//
// Package:     server
// Description: Remote console over WebSocket with JSON-RPC 2.0 framing
// Author:      Mike Stoffels
// Created:     2025-03-16
// License:     MIT
// ============================================================================

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/msto63/dcmd/foundation/command/dispatch"
	"github.com/msto63/dcmd/foundation/command/registry"
	dlog "github.com/msto63/dcmd/foundation/core/log"
	"github.com/msto63/dcmd/pkg/core/health"
	"github.com/msto63/dcmd/pkg/core/logging"
	"github.com/msto63/dcmd/pkg/core/version"
)

// Options configures the server
type Options struct {
	Addr           string
	Path           string
	WriteTimeout   time.Duration
	MaxMessageSize int64
	Logger         *dlog.Logger
}

// Server exposes one runtime to WebSocket clients. Every client shares the
// registry, object store and history; dispatches run one at a time.
type Server struct {
	rt       *dispatch.Runtime
	opts     Options
	mu       sync.Mutex
	upgrader websocket.Upgrader
	health   *health.Registry
	logger   *logging.Logger
}

// New creates a server for rt
func New(rt *dispatch.Runtime, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:8765"
	}
	if opts.Path == "" {
		opts.Path = "/ws"
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.MaxMessageSize == 0 {
		opts.MaxMessageSize = 1 << 20
	}
	if opts.Logger == nil {
		opts.Logger = rt.Logger()
	}

	s := &Server{
		rt:   rt,
		opts: opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		health: health.NewRegistry("dcmd", version.Server),
		logger: logging.Wrap(opts.Logger, "server"),
	}
	s.health.RegisterFunc("commands", s.checkCommands)
	s.health.RegisterFunc("history", s.checkHistory)
	return s
}

// Health returns the registry behind /healthz
func (s *Server) Health() *health.Registry { return s.health }

// Handler returns the HTTP routes: the WebSocket endpoint and /healthz
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.opts.Path, s.HandleWS)
	mux.HandleFunc("/healthz", health.Handler(s.health, 2*time.Second))
	return mux
}

// ListenAndServe serves until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Remote console listening", "addr", s.opts.Addr, "path", s.opts.Path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down remote console")
		return srv.Shutdown(shutdownCtx)
	}
}

// HandleWS upgrades the connection and answers JSON-RPC requests until the
// client disconnects
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.opts.MaxMessageSize)

	s.logger.Info("Client connected", "remote", r.RemoteAddr)
	defer s.logger.Info("Client disconnected", "remote", r.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("Connection closed unexpectedly", "remote", r.RemoteAddr, "error", err)
			}
			return
		}

		var response *Response
		var request Request
		if err := json.Unmarshal(data, &request); err != nil {
			response = &Response{
				JSONRPC: "2.0",
				Error: &RPCError{
					Code:    ParseError,
					Message: "Parse error",
					Data:    err.Error(),
				},
			}
		} else {
			response = s.Handle(r.Context(), &request)
		}

		conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
		if err := conn.WriteJSON(response); err != nil {
			s.logger.Warn("Failed to write response", "remote", r.RemoteAddr, "error", err)
			return
		}
	}
}

// checkCommands is degraded while no loadable command is registered
func (s *Server) checkCommands(ctx context.Context) health.CheckResult {
	n := s.rt.Registry().Len(registry.Loadable)
	if n == 0 {
		return health.Degraded("no commands loaded")
	}
	res := health.Healthy("")
	res.Details = map[string]interface{}{"loadable": n, "session": s.rt.SessionID()}
	return res
}

func (s *Server) checkHistory(ctx context.Context) health.CheckResult {
	entries, err := s.rt.History().Entries(ctx)
	if err != nil {
		return health.Unhealthy(err)
	}
	res := health.Healthy("")
	res.Details = map[string]interface{}{"entries": len(entries)}
	return res
}
