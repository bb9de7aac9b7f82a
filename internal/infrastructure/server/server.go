// Package server exposes the dispatch engine to a local control panel over a
// websocket. Commands from every connection funnel into one worker so they are
// dispatched in arrival order.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/doeshing/aura-go/internal/application/dispatch"
	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

const (
	busyMessage     = "Assistant is busy, try again in a moment."
	maxMessageBytes = 4096
	shutdownTimeout = 5 * time.Second
)

// Dispatcher is the slice of the engine the server needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, text string, opts ...dispatch.Option) dispatch.Outcome
	HandlerInfo() map[string]domain.HandlerInfo
}

// Request is one inbound websocket message.
type Request struct {
	Text string `json:"text"`
	Mode string `json:"mode,omitempty"`
}

// Response answers a Request.
type Response struct {
	ID      string        `json:"id"`
	Status  domain.Status `json:"status"`
	Message string        `json:"message"`
	Handler string        `json:"handler,omitempty"`
}

type job struct {
	req   Request
	reply chan Response
}

// Options configures a Server.
type Options struct {
	Addr      string
	QueueSize int
	Logger    ports.Logger
}

// Server owns the listener, the open websocket connections and the dispatch worker.
type Server struct {
	dispatcher Dispatcher
	addr       string
	logger     ports.Logger
	upgrader   websocket.Upgrader

	jobs chan job
	done chan struct{}

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// New builds a server around dispatcher.
func New(dispatcher Dispatcher, opts Options) *Server {
	size := opts.QueueSize
	if size <= 0 {
		size = domain.DefaultQueueSize
	}
	addr := opts.Addr
	if addr == "" {
		addr = domain.DefaultServeAddr
	}
	return &Server{
		dispatcher: dispatcher,
		addr:       addr,
		logger:     opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		jobs:  make(chan job, size),
		done:  make(chan struct{}),
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.addr }

// Handler routes /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", s.serveHealth)
	return mux
}

// ListenAndServe listens on the configured address and serves until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the HTTP server and the dispatch worker on ln until ctx is
// cancelled or either of them fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Work(gctx)
	})
	g.Go(func() error {
		s.info("serving", map[string]interface{}{"addr": ln.Addr().String()})
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		s.closeConns()
		return err
	})
	return g.Wait()
}

// Work drains the queue until ctx ends. Exactly one Work loop may run.
func (s *Server) Work(ctx context.Context) error {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-s.jobs:
			out := s.dispatcher.Dispatch(ctx, j.req.Text, dispatch.WithMode(domain.ParseInputMode(j.req.Mode)))
			j.reply <- Response{
				ID:      out.ID,
				Status:  out.Result.Status,
				Message: out.Result.Message,
				Handler: out.Handler,
			}
		}
	}
}

// Submit queues req and waits for its reply. A full queue is answered
// immediately with a busy warning.
func (s *Server) Submit(ctx context.Context, req Request) Response {
	j := job{req: req, reply: make(chan Response, 1)}
	select {
	case s.jobs <- j:
	default:
		s.info("queue full", map[string]interface{}{"queued": len(s.jobs)})
		return Response{Status: domain.StatusWarning, Message: busyMessage}
	}
	select {
	case resp := <-j.reply:
		return resp
	case <-s.done:
		return Response{Status: domain.StatusError, Message: "Assistant is shutting down."}
	case <-ctx.Done():
		return Response{Status: domain.StatusError, Message: ctx.Err().Error()}
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.warn("websocket upgrade failed", err)
		return
	}
	s.track(conn)
	defer s.untrack(conn)
	conn.SetReadLimit(maxMessageBytes)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if !isClosed(err) {
				s.warn("websocket read failed", err)
			}
			return
		}
		var req Request
		resp := Response{Status: domain.StatusError, Message: "Malformed request: expected {\"text\": \"...\"}"}
		if err := json.Unmarshal(payload, &req); err == nil {
			resp = s.Submit(r.Context(), req)
		}
		if err := conn.WriteJSON(resp); err != nil {
			s.warn("websocket write failed", err)
			return
		}
	}
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "ok",
		"handlers": len(s.dispatcher.HandlerInfo()),
		"queued":   len(s.jobs),
	})
}

func (s *Server) track(conn *websocket.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	_ = conn.Close()
}

// closeConns closes hijacked connections, which http.Server.Shutdown leaves open.
func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure) || errors.Is(err, net.ErrClosed)
}

func (s *Server) info(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, fields)
	}
}

func (s *Server) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, map[string]interface{}{"error": err.Error()})
	}
}
