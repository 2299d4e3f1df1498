package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/google/uuid"

	workerpool "github.com/azargarov/threadpool"
	"github.com/azargarov/threadpool/internal/config"
)

const (
	acceptBackoffInitial = 5 * time.Millisecond
	acceptBackoffMax     = time.Second
	maxAcceptFailures    = 10
)

// Executor runs jobs in the background. *workerpool.Pool satisfies it.
type Executor interface {
	Execute(job workerpool.Job)
}

// Server accepts connections and submits one job per connection.
type Server struct {
	cfg  config.ServerConfig
	exec Executor

	// ConnContext, when set, is the context connection jobs run under;
	// cancelling it abandons requests that are still sleeping. Otherwise
	// jobs inherit the values of the Serve context but not its
	// cancellation, so every accepted connection is answered.
	ConnContext context.Context

	mu       sync.Mutex
	listener net.Listener
}

func New(cfg config.ServerConfig, exec Executor) *Server {
	return &Server{cfg: cfg, exec: exec}
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	lg.FromContext(ctx).Info("server listening", lg.String("addr", ln.Addr().String()))
	return s.Serve(ctx, ln)
}

// Addr returns the listening address, or nil when not serving.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections on ln until MaxConns connections have been
// accepted, ctx is cancelled, or accepting keeps failing. Serve closes ln
// before returning. Connections already handed to the executor keep
// running after Serve returns, whatever the reason; the caller waits for
// them by closing the pool.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger := lg.FromContext(ctx)

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	stop := make(chan struct{})
	defer func() {
		close(stop)
		_ = ln.Close()
		s.mu.Lock()
		s.listener = nil
		s.mu.Unlock()
	}()
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()

	connCtx := s.ConnContext
	if connCtx == nil {
		connCtx = context.WithoutCancel(ctx)
	}

	var (
		accepted  int
		failures  int
		nextDelay func() time.Duration
	)
	for s.cfg.MaxConns == 0 || accepted < s.cfg.MaxConns {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				logger.Info("server stopped accepting", lg.Int("accepted", accepted))
				return nil
			}

			failures++
			if failures > maxAcceptFailures {
				return fmt.Errorf("accept: %w", err)
			}
			if nextDelay == nil {
				nextDelay = boff.New(acceptBackoffInitial, acceptBackoffMax, time.Now().UnixNano()).Next
			}
			delay := nextDelay()
			logger.Warn("accept failed; backing off",
				lg.Int("attempt", failures),
				lg.String("sleep", delay.String()),
				lg.Any("error", err),
			)
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil
			}
			continue
		}

		failures = 0
		nextDelay = nil
		accepted++
		s.exec.Execute(func() {
			s.handleConnection(connCtx, conn)
		})
	}

	logger.Info("connection limit reached", lg.Int("accepted", accepted))
	return nil
}

// handleConnection serves a single request. Any I/O failure aborts the
// connection without a response.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	logger := lg.FromContext(ctx).With(
		lg.String("request_id", uuid.NewString()),
		lg.String("remote", conn.RemoteAddr().String()),
	)

	buf := make([]byte, s.cfg.ReadBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		logger.Error("read request failed", lg.Any("error", err))
		return
	}

	route := MatchRoute(buf[:n])
	if route.Delay {
		timer := time.NewTimer(s.cfg.SleepDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			logger.Warn("request abandoned during sleep", lg.Any("reason", ctx.Err()))
			return
		}
	}

	body, err := os.ReadFile(filepath.Join(s.cfg.StaticDir, route.File))
	if err != nil {
		logger.Error("read static file failed", lg.String("file", route.File), lg.Any("error", err))
		return
	}

	if _, err := io.WriteString(conn, formatResponse(route.Status, body)); err != nil {
		logger.Error("write response failed", lg.Any("error", err))
		return
	}
	logger.Info("request served", lg.String("status", route.Status), lg.String("file", route.File))
}

func formatResponse(status string, body []byte) string {
	return fmt.Sprintf("%s\r\nContent-Length: %d\r\n\r\n%s", status, len(body), body)
}
