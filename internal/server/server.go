// Package server exposes the daemon's control surface: a framed-JSON
// RPC endpoint on a unix socket (TCP fallback) and an optional JSON-RPC
// 2.0 HTTP bridge.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/vigild/vigil/common"
	"github.com/vigild/vigil/pkg/logger"
)

// Server accepts control connections from CLI clients and dispatches
// incoming requests to registered handlers, one call at a time per
// connection.
type Server struct {
	log     logger.Logger
	handler map[common.Method]HandlerFunc
	port    int

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}

	wg sync.WaitGroup
}

// NewServer creates a Server. The unix socket is the primary transport;
// localhost TCP on the given port is the fallback when the socket
// cannot be created.
func NewServer(l logger.Logger, port int) *Server {
	return &Server{
		log:     l,
		handler: make(map[common.Method]HandlerFunc),
		port:    port,
		conns:   make(map[net.Conn]struct{}),
	}
}

// RegisterHandler associates a handler function with a control method.
func (s *Server) RegisterHandler(method common.Method, handler HandlerFunc) {
	s.handler[method] = handler
}

func (s *Server) createListener() (net.Listener, error) {
	socketPath := common.SocketPath()
	_ = os.Remove(socketPath)
	l, err := net.ListenUnix("unix", &net.UnixAddr{
		Name: socketPath,
		Net:  "unix",
	})
	if err != nil {
		s.log.Warning("Unix socket unavailable (%v), falling back to tcp", err)
		tcpListener, tcpErr := net.Listen("tcp", fmt.Sprintf("localhost:%d", s.port))
		if tcpErr != nil {
			return nil, fmt.Errorf("error listening: %w", tcpErr)
		}
		return tcpListener, nil
	}
	_ = os.Chmod(socketPath, 0o700)
	return l, nil
}

// Start begins accepting connections and blocks until the context is
// cancelled or Shutdown is called, then drains in-flight calls. It does
// not return while a handler is still running, so a shutdown initiated
// from a handler (stop_daemon) completes and its reply is flushed
// before the daemon's main is allowed to exit.
func (s *Server) Start(ctx context.Context) error {
	l, err := s.createListener()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	s.log.Info("Control surface listening on %s", l.Addr())
	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
			default:
				s.mu.Lock()
				closed := s.listener == nil
				s.mu.Unlock()
				if !closed {
					s.log.Error("Error accepting: %v", err)
					continue
				}
			}
			break
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			s.handleConnection(c)
		}(conn)
	}

	s.wg.Wait()
	return nil
}

// Shutdown stops accepting control calls: the listener is closed, the
// socket file removed, and every open connection gets an immediate
// read deadline so its handler loop exits once the current call (if
// any) has written its reply. In-flight calls run to completion.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.log.Error("Error closing listener: %v", err)
		}
		s.listener = nil
	}

	for conn := range s.conns {
		_ = conn.SetReadDeadline(time.Now())
	}

	socketPath := common.SocketPath()
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		s.log.Error("Error removing socket file: %v", err)
	}
	return nil
}

func (s *Server) handleConnection(conn net.Conn) {
	sconn := NewSyncConn(conn)
	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()
	for {
		buf, err := sconn.Read()
		if err != nil {
			var ne net.Error
			if err != io.EOF && !(errors.As(err, &ne) && ne.Timeout()) {
				s.log.Error("Error reading: %v", err)
			}
			break
		}
		if err := s.handlerWrapper(sconn, buf); err != nil {
			s.log.Error("Error handling: %v", err)
			break
		}
	}
}

func (s *Server) handlerWrapper(sconn *SyncConn, b []byte) error {
	req, err := ParseRequest(b)
	if err != nil {
		return fmt.Errorf("error parsing request: %w", err)
	}
	rHandler, ok := s.handler[req.Method]
	if !ok {
		if err := sconn.Write(MakeError("unknown method: " + string(req.Method))); err != nil {
			return fmt.Errorf("error writing response: %w", err)
		}
		return nil
	}
	msg, err := rHandler(req.Message)
	if err != nil {
		if err := sconn.Write(MakeError(err.Error())); err != nil {
			return fmt.Errorf("error writing response: %w", err)
		}
		return nil
	}
	if err := sconn.Write(MakeResult(msg)); err != nil {
		return fmt.Errorf("error writing response: %w", err)
	}
	return nil
}
