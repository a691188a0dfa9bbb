package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/eternalApril/keyspace/internal/resp"
)

// ErrServerClosed is returned by Serve after Shutdown
var ErrServerClosed = errors.New("server closed")

// Server accepts RESP connections and runs their commands on an Engine
type Server struct {
	engine *Engine
	logger *zap.Logger

	ctx    context.Context // cancelled on shutdown, passed to every command
	cancel context.CancelFunc

	mu       sync.Mutex
	listener net.Listener
	peers    map[*Peer]struct{}
	closing  bool
	wg       sync.WaitGroup
}

// New returns a server for engine
func New(engine *Engine, logger *zap.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		engine: engine,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		peers:  make(map[*Peer]struct{}),
	}
}

// Serve accepts connections on ln until Shutdown is called
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		ln.Close() //nolint:errcheck
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("listening on", zap.String("address", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}
			s.logger.Error("Accept error", zap.Error(err))
			continue
		}

		peer := NewPeer(conn)
		if !s.track(peer) {
			peer.Close() //nolint:errcheck
			return ErrServerClosed
		}

		go func() {
			defer s.wg.Done()
			s.handle(peer)
		}()
	}
}

// Addr returns the address being listened on, nil before Serve
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) track(p *Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.peers[p] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) forget(p *Peer) {
	s.mu.Lock()
	delete(s.peers, p)
	s.mu.Unlock()
}

// handle handles a connection for a single user
func (s *Server) handle(peer *Peer) {
	addr := peer.conn.RemoteAddr().String()
	if s.logger.Core().Enabled(zap.DebugLevel) {
		s.logger.Debug("client connected",
			zap.String("addr", addr),
			zap.Stringer("session", peer.Session().ID),
		)
	}

	defer func() {
		s.forget(peer)
		peer.Close() //nolint:errcheck
		// log connection close
		if s.logger.Core().Enabled(zap.DebugLevel) {
			s.logger.Debug("client disconnected", zap.String("addr", addr))
		}
	}()

	for {
		cmdValue, err := peer.ReadCommand()
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				s.logger.Warn("read command failed", zap.Error(err))
			}
			return
		}

		var result resp.Value
		switch {
		case cmdValue.Type != resp.TypeArray:
			result = resp.MakeError("ERR Protocol error: expected array of bulk strings")
		case len(cmdValue.Array) == 0:
			continue
		default:
			name := string(cmdValue.Array[0].String)
			result = s.engine.Execute(s.ctx, peer.Session(), name, cmdValue.Array[1:])
		}

		if err = peer.Send(result); err != nil {
			s.logger.Error("error writing response", zap.Error(err))
			return
		}

		if peer.InputBuffered() == 0 {
			if err := peer.Flush(); err != nil {
				return
			}
		}
	}
}

// Shutdown stops accepting, closes every connection and then shuts the engine down.
// It returns ctx.Err() if the connections did not finish in time
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	if s.listener != nil {
		s.listener.Close() //nolint:errcheck
	}
	for p := range s.peers {
		p.Close() //nolint:errcheck
	}
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		s.logger.Info("All connections closed gracefully")
	case <-ctx.Done():
		err = ctx.Err()
		s.logger.Warn("Shutdown timed out, forcing exit")
	}

	s.engine.Shutdown()
	return err
}
