package parambus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"golang.org/x/time/rate"
)

var log = logger.GetGoI2PLogger()

// ServerConfig holds configuration for the parameter server.
type ServerConfig struct {
	// Address to listen on, e.g. "127.0.0.1:5555".
	ListenAddr string

	// MaxLinesPerSecond limits how fast lines are evaluated per connection.
	// Zero means unlimited.
	MaxLinesPerSecond float64

	// MaxLineLength is the longest accepted line in bytes. A connection
	// sending a longer line is closed.
	MaxLineLength int
}

// DefaultServerConfig returns the robot's default endpoint.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ListenAddr:    "127.0.0.1:5555",
		MaxLineLength: 4096,
	}
}

// Server reads command lines from TCP clients and evaluates them on a Bus.
type Server struct {
	config *ServerConfig
	bus    *Bus

	mu       sync.Mutex
	running  bool
	listener net.Listener
	conns    map[net.Conn]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer creates a server for bus. A nil config uses DefaultServerConfig.
func NewServer(config *ServerConfig, bus *Bus) (*Server, error) {
	if bus == nil {
		return nil, oops.In("parambus").Errorf("nil bus")
	}
	if config == nil {
		config = DefaultServerConfig()
	}
	if config.MaxLineLength <= 0 {
		config.MaxLineLength = DefaultServerConfig().MaxLineLength
	}

	log.WithFields(logger.Fields{
		"at":                "parambus.NewServer",
		"listenAddr":        config.ListenAddr,
		"maxLinesPerSecond": config.MaxLinesPerSecond,
	}).Debug("creating_param_server")

	return &Server{
		config: config,
		bus:    bus,
		conns:  make(map[net.Conn]struct{}),
	}, nil
}

// Start begins listening and accepting connections.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return oops.In("parambus").With("listenAddr", s.config.ListenAddr).Wrapf(err, "listen")
	}

	s.listener = listener
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true

	log.WithFields(logger.Fields{
		"at":      "parambus.Server.Start",
		"address": listener.Addr().String(),
	}).Info("param_server_listening")

	s.wg.Add(1)
	go s.acceptLoop(listener)
	return nil
}

// Stop closes the listener and every client connection, then waits for the
// connection goroutines to finish.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	err := s.listener.Close()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	log.WithField("at", "parambus.Server.Stop").Info("param_server_stopped")
	return err
}

// Addr returns the listening address, or nil when stopped.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Server) acceptLoop(listener net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.WithError(err).Error("failed_to_accept_connection")
			return
		}
		if !s.track(conn) {
			conn.Close()
			return
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	log.WithField("remote", remote).Debug("param_client_connected")

	var limiter *rate.Limiter
	if s.config.MaxLinesPerSecond > 0 {
		burst := int(s.config.MaxLinesPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(s.config.MaxLinesPerSecond), burst)
	}

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 256), s.config.MaxLineLength)
	for sc.Scan() {
		line := strings.ReplaceAll(sc.Text(), "\r", "")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if limiter != nil {
			if err := limiter.Wait(s.ctx); err != nil {
				return
			}
		}
		if err := s.bus.EvalLine(line); err != nil {
			log.WithFields(logger.Fields{
				"at":     "parambus.Server.handleConnection",
				"remote": remote,
				"line":   line,
			}).WithError(err).Warn("command_rejected")
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.WithFields(logger.Fields{
			"at":     "parambus.Server.handleConnection",
			"remote": remote,
		}).WithError(err).Warn("param_client_read_failed")
	}
	log.WithField("remote", remote).Debug("param_client_disconnected")
}
