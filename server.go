package runtcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/asecurityteam/logevent/v2"
	"github.com/rs/xstats"
)

// Lifecycle states reported inside InvalidStateError values.
const (
	stateIdle     = "idle"
	stateRunning  = "running"
	stateStopping = "stopping"
	stateStopped  = "stopped"
)

// acceptRetryDelay is the pause between retries after a failed Accept
// so a persistent failure, such as descriptor exhaustion, cannot spin
// the loop.
const acceptRetryDelay = 100 * time.Millisecond

type connAccepted struct {
	Message string `logevent:"message,default=connection-accepted"`
	Remote  string `logevent:"remote"`
}

type connClosed struct {
	Message string `logevent:"message,default=connection-closed"`
	Remote  string `logevent:"remote"`
	Reason  string `logevent:"reason"`
}

type acceptFailed struct {
	Message string `logevent:"message,default=accept-failed"`
	Reason  string `logevent:"reason"`
}

type serverStopped struct {
	Message string `logevent:"message,default=server-stopped"`
	Port    int    `logevent:"port"`
}

// ServerConfig is used to alter the behavior of a Server beyond the
// listener and handler it is constructed with.
type ServerConfig struct {
	// Logger is the base logger copied into each connection context.
	// The default value discards all events.
	Logger Logger
	// Stat is the metrics client injected into each connection
	// context. The default value discards all metrics.
	Stat Stat
}

func applyServerDefaults(conf *ServerConfig) *ServerConfig {
	if conf == nil {
		conf = &ServerConfig{}
	}
	if conf.Logger == nil {
		conf.Logger = nopLogger{}
	}
	if conf.Stat == nil {
		conf.Stat = nopStat{}
	}
	return conf
}

// Server runs an accept loop over an acquired Listener on a background
// goroutine and dispatches each accepted connection to a ConnHandler
// on its own goroutine. The server exclusively owns the listener and
// every accepted connection; no other component may close or rebind
// them.
//
// The zero value is not usable. Construct with NewServer.
type Server struct {
	listener *Listener
	handler  ConnHandler
	logger   Logger
	stat     Stat

	mut    sync.Mutex
	state  string
	cancel context.CancelFunc
	conns  map[net.Conn]struct{}
	wg     sync.WaitGroup
}

// NewServer wraps an acquired listener and a connection handler into a
// runnable server. The listener must not be shared with any other
// server. A nil conf applies the documented defaults.
func NewServer(l *Listener, handler ConnHandler, conf *ServerConfig) *Server {
	conf = applyServerDefaults(conf)
	return &Server{
		listener: l,
		handler:  handler,
		logger:   conf.Logger,
		stat:     conf.Stat,
		state:    stateIdle,
		conns:    make(map[net.Conn]struct{}),
	}
}

// Port returns the concrete bound port. It is valid from the moment
// the listener was acquired, before and during Start, and keeps
// returning the last bound value after Stop for error reporting even
// though the port itself is released.
func (s *Server) Port() int {
	return s.listener.Port()
}

// Addr returns the listener address in host:port form.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Start launches the accept loop on a background goroutine and returns
// immediately. The context bounds the lifetime of all connection
// handlers. Starting twice, or starting after Stop, fails with an
// InvalidStateError.
func (s *Server) Start(ctx context.Context) error {
	s.mut.Lock()
	defer s.mut.Unlock()
	if s.state != stateIdle {
		return InvalidStateError{Op: "start", State: s.state}
	}
	s.state = stateRunning
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.acceptLoop(ctx)
	return nil
}

// Stop terminates the accept loop by closing the listener, cancels the
// context seen by all connection handlers, closes any connections that
// are still open, and blocks until every background goroutine has
// exited. After Stop returns no goroutine started by this server is
// running and the bound port is released.
//
// Stop is valid exactly once per started server. Calling it before
// Start, or a second time, fails fast with an InvalidStateError and
// never hangs.
func (s *Server) Stop() error {
	s.mut.Lock()
	if s.state != stateRunning {
		state := s.state
		s.mut.Unlock()
		return InvalidStateError{Op: "stop", State: state}
	}
	s.state = stateStopping
	cancel := s.cancel
	open := make([]net.Conn, 0, len(s.conns))
	for conn := range s.conns {
		open = append(open, conn)
	}
	s.mut.Unlock()

	// Closing the listener is what unblocks a pending Accept. The
	// context cancellation alone would leave the accept loop parked
	// inside the syscall.
	errClose := s.listener.Close()
	cancel()
	for _, conn := range open {
		_ = conn.Close()
	}
	s.wg.Wait()

	s.mut.Lock()
	s.state = stateStopped
	s.mut.Unlock()
	s.logger.Info(serverStopped{Port: s.listener.Port()})
	return errClose
}

func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return
			}
			s.logger.Error(acceptFailed{Reason: err.Error()})
			select {
			case <-ctx.Done():
				return
			case <-time.After(acceptRetryDelay):
			}
			continue
		}
		s.track(conn)
		s.stat.Count("conn.accepted", 1)
		s.logger.Info(connAccepted{Remote: conn.RemoteAddr().String()})
		s.wg.Add(1)
		go s.serve(ctx, conn)
	}
}

func (s *Server) serve(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	remote := conn.RemoteAddr().String()
	start := time.Now()
	ctx = logevent.NewContext(ctx, s.logger.Copy())
	ctx = xstats.NewContext(ctx, s.stat)
	err := s.handler.Handle(ctx, conn)
	_ = conn.Close()
	s.untrack(conn)
	s.stat.Timing("conn.duration", time.Since(start))
	s.stat.Count("conn.closed", 1)
	reason := "disconnect"
	if err != nil {
		reason = err.Error()
	}
	s.logger.Info(connClosed{Remote: remote, Reason: reason})
}

func (s *Server) track(conn net.Conn) {
	s.mut.Lock()
	if s.state != stateRunning {
		// A connection that raced the beginning of Stop would be
		// missed by the teardown snapshot. Closing it here keeps the
		// handler from blocking on a socket nobody will tear down.
		s.mut.Unlock()
		_ = conn.Close()
		return
	}
	s.conns[conn] = struct{}{}
	s.stat.Gauge("conn.open", float64(len(s.conns)))
	s.mut.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mut.Lock()
	delete(s.conns, conn)
	s.stat.Gauge("conn.open", float64(len(s.conns)))
	s.mut.Unlock()
}

type nopLogger struct{}

func (nopLogger) Debug(event interface{})                 {}
func (nopLogger) Info(event interface{})                  {}
func (nopLogger) Warn(event interface{})                  {}
func (nopLogger) Error(event interface{})                 {}
func (nopLogger) SetField(name string, value interface{}) {}
func (l nopLogger) Copy() Logger                          { return l }

type nopStat struct{}

func (nopStat) Gauge(stat string, value float64, tags ...string)        {}
func (nopStat) Count(stat string, count float64, tags ...string)        {}
func (nopStat) Histogram(stat string, value float64, tags ...string)    {}
func (nopStat) Timing(stat string, value time.Duration, tags ...string) {}
func (nopStat) AddTags(tags ...string)                                  {}
func (nopStat) GetTags() []string                                       { return []string{} }
