package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/Roy2player/MSAPI-sub000/internal/app"
	"github.com/Roy2player/MSAPI-sub000/internal/netutil"
)

// MetricsSink receives server-level counters. internal/metrics implements
// this; it is optional so a Server can run without an admin surface wired
// up (e.g. in unit tests).
type MetricsSink interface {
	ConnectionOpened()
	ConnectionClosed()
	FrameDecoded()
	FrameDropped(reason string)
}

type noopMetrics struct{}

func (noopMetrics) ConnectionOpened()        {}
func (noopMetrics) ConnectionClosed()        {}
func (noopMetrics) FrameDecoded()            {}
func (noopMetrics) FrameDropped(string)      {}

// Server is the TCP connection server at the root of the standard
// protocol's runtime: one accept loop, one worker goroutine per
// connection, and an outbound reconnect manager, all dispatching into a
// single owned Application.
type Server struct {
	app *app.Application
	log *logrus.Logger
	met MetricsSink

	listenIP   string
	listenPort uint16

	listener   net.Listener
	listenerMu sync.Mutex // serializes Stop() against a concurrent accept loop iteration

	state int32 // atomic State

	connMu   sync.Mutex
	conns    map[uint64]*conn
	ipCounts map[string]int
	nextID   uint64

	// aliveMu implements spec.md §5's reader-writer discipline: worker
	// goroutines RLock for their entire lifetime; Stop takes the write
	// side, which blocks until every worker has exited.
	aliveMu sync.RWMutex

	outbound sync.WaitGroup // outbound connect-retry goroutines, for a clean Stop

	reconnectSeconds      uint32
	reconnectAttemptLimit uint64
	maxConnectionsPerIP   uint64
	recvBufferSize        uint64
	recvBufferSizeLimit   uint64
	maxConnections        int32

	stopCh   chan struct{}
	stopOnce sync.Once
}

// Config seeds the six server parameter slots of spec.md §4.6 at
// construction time, before the accept loop starts.
type Config struct {
	ReconnectSeconds      uint32
	ReconnectAttemptLimit uint64
	MaxConnectionsPerIP   uint64
	RecvBufferSize        uint64
	RecvBufferSizeLimit   uint64
	MaxConnections        int32
}

// DefaultConfig returns the values a Server falls back to when it isn't
// otherwise given a Config (e.g. in tests that don't care about the
// server-level parameters).
func DefaultConfig() Config {
	return Config{
		ReconnectSeconds:      5,
		ReconnectAttemptLimit: 10,
		MaxConnectionsPerIP:   16,
		RecvBufferSize:        4096,
		RecvBufferSizeLimit:   1 << 20,
		MaxConnections:        1024,
	}
}

// New constructs a Server wired to application a, with the nine
// server-level parameters and the connected-peers table slot registered
// into a's registry and seeded from cfg.
func New(a *app.Application, log *logrus.Logger, met MetricsSink, cfg Config) *Server {
	if met == nil {
		met = noopMetrics{}
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	s := &Server{
		app:                   a,
		log:                   log,
		met:                   met,
		conns:                 make(map[uint64]*conn),
		ipCounts:              make(map[string]int),
		nextID:                1,
		reconnectSeconds:      cfg.ReconnectSeconds,
		reconnectAttemptLimit: cfg.ReconnectAttemptLimit,
		maxConnectionsPerIP:   cfg.MaxConnectionsPerIP,
		recvBufferSize:        cfg.RecvBufferSize,
		recvBufferSizeLimit:   cfg.RecvBufferSizeLimit,
		maxConnections:        cfg.MaxConnections,
		stopCh:                make(chan struct{}),
	}
	s.registerParameters(a.Registry())
	return s
}

// Addr returns the listener's bound address, or nil before Start has
// bound a socket. Used by tests that bind to port 0 and need to learn
// the ephemeral port that was actually assigned.
func (s *Server) Addr() net.Addr {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// State returns the server's current lifecycle state.
func (s *Server) State() State { return State(atomic.LoadInt32(&s.state)) }

func (s *Server) setState(st State) { atomic.StoreInt32(&s.state, int32(st)) }

// RequestShutdown implements app.ShutdownRequester: on_delete calls this
// to ask the server to stop after pausing the application.
func (s *Server) RequestShutdown() {
	go s.Stop()
}

// Start binds ip:port, begins accepting connections, and blocks until the
// server transitions to Stopped (spec.md §4.6's "returning from start()
// happens when state reaches Stopped").
func (s *Server) Start(ip string, port uint16) error {
	s.listenIP = ip
	s.listenPort = port

	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var ctrlErr error
			err := c.Control(func(fd uintptr) {
				_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
				// SO_REUSEPORT is best-effort: some kernels/sandboxes reject it.
				_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			return ctrlErr
		},
	}

	ln, err := lc.Listen(context.Background(), "tcp", netutil.JoinHostPort(ip, port))
	if err != nil {
		return fmt.Errorf("listen %s:%d: %w", ip, port, err)
	}

	s.listenerMu.Lock()
	s.listener = ln
	s.listenerMu.Unlock()

	s.setState(Running)
	if s.log != nil {
		s.log.WithField("addr", ln.Addr().String()).Info("server listening")
	}

	s.acceptLoop(ln)
	return nil
}

// Stop flips the server to Stopped, closes the listener, and waits for
// every worker goroutine to exit before returning (spec.md §4.6, §5).
func (s *Server) Stop() {
	s.listenerMu.Lock()
	if s.State() == Stopped {
		s.listenerMu.Unlock()
		return
	}
	s.setState(Stopped)
	s.stopOnce.Do(func() { close(s.stopCh) })
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.listenerMu.Unlock()

	s.connMu.Lock()
	for _, c := range s.conns {
		_ = c.netConn.Close()
	}
	s.conns = make(map[uint64]*conn)
	s.ipCounts = make(map[string]int)
	s.connMu.Unlock()

	// Block until every worker has observed its closed socket and
	// released its read lock.
	s.aliveMu.Lock()
	s.aliveMu.Unlock()

	s.outbound.Wait()
}

func tcpNoDelay(c net.Conn) {
	if tc, ok := c.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
}
