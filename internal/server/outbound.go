package server

import (
	"net"
	"sync/atomic"
	"time"

	"github.com/Roy2player/MSAPI-sub000/internal/app"
	"github.com/Roy2player/MSAPI-sub000/internal/netutil"
)

// OpenConnect implements spec.md §4.6's open_connect: it spawns a
// background goroutine that attempts connect() up to the configured
// attempt limit, sleeping the configured cadence between attempts. id 0
// is reserved for the manager connection. On success it installs the
// connection record, starts a worker, and enqueues exactly one
// action_hello frame before any user frame (invariant 9).
func (s *Server) OpenConnect(id uint64, ip string, port uint16, needsReconnect bool) {
	s.outbound.Add(1)
	go func() {
		defer s.outbound.Done()
		s.dialAndServe(id, ip, port, needsReconnect)
	}()
}

// dialAndServe performs the connect retry loop once and, on success,
// blocks for the worker's whole lifetime.
func (s *Server) dialAndServe(id uint64, ip string, port uint16, needsReconnect bool) {
	nc := s.dialWithRetry(ip, port)
	if nc == nil {
		return
	}
	tcpNoDelay(nc)

	c := &conn{id: id, ip: ip, port: port, netConn: nc, isManager: id == 0}
	c.setNeedsReconnect(needsReconnect)

	s.connMu.Lock()
	s.conns[id] = c
	s.connMu.Unlock()

	if err := c.Send(app.SendActionHello()); err != nil && s.log != nil {
		s.log.WithField("conn", id).WithError(err).Warn("failed to send initial hello")
	}

	s.runWorker(c)
}

// dialWithRetry attempts net.Dial up to reconnectAttemptLimit times,
// sleeping reconnectSeconds between attempts. Returns nil if the server
// was stopped or every attempt failed.
func (s *Server) dialWithRetry(ip string, port uint16) net.Conn {
	limit := atomic.LoadUint64(&s.reconnectAttemptLimit)
	wait := time.Duration(atomic.LoadUint32(&s.reconnectSeconds)) * time.Second

	for attempt := uint64(0); attempt < limit; attempt++ {
		if s.State() == Stopped {
			return nil
		}
		nc, err := net.Dial("tcp", netutil.JoinHostPort(ip, port))
		if err == nil {
			return nc
		}
		if s.log != nil {
			s.log.WithField("target", netutil.JoinHostPort(ip, port)).
				WithError(err).Debug("outbound connect attempt failed")
		}
		if attempt+1 < limit {
			select {
			case <-time.After(wait):
			case <-s.stopCh:
				return nil
			}
		}
	}
	return nil
}

// reconnectLoop re-enters the connect loop for a connection that just
// dropped with needsReconnect=true. On success it notifies the
// application via on_reconnect (invariant 10).
func (s *Server) reconnectLoop(old *conn) {
	nc := s.dialWithRetry(old.ip, old.port)
	if nc == nil {
		return
	}
	tcpNoDelay(nc)

	c := &conn{id: old.id, ip: old.ip, port: old.port, netConn: nc, isManager: old.isManager}
	c.setNeedsReconnect(true)

	s.connMu.Lock()
	s.conns[c.id] = c
	s.connMu.Unlock()

	s.app.Reconnected(c.id)

	s.runWorker(c)
}

// CloseConnect closes and forgets the connection with the given id,
// whether inbound or outbound. An outbound connection closed this way is
// not redialed, even if it was opened with needsReconnect=true: this is an
// explicit request to stop talking to the peer, not a dropped socket.
func (s *Server) CloseConnect(id uint64) {
	s.connMu.Lock()
	c, ok := s.conns[id]
	if ok {
		delete(s.conns, id)
		if c.inbound {
			s.ipCounts[c.ip]--
			if s.ipCounts[c.ip] <= 0 {
				delete(s.ipCounts, c.ip)
			}
		}
	}
	s.connMu.Unlock()
	if ok {
		c.setNeedsReconnect(false)
		_ = c.netConn.Close()
	}
}
