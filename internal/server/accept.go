package server

import (
	"net"
	"sync/atomic"

	"github.com/Roy2player/MSAPI-sub000/internal/netutil"
)

// acceptLoop runs until the listener is closed by Stop, spawning one
// worker goroutine per accepted connection (spec.md §4.6).
func (s *Server) acceptLoop(ln net.Listener) {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if s.State() == Stopped {
				return
			}
			if s.log != nil {
				s.log.WithError(err).Warn("accept failed")
			}
			return
		}
		tcpNoDelay(nc)

		c, ok := s.admitInbound(nc)
		if !ok {
			_ = nc.Close()
			continue
		}

		go s.runWorker(c)
	}
}

// admitInbound enforces the per-IP connection cap and, if there is room,
// allocates a fresh positive id and records the connection.
func (s *Server) admitInbound(nc net.Conn) (*conn, bool) {
	host := netutil.PeerHost(nc)

	s.connMu.Lock()
	defer s.connMu.Unlock()

	limit := int(atomic.LoadUint64(&s.maxConnectionsPerIP))
	if s.ipCounts[host] >= limit {
		if s.log != nil {
			s.log.WithField("ip", host).Warn("rejecting connection: per-IP cap reached")
		}
		return nil, false
	}

	id := s.nextID
	s.nextID++

	c := &conn{id: id, ip: host, netConn: nc, inbound: true}
	s.conns[id] = c
	s.ipCounts[host]++
	s.met.ConnectionOpened()
	return c, true
}

// removeConn drops a connection's bookkeeping. The caller still owns
// closing the socket.
func (s *Server) removeConn(c *conn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if _, ok := s.conns[c.id]; !ok {
		return
	}
	delete(s.conns, c.id)
	if c.inbound {
		s.ipCounts[c.ip]--
		if s.ipCounts[c.ip] <= 0 {
			delete(s.ipCounts, c.ip)
		}
	}
	s.met.ConnectionClosed()
}
