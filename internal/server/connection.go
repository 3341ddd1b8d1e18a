package server

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/Roy2player/MSAPI-sub000/internal/netutil"
	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// conn tracks one live TCP connection, inbound or outbound. It implements
// app.Replier so the Application can answer a request on the socket it
// arrived on without internal/app importing internal/server.
type conn struct {
	id        uint64
	ip        string
	port      uint16 // outbound target port, used to re-dial on reconnect
	netConn   net.Conn
	isManager bool // the outbound connection opened with caller-chosen id 0
	inbound   bool // true for accepted connections, counted against the per-IP cap

	needsReconnect int32 // atomic bool, only meaningful for outbound connections; cleared by CloseConnect

	sendMu sync.Mutex // serializes writes; recv buffer growth needs no lock, owned by the worker goroutine
}

// Send encodes frame and writes it to the connection's socket.
func (c *conn) Send(frame *wire.Frame) error {
	buf := frame.Encode()
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	_, err := c.netConn.Write(buf)
	return err
}

func (c *conn) setNeedsReconnect(v bool) {
	var i int32
	if v {
		i = 1
	}
	atomic.StoreInt32(&c.needsReconnect, i)
}

func (c *conn) getNeedsReconnect() bool {
	return atomic.LoadInt32(&c.needsReconnect) != 0
}

func (c *conn) remoteIP() string {
	if c.ip != "" {
		return c.ip
	}
	return netutil.PeerHost(c.netConn)
}
