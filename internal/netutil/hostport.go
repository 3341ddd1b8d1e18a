// Package netutil collects the small net.Addr/host:port helpers shared by
// the server's listener, dialer, and connection bookkeeping, adapted from
// the ad hoc address handling in the teacher's connection pool.
package netutil

import (
	"fmt"
	"net"
)

// JoinHostPort formats ip and port as the "ip:port" string net.Dial and
// net.Listen expect, saving every caller its own fmt.Sprintf.
func JoinHostPort(ip string, port uint16) string {
	return fmt.Sprintf("%s:%d", ip, port)
}

// PeerHost extracts the host portion of a net.Conn's remote address,
// falling back to the full address string if it isn't in host:port form
// (e.g. a pipe or unix socket in tests).
func PeerHost(c net.Conn) string {
	host, _, err := net.SplitHostPort(c.RemoteAddr().String())
	if err != nil {
		return c.RemoteAddr().String()
	}
	return host
}
