package server

import (
	"encoding/binary"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Roy2player/MSAPI-sub000/internal/app"
	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

func startTestServer(t *testing.T) (*Server, *app.Application) {
	t.Helper()
	a := app.New("test-app", nil, nil)
	srv := New(a, nil, nil, DefaultConfig())
	a.SetShutdownRequester(srv)

	go func() { _ = srv.Start("127.0.0.1", 0) }()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == nil {
		if time.Now().After(deadline) {
			t.Fatalf("server did not bind in time")
		}
		time.Sleep(time.Millisecond)
	}
	return srv, a
}

func recvFrame(t *testing.T, c net.Conn) *wire.Frame {
	t.Helper()
	header := make([]byte, wire.HeaderSize)
	if _, err := readFull(c, header); err != nil {
		t.Fatalf("read header: %v", err)
	}
	totalLength := binary.LittleEndian.Uint64(header[8:16])
	buf := make([]byte, totalLength)
	copy(buf, header)
	if totalLength > wire.HeaderSize {
		if _, err := readFull(c, buf[wire.HeaderSize:]); err != nil {
			t.Fatalf("read body: %v", err)
		}
	}
	f, err := wire.DecodeFrame(buf)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return f
}

func readFull(c net.Conn, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := c.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func TestMetadataRequestOverTheWire(t *testing.T) {
	srv, _ := startTestServer(t)
	defer srv.Stop()

	c, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if _, err := c.Write(app.SendMetadataRequest().Encode()); err != nil {
		t.Fatalf("write: %v", err)
	}

	f := recvFrame(t, c)
	if f.Cipher != app.CipherMetadataResponse {
		t.Fatalf("expected metadata_response cipher, got %d", f.Cipher)
	}
	v, ok := f.Get(0)
	if !ok || v.Str() == "" {
		t.Fatalf("expected non-empty metadata JSON under key 0")
	}
}

// TestPerIPConnectionCap exercises S6 from spec.md §8: a peer cannot
// exceed the configured per-IP connection limit.
func TestPerIPConnectionCap(t *testing.T) {
	srv, _ := startTestServer(t)
	defer srv.Stop()
	atomic.StoreUint64(&srv.maxConnectionsPerIP, 1)

	c1, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial 1: %v", err)
	}
	defer c1.Close()

	time.Sleep(20 * time.Millisecond) // let the accept loop register c1

	c2, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial 2: %v", err)
	}
	defer c2.Close()

	// The server should close c2 immediately since the IP is already at cap.
	buf := make([]byte, 1)
	c2.SetReadDeadline(time.Now().Add(time.Second))
	_, err = c2.Read(buf)
	if err == nil {
		t.Fatalf("expected the second connection from the same IP to be closed")
	}
}

func TestManagerOnlyCipherRejectedOnNonManagerConnection(t *testing.T) {
	srv, a := startTestServer(t)
	defer srv.Stop()

	c, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	run := wire.NewFrame(app.CipherActionRun)
	if _, err := c.Write(run.Encode()); err != nil {
		t.Fatalf("write: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if a.State() != app.Paused {
		t.Fatalf("expected application to remain Paused, got %v", a.State())
	}
}
