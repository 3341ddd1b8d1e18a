package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/Roy2player/MSAPI-sub000/internal/app"
	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// thinClient is a minimal framed TCP client for the standard protocol,
// used by the connect/params CLI subcommands. It mirrors the teacher's
// newline-framed JSON replication client, adapted to this project's
// binary frame codec.
type thinClient struct {
	conn net.Conn
	rd   *bufio.Reader
}

func dialThinClient(addr string) (*thinClient, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to %s: %w", addr, err)
	}
	return &thinClient{conn: conn, rd: bufio.NewReader(conn)}, nil
}

func (c *thinClient) Close() { _ = c.conn.Close() }

func (c *thinClient) send(f *wire.Frame) error {
	_, err := c.conn.Write(f.Encode())
	return err
}

// recvFrame blocks for exactly one frame, the same header-then-body read
// the server's worker performs.
func (c *thinClient) recvFrame() (*wire.Frame, error) {
	header := make([]byte, wire.HeaderSize)
	if _, err := io.ReadFull(c.rd, header); err != nil {
		return nil, err
	}
	totalLength := binary.LittleEndian.Uint64(header[8:16])
	buf := make([]byte, totalLength)
	copy(buf, header)
	if totalLength > wire.HeaderSize {
		if _, err := io.ReadFull(c.rd, buf[wire.HeaderSize:]); err != nil {
			return nil, err
		}
	}
	return wire.DecodeFrame(buf)
}

func fetchMetadata(addr string) (string, error) {
	c, err := dialThinClient(addr)
	if err != nil {
		return "", err
	}
	defer c.Close()
	if err := c.send(app.SendMetadataRequest()); err != nil {
		return "", err
	}
	f, err := c.recvFrame()
	if err != nil {
		return "", err
	}
	v, ok := f.Get(0)
	if !ok {
		return "", fmt.Errorf("metadata response missing key 0")
	}
	return v.Str(), nil
}

func fetchParameters(addr string) (*wire.Frame, error) {
	c, err := dialThinClient(addr)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	if err := c.send(app.SendParametersRequest()); err != nil {
		return nil, err
	}
	return c.recvFrame()
}
