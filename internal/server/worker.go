package server

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync/atomic"

	"github.com/Roy2player/MSAPI-sub000/internal/app"
	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// runWorker is the per-connection loop described in spec.md §4.6: read a
// 16-byte header, grow the buffer to fit the declared body length (or
// drain-and-drop if it exceeds the configured cap), read the body, then
// dispatch or hand off to handle_buffer. It holds the read side of
// aliveMu for its entire lifetime so Stop's write-side Lock blocks until
// every worker has exited.
func (s *Server) runWorker(c *conn) {
	s.aliveMu.RLock()
	defer s.aliveMu.RUnlock()

	defer func() {
		_ = c.netConn.Close()
		s.removeConn(c)
		if c.getNeedsReconnect() && s.State() != Stopped {
			s.app.Disconnected(c.id)
			s.outbound.Add(1)
			go func() {
				defer s.outbound.Done()
				s.reconnectLoop(c)
			}()
		}
	}()

	header := make([]byte, wire.HeaderSize)
	bufSize := atomic.LoadUint64(&s.recvBufferSize)
	bufLimit := atomic.LoadUint64(&s.recvBufferSizeLimit)
	buf := make([]byte, bufSize)

	for {
		if _, err := io.ReadFull(c.netConn, header); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return
			}
			if s.log != nil {
				s.log.WithField("conn", c.id).WithError(err).Debug("worker read error, closing")
			}
			return
		}

		cipher := binary.LittleEndian.Uint64(header[0:8])
		totalLength := binary.LittleEndian.Uint64(header[8:16])

		bodyLen := int64(totalLength) - int64(wire.HeaderSize)
		if bodyLen < 0 {
			if s.log != nil {
				s.log.WithField("conn", c.id).Warn("frame total_length shorter than header, dropping connection")
			}
			return
		}

		if uint64(totalLength) > uint64(len(buf)) {
			want := totalLength
			if want > bufLimit {
				// Drain and drop: the frame is larger than this
				// connection is ever allowed to buffer.
				if err := drainN(c.netConn, bodyLen); err != nil {
					return
				}
				s.met.FrameDropped("over_recv_buffer_limit")
				continue
			}
			buf = make([]byte, want)
		}

		copy(buf[0:wire.HeaderSize], header)
		if bodyLen > 0 {
			if _, err := io.ReadFull(c.netConn, buf[wire.HeaderSize:totalLength]); err != nil {
				return
			}
		}

		frame := buf[:totalLength]
		if app.IsReserved(cipher) {
			s.dispatchControlFrame(c, frame)
		} else {
			s.app.HandleBuffer(c.id, frame)
		}
	}
}

// drainN reads and discards exactly n bytes, used when a frame exceeds
// the per-connection recv buffer cap.
func drainN(r net.Conn, n int64) error {
	_, err := io.CopyN(io.Discard, r, n)
	return err
}

func (s *Server) dispatchControlFrame(c *conn, raw []byte) {
	f, err := wire.DecodeFrame(raw)
	if err != nil {
		s.met.FrameDropped("decode_error")
		if s.log != nil {
			s.log.WithField("conn", c.id).WithError(err).Error("failed to decode control frame")
		}
		return
	}
	s.met.FrameDecoded()
	s.app.Dispatch(c.id, c.isManager, f, c)
}
