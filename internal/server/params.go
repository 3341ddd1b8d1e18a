package server

import (
	"sync/atomic"

	"github.com/Roy2player/MSAPI-sub000/internal/param"
	"github.com/Roy2player/MSAPI-sub000/internal/table"
	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// Ids of the nine server-level parameters always registered into the
// owning Application's registry (spec.md §4.6), plus the connected-peers
// table slot.
const (
	slotIDReconnectSeconds  uint64 = 1000001
	slotIDReconnectAttempts uint64 = 1000002
	slotIDMaxPerIP          uint64 = 1000003
	slotIDRecvBufferSize    uint64 = 1000004
	slotIDRecvBufferLimit   uint64 = 1000005
	slotIDServerState       uint64 = 1000006
	slotIDMaxConnections    uint64 = 1000007
	slotIDListeningIP       uint64 = 1000008
	slotIDListeningPort     uint64 = 1000009
	slotIDPeers             uint64 = 1000010
)

// Column ids for the peers table's four columns.
const (
	peersColID      uint64 = 1
	peersColIP      uint64 = 2
	peersColPort    uint64 = 3
	peersColManager uint64 = 4
)

const (
	serverStateOrdinalUndefined     int64 = 0
	serverStateOrdinalInitialization int64 = 1
	serverStateOrdinalRunning        int64 = 2
	serverStateOrdinalStopped        int64 = 3
)

// registerParameters installs the server's ten slots (the nine
// server-level parameters plus the connected-peers table) into reg, reading
// and writing through the Server's own fields via accessor closures —
// the same ownership model internal/app uses for its const slots.
func (s *Server) registerParameters(reg *param.Registry) {
	reg.Register(param.NewSlot(slotIDReconnectSeconds, "Seconds between try to connect", wire.TagU32,
		func() wire.Value { return wire.U32(atomic.LoadUint32(&s.reconnectSeconds)) },
		func(v wire.Value) { atomic.StoreUint32(&s.reconnectSeconds, v.U32()) },
		param.Constraints{HasMin: true, Min: wire.U32(1)}))

	reg.Register(param.NewSlot(slotIDReconnectAttempts, "Limit of attempts to connection", wire.TagU64,
		func() wire.Value { return wire.U64(atomic.LoadUint64(&s.reconnectAttemptLimit)) },
		func(v wire.Value) { atomic.StoreUint64(&s.reconnectAttemptLimit, v.U64()) },
		param.Constraints{HasMin: true, Min: wire.U64(1)}))

	reg.Register(param.NewSlot(slotIDMaxPerIP, "Limit of connections from one IP", wire.TagU64,
		func() wire.Value { return wire.U64(atomic.LoadUint64(&s.maxConnectionsPerIP)) },
		func(v wire.Value) { atomic.StoreUint64(&s.maxConnectionsPerIP, v.U64()) },
		param.Constraints{HasMin: true, Min: wire.U64(1)}))

	reg.Register(param.NewSlot(slotIDRecvBufferSize, "Recv buffer size", wire.TagU64,
		func() wire.Value { return wire.U64(atomic.LoadUint64(&s.recvBufferSize)) },
		func(v wire.Value) { atomic.StoreUint64(&s.recvBufferSize, v.U64()) },
		param.Constraints{HasMin: true, Min: wire.U64(3)}))

	reg.Register(param.NewSlot(slotIDRecvBufferLimit, "Recv buffer size limit", wire.TagU64,
		func() wire.Value { return wire.U64(atomic.LoadUint64(&s.recvBufferSizeLimit)) },
		func(v wire.Value) { atomic.StoreUint64(&s.recvBufferSizeLimit, v.U64()) },
		param.Constraints{HasMin: true, Min: wire.U64(1024)}))

	serverStateSlot := param.NewConstSlot(slotIDServerState, "Server state", wire.TagI32, func() wire.Value {
		return wire.I32(int32(s.serverStateOrdinal()))
	})
	serverStateSlot.StringInterpretations = map[int64]string{
		serverStateOrdinalUndefined:      "Undefined",
		serverStateOrdinalInitialization: "Initialization",
		serverStateOrdinalRunning:        "Running",
		serverStateOrdinalStopped:        "Stopped",
	}
	reg.Register(serverStateSlot)

	reg.Register(param.NewConstSlot(slotIDMaxConnections, "Max connections", wire.TagI32, func() wire.Value {
		return wire.I32(atomic.LoadInt32(&s.maxConnections))
	}))
	reg.Register(param.NewConstSlot(slotIDListeningIP, "Listening IP", wire.TagStr, func() wire.Value {
		return wire.Str(s.listenIP)
	}))
	reg.Register(param.NewConstSlot(slotIDListeningPort, "Listening port", wire.TagU16, func() wire.Value {
		return wire.U16(s.listenPort)
	}))

	peersSlot := param.NewConstSlot(slotIDPeers, "Connected peers", wire.TagTableBlob, func() wire.Value {
		return wire.Table(s.peersBlob())
	})
	peersSlot.TableColumns = []param.TableColumnMeta{
		{ID: peersColID, Type: wire.TagU64, Metadata: `{"name":"id"}`},
		{ID: peersColIP, Type: wire.TagStr, Metadata: `{"name":"ip"}`},
		{ID: peersColPort, Type: wire.TagU16, Metadata: `{"name":"port"}`},
		{ID: peersColManager, Type: wire.TagBool, Metadata: `{"name":"manager"}`},
	}
	reg.Register(peersSlot)
}

// peersBlob snapshots the currently tracked connections into an encoded
// table blob, refreshed on every read of the peers slot's value (parameters
// response, snapshot) rather than kept
// incrementally in sync with connMu's own bookkeeping.
func (s *Server) peersBlob() table.Blob {
	t, err := table.New(
		[]uint64{peersColID, peersColIP, peersColPort, peersColManager},
		[]wire.Tag{wire.TagU64, wire.TagStr, wire.TagU16, wire.TagBool},
	)
	if err != nil {
		t, _ = table.New(nil, nil)
	}

	s.connMu.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.connMu.Unlock()

	for _, c := range conns {
		_ = t.AppendRow(wire.U64(c.id), wire.Str(c.ip), wire.U16(c.port), wire.Bool(c.isManager))
	}
	return t.Encode()
}

func (s *Server) serverStateOrdinal() int64 {
	switch s.State() {
	case Initialization:
		return serverStateOrdinalInitialization
	case Running:
		return serverStateOrdinalRunning
	case Stopped:
		return serverStateOrdinalStopped
	default:
		return serverStateOrdinalUndefined
	}
}
