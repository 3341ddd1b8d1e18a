package app

import (
	"testing"

	"github.com/Roy2player/MSAPI-sub000/internal/app/testutil"
	"github.com/Roy2player/MSAPI-sub000/internal/param"
	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

type fakeShutdown struct{ requested int }

func (f *fakeShutdown) RequestShutdown() { f.requested++ }

type fakeReplier struct{ sent []*wire.Frame }

func (f *fakeReplier) Send(frame *wire.Frame) error {
	f.sent = append(f.sent, frame)
	return nil
}

// countingHandler wraps DefaultHandler and records every hook call in a
// HookCounter, used to assert exact fire counts (spec.md scenarios S4/S5
// implicitly require no handler to fire for an out-of-scope cipher).
type countingHandler struct {
	DefaultHandler
	counter *testutil.HookCounter
}

func (h *countingHandler) OnRun()                                    { h.counter.Hit("on_run"); h.DefaultHandler.OnRun() }
func (h *countingHandler) OnPause()                                  { h.counter.Hit("on_pause"); h.DefaultHandler.OnPause() }
func (h *countingHandler) OnModify(u []param.ValueUpdate)            { h.counter.Hit("on_modify"); h.DefaultHandler.OnModify(u) }
func (h *countingHandler) OnDelete()                                 { h.counter.Hit("on_delete"); h.DefaultHandler.OnDelete() }
func (h *countingHandler) OnHello(id uint64)                         { h.counter.Hit("on_hello") }
func (h *countingHandler) OnDisconnect(id uint64)                    { h.counter.Hit("on_disconnect"); h.DefaultHandler.OnDisconnect(id) }
func (h *countingHandler) OnReconnect(id uint64)                     { h.counter.Hit("on_reconnect"); h.DefaultHandler.OnReconnect(id) }

func newTestApp() (*Application, *countingHandler, *fakeShutdown) {
	sd := &fakeShutdown{}
	a := New("test-app", sd, nil)
	ch := &countingHandler{DefaultHandler: DefaultHandler{App: a}, counter: testutil.NewHookCounter()}
	a.SetHandler(ch)
	return a, ch, sd
}

// TestRunGatingByParameterValidity exercises S4 from spec.md §8.
func TestRunGatingByParameterValidity(t *testing.T) {
	a, _, _ := newTestApp()
	var x, y int64 = -1, -1
	a.RegisterParameter(10, "X", wire.TagI64,
		func() wire.Value { return wire.I64(x) }, func(v wire.Value) { x = v.I64() },
		param.Constraints{HasMin: true, Min: wire.I64(0)})
	a.RegisterParameter(11, "Y", wire.TagI64,
		func() wire.Value { return wire.I64(y) }, func(v wire.Value) { y = v.I64() },
		param.Constraints{HasMin: true, Min: wire.I64(0)})

	// Force both slots invalid via a merge so their error state is set.
	a.Registry().Merge([]param.ValueUpdate{{ID: 10, Value: wire.I64(-5)}, {ID: 11, Value: wire.I64(-5)}})

	a.Dispatch(0, true, wire.NewFrame(CipherActionRun), nil)
	if a.State() != Paused {
		t.Fatalf("expected Paused while parameters invalid, got %v", a.State())
	}

	modify := wire.NewFrame(CipherActionModify)
	modify.Set(10, wire.I64(1))
	modify.Set(11, wire.I64(1))
	a.Dispatch(0, true, modify, nil)

	a.Dispatch(0, true, wire.NewFrame(CipherActionRun), nil)
	if a.State() != Running {
		t.Fatalf("expected Running after fixing parameters, got %v", a.State())
	}

	a.Dispatch(0, true, wire.NewFrame(CipherActionRun), nil)
	if a.State() != Running {
		t.Fatalf("expected Running to be stable on a second run, got %v", a.State())
	}
}

// TestNonManagerCannotRun exercises S5 from spec.md §8.
func TestNonManagerCannotRun(t *testing.T) {
	a, ch, _ := newTestApp()
	a.Dispatch(1, false, wire.NewFrame(CipherActionRun), nil)
	if a.State() != Paused {
		t.Fatalf("expected state unchanged, got %v", a.State())
	}
	if ch.counter.Count("on_run") != 0 {
		t.Fatalf("expected on_run not to fire for a non-manager connection")
	}
}

func TestOnDeleteRequestsShutdown(t *testing.T) {
	a, ch, sd := newTestApp()
	a.Dispatch(0, true, wire.NewFrame(CipherActionDelete), nil)
	if sd.requested != 1 {
		t.Fatalf("expected exactly one shutdown request, got %d", sd.requested)
	}
	if ch.counter.Count("on_delete") != 1 {
		t.Fatalf("expected on_delete to fire once")
	}
}

func TestDisconnectPausesAndReconnectRuns(t *testing.T) {
	a, ch, _ := newTestApp()
	a.setState(Running)
	a.Disconnected(5)
	if a.State() != Paused {
		t.Fatalf("expected on_disconnect to pause, got %v", a.State())
	}
	if ch.counter.Count("on_disconnect") != 1 {
		t.Fatalf("expected on_disconnect to fire once")
	}

	a.Reconnected(5)
	if a.State() != Running {
		t.Fatalf("expected on_reconnect to resume Running, got %v", a.State())
	}
}

func TestMetadataRequestRepliesWithCachedJSON(t *testing.T) {
	a, _, _ := newTestApp()
	r := &fakeReplier{}
	a.Dispatch(2, false, wire.NewFrame(CipherMetadataRequest), r)
	if len(r.sent) != 1 {
		t.Fatalf("expected exactly one reply frame, got %d", len(r.sent))
	}
	if r.sent[0].Cipher != CipherMetadataResponse {
		t.Fatalf("expected metadata_response cipher, got %d", r.sent[0].Cipher)
	}
	v, ok := r.sent[0].Get(0)
	if !ok || v.Str() == "" {
		t.Fatalf("expected non-empty metadata JSON under key 0")
	}
}

func TestParametersRequestRepliesWithAllSlots(t *testing.T) {
	a, _, _ := newTestApp()
	r := &fakeReplier{}
	a.Dispatch(2, false, wire.NewFrame(CipherParametersRequest), r)
	if len(r.sent) != 1 {
		t.Fatalf("expected exactly one reply frame, got %d", len(r.sent))
	}
	if _, ok := r.sent[0].Get(slotIDName); !ok {
		t.Fatalf("expected Name slot present in parameters response")
	}
	if _, ok := r.sent[0].Get(slotIDState); !ok {
		t.Fatalf("expected Application state slot present in parameters response")
	}
}
