package app

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/Roy2player/MSAPI-sub000/internal/param"
	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// slotIDName and slotIDState are the two const slots every Application
// always registers (spec.md §4.2).
const (
	slotIDName  uint64 = 2000001
	slotIDState uint64 = 2000002
)

const (
	stateOrdinalPaused  int64 = 0
	stateOrdinalRunning int64 = 1
)

// Replier is the minimal send surface an Application needs to answer a
// request on the connection it arrived on. internal/server's per-connection
// worker implements it; internal/app never imports internal/server.
type Replier interface {
	Send(frame *wire.Frame) error
}

// ShutdownRequester lets on_delete ask the owning server to stop, without
// internal/app importing internal/server.
type ShutdownRequester interface {
	RequestShutdown()
}

// Application is the user-facing object that owns the parameter registry
// and reacts to the standard protocol's reserved control ciphers.
type Application struct {
	name     string
	state    int32 // atomic State
	registry *param.Registry
	handler  Handler
	shutdown ShutdownRequester
	log      *logrus.Logger

	mu sync.Mutex // serializes dispatch so hook bodies observe a consistent state
}

// New constructs an Application in the initial Paused state, with its two
// always-registered const slots already present in the registry.
func New(name string, shutdown ShutdownRequester, log *logrus.Logger) *Application {
	a := &Application{
		name:     name,
		state:    int32(Paused),
		registry: param.NewRegistry(),
		shutdown: shutdown,
		log:      log,
	}
	a.handler = &DefaultHandler{App: a}

	a.registry.Register(param.NewConstSlot(slotIDName, "Name", wire.TagStr, func() wire.Value {
		return wire.Str(a.name)
	}))
	a.registry.Register(param.NewConstSlot(slotIDState, "Application state", wire.TagI32, func() wire.Value {
		return wire.I32(int32(a.State()))
	}))
	if s := a.registry.Slot(slotIDState); s != nil {
		s.StringInterpretations = map[int64]string{
			stateOrdinalPaused:  "Paused",
			stateOrdinalRunning: "Running",
		}
	}

	return a
}

// SetHandler installs a custom handler, typically one that embeds
// *DefaultHandler and overrides a subset of its methods.
func (a *Application) SetHandler(h Handler) { a.handler = h }

// SetShutdownRequester wires the server that should be asked to stop
// when on_delete fires. Construction order forces this to be set after
// the fact: the server needs an *Application to build its own parameter
// slots, so the application can't be born already knowing its server.
func (a *Application) SetShutdownRequester(sd ShutdownRequester) { a.shutdown = sd }

// Registry exposes the parameter registry so server-level code can
// register its own slots (spec.md §4.6) into the same registry an
// application's metadata/parameters responses serve from.
func (a *Application) Registry() *param.Registry { return a.registry }

// State returns the application's current lifecycle state.
func (a *Application) State() State { return State(atomic.LoadInt32(&a.state)) }

func (a *Application) setState(s State) { atomic.StoreInt32(&a.state, int32(s)) }

// RegisterParameter registers a mutable slot directly against the
// application's registry, matching spec.md §5's "registration of
// parameters (by id, name, mutable reference, constraints)" interface.
func (a *Application) RegisterParameter(id uint64, name string, kind wire.Tag, get func() wire.Value, set func(wire.Value), c param.Constraints) {
	a.registry.Register(param.NewSlot(id, name, kind, get, set, c))
}

// Dispatch routes one decoded frame to the appropriate hook, per
// spec.md §4.5. isManager reports whether the frame arrived on the
// manager connection (caller-chosen id 0).
func (a *Application) Dispatch(connID uint64, isManager bool, frame *wire.Frame, reply Replier) {
	if isManagerOnly(frame.Cipher) && !isManager {
		if a.log != nil {
			a.log.WithField("conn", connID).WithField("cipher", frame.Cipher).
				Warn("manager-only control cipher received on non-manager connection, dropping")
		}
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	switch frame.Cipher {
	case CipherActionRun:
		a.handler.OnRun()
	case CipherActionPause:
		a.handler.OnPause()
	case CipherActionDelete:
		a.handler.OnDelete()
	case CipherActionModify:
		a.handler.OnModify(decodeModifyFrame(frame, a.registry))
	case CipherHello:
		a.handler.OnHello(connID)
	case CipherMetadataRequest:
		a.handler.OnMetadata(connID, "")
		if reply != nil {
			metaJSON, err := a.registry.MetadataJSON()
			if err != nil {
				if a.log != nil {
					a.log.WithError(err).Error("failed to render metadata JSON")
				}
				return
			}
			if err := reply.Send(SendMetadataResponse(string(metaJSON))); err != nil && a.log != nil {
				a.log.WithError(err).Warn("failed to send metadata response")
			}
		}
	case CipherParametersRequest:
		snap := a.registry.Snapshot()
		a.handler.OnParameters(connID, snap)
		if reply != nil {
			if err := reply.Send(SendParametersResponse(a.registry)); err != nil && a.log != nil {
				a.log.WithError(err).Warn("failed to send parameters response")
			}
		}
	default:
		// Reserved ciphers with no case above, including metadata_response
		// and parameters_response, are ignored.
	}
}

// HandleBuffer routes a non-control-cipher buffer to the user hook.
func (a *Application) HandleBuffer(connID uint64, buf []byte) {
	a.handler.HandleBuffer(connID, buf)
}

// Disconnected notifies the application that connection connID dropped.
func (a *Application) Disconnected(connID uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler.OnDisconnect(connID)
}

// Reconnected notifies the application that connection connID was
// re-established.
func (a *Application) Reconnected(connID uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler.OnReconnect(connID)
}

func (a *Application) defaultOnRun() {
	if a.State() == Running {
		return
	}
	if a.registry.AllParametersValid() {
		a.setState(Running)
	}
}

func (a *Application) defaultOnPause() {
	if a.State() == Running {
		a.setState(Paused)
	}
}

func (a *Application) defaultOnModify(updates []param.ValueUpdate) {
	res := a.registry.Merge(updates)
	if len(res.Errors) > 0 || !a.registry.AllParametersValid() {
		a.handler.OnPause()
	}
}

func (a *Application) defaultOnDelete() {
	if a.State() == Running {
		a.handler.OnPause()
	}
	if a.shutdown != nil {
		a.shutdown.RequestShutdown()
	}
}

func (a *Application) defaultOnDisconnect(connID uint64) { a.handler.OnPause() }

func (a *Application) defaultOnReconnect(connID uint64) { a.handler.OnRun() }

// decodeModifyFrame turns an action_modify frame's body into a batch of
// parameter updates, one per key. Keys that aren't registered are passed
// through as well; Registry.Merge reports those as per-slot errors rather
// than failing the whole batch.
func decodeModifyFrame(frame *wire.Frame, reg *param.Registry) []param.ValueUpdate {
	keys := frame.Keys()
	updates := make([]param.ValueUpdate, 0, len(keys))
	for _, k := range keys {
		v, ok := frame.Get(k)
		if !ok {
			continue
		}
		updates = append(updates, param.ValueUpdate{ID: k, Value: v})
	}
	return updates
}
