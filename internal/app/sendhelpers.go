package app

import (
	"github.com/Roy2player/MSAPI-sub000/internal/param"
	"github.com/Roy2player/MSAPI-sub000/internal/wire"
)

// The Send* family builds ready-to-encode control frames for each
// reserved cipher, grounded on the original protocol's six-function
// Send*/response helper family (original_source/library/source/protocol/standard.h).
// Each returns a *wire.Frame; callers Encode() and write it to a
// connection via whatever transport they hold.

// SendActionHello builds an empty-body action_hello frame.
func SendActionHello() *wire.Frame {
	return wire.NewFrame(CipherHello)
}

// SendActionRun builds an empty-body action_run frame.
func SendActionRun() *wire.Frame {
	return wire.NewFrame(CipherActionRun)
}

// SendActionPause builds an empty-body action_pause frame.
func SendActionPause() *wire.Frame {
	return wire.NewFrame(CipherActionPause)
}

// SendActionDelete builds an empty-body action_delete frame.
func SendActionDelete() *wire.Frame {
	return wire.NewFrame(CipherActionDelete)
}

// SendActionModify builds an action_modify frame carrying a partial
// parameter map.
func SendActionModify(updates []param.ValueUpdate) *wire.Frame {
	f := wire.NewFrame(CipherActionModify)
	for _, u := range updates {
		f.Set(u.ID, u.Value)
	}
	return f
}

// SendMetadataRequest builds an empty-body metadata_request frame.
func SendMetadataRequest() *wire.Frame {
	return wire.NewFrame(CipherMetadataRequest)
}

// SendMetadataResponse builds a metadata_response frame carrying the
// cached metadata JSON under key 0.
func SendMetadataResponse(metadataJSON string) *wire.Frame {
	f := wire.NewFrame(CipherMetadataResponse)
	f.Set(0, wire.Str(metadataJSON))
	return f
}

// SendParametersRequest builds an empty-body parameters_request frame.
func SendParametersRequest() *wire.Frame {
	return wire.NewFrame(CipherParametersRequest)
}

// SendParametersResponse builds a parameters_response frame carrying
// every slot's current value keyed by its id, mutable slots first then
// const slots (spec.md §4.5).
func SendParametersResponse(reg *param.Registry) *wire.Frame {
	f := wire.NewFrame(CipherParametersResponse)
	for _, id := range reg.MutableThenConstIDs() {
		if s := reg.Slot(id); s != nil {
			f.Set(id, s.Value())
		}
	}
	return f
}
