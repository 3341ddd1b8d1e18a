package app

import "github.com/Roy2player/MSAPI-sub000/internal/param"

// Handler is the small interface user code implements to override the
// application's default lifecycle behavior, replacing the original's
// Server+Application+Handler inheritance chain with composition: an
// Application owns a Handler (itself, by default) and the server owns an
// Application.
type Handler interface {
	HandleBuffer(connID uint64, buf []byte)
	OnRun()
	OnPause()
	OnModify(updates []param.ValueUpdate)
	OnDelete()
	OnHello(connID uint64)
	OnMetadata(connID uint64, metadataJSON string)
	OnParameters(connID uint64, snapshot []param.SnapshotEntry)
	OnDisconnect(connID uint64)
	OnReconnect(connID uint64)
}

// DefaultHandler implements every Handler method per spec.md §4.5's
// default behaviors, wired against the owning Application. Embed it in a
// custom handler to override only the hooks that matter and fall back to
// the defaults for the rest.
type DefaultHandler struct {
	App *Application
}

func (h *DefaultHandler) HandleBuffer(connID uint64, buf []byte) {}

func (h *DefaultHandler) OnRun() { h.App.defaultOnRun() }

func (h *DefaultHandler) OnPause() { h.App.defaultOnPause() }

func (h *DefaultHandler) OnModify(updates []param.ValueUpdate) { h.App.defaultOnModify(updates) }

func (h *DefaultHandler) OnDelete() { h.App.defaultOnDelete() }

func (h *DefaultHandler) OnHello(connID uint64) {}

func (h *DefaultHandler) OnMetadata(connID uint64, metadataJSON string) {}

func (h *DefaultHandler) OnParameters(connID uint64, snapshot []param.SnapshotEntry) {}

func (h *DefaultHandler) OnDisconnect(connID uint64) { h.App.defaultOnDisconnect(connID) }

func (h *DefaultHandler) OnReconnect(connID uint64) { h.App.defaultOnReconnect(connID) }
