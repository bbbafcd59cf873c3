package service

import "context"

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples services from wailsRuntime
// ─────────────────────────────────────────────────────────────

// EventEmitter pushes board events to the frontend. The App struct
// implements it by delegating to wailsRuntime.EventsEmit; services take
// the interface so they stay testable without a Wails context.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Event names emitted by the board service.
const (
	EventBoardSaved    = "board:saved"
	EventBoardLoaded   = "board:loaded"
	EventBoardReloaded = "board:reloaded"
	EventHistoryPushed = "history:pushed"
)

// MockEmitter records emissions for test assertions.
type MockEmitter struct {
	Events []EmittedEvent
}

// EmittedEvent is a single recorded emission.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}
