package display

import "github.com/kestrelwm/xflash/internal/host"

// EventKind labels a flash lifecycle event.
type EventKind string

const (
	EventFlashStarted  EventKind = "flash_started"
	EventFlashRestored EventKind = "flash_restored"
	EventFlashFailed   EventKind = "flash_failed"
)

// Event describes one step of a flash's lifecycle, for observers such as
// the API event stream.
type Event struct {
	Kind  EventKind    `json:"kind"`
	Frame host.FrameID `json:"frame,omitempty"`
	Name  string       `json:"name,omitempty"`
	Error string       `json:"error,omitempty"`
}
