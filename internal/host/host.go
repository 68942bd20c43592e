// Package host defines the capability set xflash needs from a windowing
// environment. The controller and registry are written against the Host
// interface only; concrete environments live in the x11 and memory
// subpackages.
//
// The environment is assumed to serialize surface mutation itself (one
// flow of control mutates window state at a time). Host implementations
// therefore do not need to make individual mutations atomic with respect
// to each other, and callers must not drive mutating methods for the same
// frame from concurrent goroutines.
package host

import "errors"

// FrameID identifies a top-level frame. IDs are host-assigned and stable
// for the lifetime of the frame; a destroyed frame's ID may be reused.
type FrameID uint32

// WindowID identifies a window (a content pane inside a frame).
type WindowID uint32

// Visibility is the display state of a frame. Windows have no independent
// visibility; they inherit their owning frame's.
type Visibility int

const (
	Visible Visibility = iota
	Iconified
	Hidden
)

func (v Visibility) String() string {
	switch v {
	case Visible:
		return "visible"
	case Iconified:
		return "iconified"
	case Hidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// FrameInfo is a point-in-time snapshot of a frame. It does not track the
// frame afterwards; re-query the host for fresh state.
type FrameInfo struct {
	ID         FrameID    `json:"id"`
	Name       string     `json:"name"`
	Visibility Visibility `json:"visibility"`
}

// ContentRef names a content unit either by host handle or by name.
// Exactly one of the two fields is expected to be set.
type ContentRef struct {
	ID   uint32 `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// IsZero reports whether the reference names nothing.
func (r ContentRef) IsZero() bool {
	return r.ID == 0 && r.Name == ""
}

// ErrGone is returned by host operations whose target frame or window no
// longer exists.
var ErrGone = errors.New("surface no longer exists")

// Host is the port to the windowing environment.
type Host interface {
	// ListFrames enumerates the currently live frames. Enumeration order
	// is host-defined and not guaranteed stable across calls.
	ListFrames() ([]*FrameInfo, error)

	// FrameInfo returns a snapshot of one frame, or ErrGone.
	FrameInfo(id FrameID) (*FrameInfo, error)

	// IsLive reports whether the frame currently exists.
	IsLive(id FrameID) bool

	// ActiveFrame returns the currently active (selected) frame.
	ActiveFrame() (FrameID, error)

	// CreateFrame creates a new frame with the given name. params carries
	// host-interpreted creation parameters such as initial visibility or
	// geometry.
	CreateFrame(name string, params map[string]string) (FrameID, error)

	// SelectFrame makes the frame the active selection.
	SelectFrame(id FrameID) error

	// RaiseFrame forces the frame visible: mapped, deiconified, and on top
	// of the stacking order.
	RaiseFrame(id FrameID) error

	// IconifyFrame minimizes the frame.
	IconifyFrame(id FrameID) error

	// HideFrame makes the frame invisible without iconifying it.
	HideFrame(id FrameID) error

	// FocusHolder returns the frame currently holding input focus.
	FocusHolder() (FrameID, error)

	// SetFocusHolder directs input focus to the frame.
	SetFocusHolder(id FrameID) error

	// SelectedWindow returns the currently selected window.
	SelectedWindow() (WindowID, error)

	// SelectWindow makes the window the current selection.
	SelectWindow(id WindowID) error

	// WindowFrame returns the frame owning the window.
	WindowFrame(id WindowID) (FrameID, error)

	// FindWindowShowing searches all frames for a window currently showing
	// the referenced content.
	FindWindowShowing(ref ContentRef) (WindowID, bool)

	// ContentExists reports whether the referenced content unit exists.
	ContentExists(ref ContentRef) bool

	// ShowContent binds the referenced content into the frame's display
	// area, reusing the frame's existing pane ("same-unit" placement).
	// hints are host-interpreted placement hints.
	ShowContent(frame FrameID, ref ContentRef, hints map[string]string) error

	// Flush forces a synchronous redraw so that prior mutations are
	// observable before it returns.
	Flush()

	// Close releases the connection to the environment.
	Close() error
}
