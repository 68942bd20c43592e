// Package memory implements host.Host entirely in memory. It backs the
// test suite and the daemon's headless mode: frames, panes, content units,
// focus, selection, and stacking order are all modeled without a display
// server.
package memory

import (
	"fmt"
	"sync"

	"github.com/kestrelwm/xflash/internal/host"
)

type frame struct {
	id         host.FrameID
	name       string
	visibility host.Visibility
	window     host.WindowID // the frame's single pane
	stack      int           // higher is closer to the top
}

type window struct {
	id      host.WindowID
	frame   host.FrameID
	content uint32 // content unit id, 0 when empty
}

type content struct {
	id   uint32
	name string
}

// Host is an in-memory windowing environment.
type Host struct {
	mu        sync.Mutex
	frames    map[host.FrameID]*frame
	windows   map[host.WindowID]*window
	contents  map[uint32]*content
	active    host.FrameID
	focus     host.FrameID
	selected  host.WindowID
	nextID    uint32
	nextStack int

	// creationParams records the params passed to CreateFrame per frame,
	// for inspection by tests.
	creationParams map[host.FrameID]map[string]string
}

var _ host.Host = (*Host)(nil)

// New returns an empty in-memory host.
func New() *Host {
	return &Host{
		frames:         make(map[host.FrameID]*frame),
		windows:        make(map[host.WindowID]*window),
		contents:       make(map[uint32]*content),
		creationParams: make(map[host.FrameID]map[string]string),
	}
}

// AddFrame creates a frame with the given name and visibility, gives it one
// empty pane, and makes it active and focused if it is the first frame.
func (h *Host) AddFrame(name string, vis host.Visibility) host.FrameID {
	h.mu.Lock()
	defer h.mu.Unlock()

	f := h.addFrameLocked(name, vis)
	return f.id
}

func (h *Host) addFrameLocked(name string, vis host.Visibility) *frame {
	h.nextID++
	id := host.FrameID(h.nextID)
	h.nextID++
	winID := host.WindowID(h.nextID)

	h.nextStack++
	f := &frame{id: id, name: name, visibility: vis, window: winID, stack: h.nextStack}
	h.frames[id] = f
	h.windows[winID] = &window{id: winID, frame: id}

	if len(h.frames) == 1 {
		h.active = id
		h.focus = id
		h.selected = winID
	}
	return f
}

// AddContent registers a content unit and returns a reference to it.
func (h *Host) AddContent(name string) host.ContentRef {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	c := &content{id: h.nextID, name: name}
	h.contents[c.id] = c
	return host.ContentRef{ID: c.id, Name: name}
}

// RemoveFrame destroys a frame and its pane, simulating a frame dying
// outside the controller's control.
func (h *Host) RemoveFrame(id host.FrameID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.frames[id]
	if !ok {
		return
	}
	delete(h.windows, f.window)
	delete(h.frames, id)
}

// Visibility returns the frame's current visibility, for test assertions.
func (h *Host) Visibility(id host.FrameID) host.Visibility {
	h.mu.Lock()
	defer h.mu.Unlock()

	if f, ok := h.frames[id]; ok {
		return f.visibility
	}
	return host.Hidden
}

// Focus returns the current focus holder, for test assertions.
func (h *Host) Focus() host.FrameID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focus
}

// Selected returns the currently selected window, for test assertions.
func (h *Host) Selected() host.WindowID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.selected
}

// TopFrame returns the frame on top of the stacking order.
func (h *Host) TopFrame() host.FrameID {
	h.mu.Lock()
	defer h.mu.Unlock()

	var top *frame
	for _, f := range h.frames {
		if top == nil || f.stack > top.stack {
			top = f
		}
	}
	if top == nil {
		return 0
	}
	return top.id
}

// WindowContent returns the content reference shown by a window, or a zero
// reference when the pane is empty.
func (h *Host) WindowContent(id host.WindowID) host.ContentRef {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.windows[id]
	if !ok || w.content == 0 {
		return host.ContentRef{}
	}
	c := h.contents[w.content]
	return host.ContentRef{ID: c.id, Name: c.name}
}

// CreationParams returns the params CreateFrame was called with for a
// frame, or nil for frames made by AddFrame.
func (h *Host) CreationParams(id host.FrameID) map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.creationParams[id]
}

// FrameCount returns the number of live frames.
func (h *Host) FrameCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.frames)
}

func (h *Host) ListFrames() ([]*host.FrameInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	infos := make([]*host.FrameInfo, 0, len(h.frames))
	for _, f := range h.frames {
		infos = append(infos, &host.FrameInfo{ID: f.id, Name: f.name, Visibility: f.visibility})
	}
	return infos, nil
}

func (h *Host) FrameInfo(id host.FrameID) (*host.FrameInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.frames[id]
	if !ok {
		return nil, host.ErrGone
	}
	return &host.FrameInfo{ID: f.id, Name: f.name, Visibility: f.visibility}, nil
}

func (h *Host) IsLive(id host.FrameID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, ok := h.frames[id]
	return ok
}

func (h *Host) ActiveFrame() (host.FrameID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.active == 0 || h.frames[h.active] == nil {
		return 0, fmt.Errorf("no active frame")
	}
	return h.active, nil
}

func (h *Host) CreateFrame(name string, params map[string]string) (host.FrameID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	vis := host.Visible
	if params["visibility"] == "false" {
		vis = host.Hidden
	}
	f := h.addFrameLocked(name, vis)

	recorded := make(map[string]string, len(params))
	for k, v := range params {
		recorded[k] = v
	}
	h.creationParams[f.id] = recorded
	return f.id, nil
}

func (h *Host) SelectFrame(id host.FrameID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.frames[id]
	if !ok {
		return host.ErrGone
	}
	h.active = id
	h.selected = f.window
	return nil
}

func (h *Host) RaiseFrame(id host.FrameID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.frames[id]
	if !ok {
		return host.ErrGone
	}
	f.visibility = host.Visible
	h.nextStack++
	f.stack = h.nextStack
	return nil
}

func (h *Host) IconifyFrame(id host.FrameID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.frames[id]
	if !ok {
		return host.ErrGone
	}
	f.visibility = host.Iconified
	return nil
}

func (h *Host) HideFrame(id host.FrameID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.frames[id]
	if !ok {
		return host.ErrGone
	}
	f.visibility = host.Hidden
	return nil
}

func (h *Host) FocusHolder() (host.FrameID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.focus == 0 || h.frames[h.focus] == nil {
		return 0, fmt.Errorf("no focus holder")
	}
	return h.focus, nil
}

func (h *Host) SetFocusHolder(id host.FrameID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.frames[id]; !ok {
		return host.ErrGone
	}
	h.focus = id
	return nil
}

func (h *Host) SelectedWindow() (host.WindowID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.selected == 0 || h.windows[h.selected] == nil {
		return 0, fmt.Errorf("no selected window")
	}
	return h.selected, nil
}

func (h *Host) SelectWindow(id host.WindowID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.windows[id]
	if !ok {
		return host.ErrGone
	}
	h.selected = id
	h.active = w.frame
	return nil
}

func (h *Host) WindowFrame(id host.WindowID) (host.FrameID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.windows[id]
	if !ok {
		return 0, host.ErrGone
	}
	return w.frame, nil
}

func (h *Host) FindWindowShowing(ref host.ContentRef) (host.WindowID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := h.resolveContentLocked(ref)
	if c == nil {
		return 0, false
	}
	for _, w := range h.windows {
		if w.content == c.id {
			return w.id, true
		}
	}
	return 0, false
}

func (h *Host) ContentExists(ref host.ContentRef) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resolveContentLocked(ref) != nil
}

func (h *Host) ShowContent(frameID host.FrameID, ref host.ContentRef, hints map[string]string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.frames[frameID]
	if !ok {
		return host.ErrGone
	}
	c := h.resolveContentLocked(ref)
	if c == nil {
		return fmt.Errorf("no such content: %+v", ref)
	}
	h.windows[f.window].content = c.id
	return nil
}

func (h *Host) resolveContentLocked(ref host.ContentRef) *content {
	if ref.ID != 0 {
		return h.contents[ref.ID]
	}
	if ref.Name != "" {
		for _, c := range h.contents {
			if c.name == ref.Name {
				return c
			}
		}
	}
	return nil
}

func (h *Host) Flush() {}

func (h *Host) Close() error { return nil }
