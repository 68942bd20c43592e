// Package x11 implements host.Host over an X display.
//
// Mapping: a frame is an X top-level client window. X has no native notion
// of panes inside a client, so each frame carries exactly one window whose
// ID coincides with the frame's, and the selected window is the active
// toplevel. Content units are themselves toplevels referenced by ID or by
// name; binding content into a frame means forcing that toplevel visible.
package x11

import (
	"fmt"
	"strconv"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/rs/zerolog"

	"github.com/kestrelwm/xflash/internal/host"
	"github.com/kestrelwm/xflash/internal/logger"
)

// Host drives an X server through xgb/xgbutil.
type Host struct {
	xu   *xgbutil.XUtil
	root xproto.Window
	log  *zerolog.Logger
}

var _ host.Host = (*Host)(nil)

// New connects to the X server named by $DISPLAY.
func New() (*Host, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}
	return &Host{
		xu:   xu,
		root: xu.RootWin(),
		log:  logger.WithComponent("x11"),
	}, nil
}

// ListFrames enumerates managed toplevels via EWMH _NET_CLIENT_LIST,
// falling back to a QueryTree walk when the window manager does not
// maintain the client list.
func (h *Host) ListFrames() ([]*host.FrameInfo, error) {
	clients, err := ewmh.ClientListGet(h.xu)
	if err != nil || len(clients) == 0 {
		h.log.Debug().Err(err).Msg("_NET_CLIENT_LIST unavailable, walking the window tree")
		clients, err = h.queryTreeClients()
		if err != nil {
			return nil, err
		}
	}

	frames := make([]*host.FrameInfo, 0, len(clients))
	for _, win := range clients {
		frames = append(frames, &host.FrameInfo{
			ID:         host.FrameID(win),
			Name:       h.frameName(win),
			Visibility: h.frameVisibility(win),
		})
	}
	return frames, nil
}

func (h *Host) queryTreeClients() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(h.xu.Conn(), h.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query window tree: %w", err)
	}

	clients := make([]xproto.Window, 0, len(tree.Children))
	for _, child := range tree.Children {
		// Unnamed windows are decoration or override-redirect noise.
		if h.frameName(child) == "" {
			continue
		}
		clients = append(clients, child)
	}
	return clients, nil
}

func (h *Host) frameName(win xproto.Window) string {
	if name, err := ewmh.WmNameGet(h.xu, win); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(h.xu, win); err == nil {
		return name
	}
	return ""
}

func (h *Host) frameVisibility(win xproto.Window) host.Visibility {
	attrs, err := xproto.GetWindowAttributes(h.xu.Conn(), win).Reply()
	if err == nil && attrs.MapState == xproto.MapStateViewable {
		states, _ := ewmh.WmStateGet(h.xu, win)
		for _, s := range states {
			if s == "_NET_WM_STATE_HIDDEN" {
				return host.Iconified
			}
		}
		return host.Visible
	}

	// Unmapped: ICCCM WM_STATE distinguishes iconified from withdrawn.
	if state, err := icccm.WmStateGet(h.xu, win); err == nil && state.State == icccm.StateIconic {
		return host.Iconified
	}
	return host.Hidden
}

func (h *Host) FrameInfo(id host.FrameID) (*host.FrameInfo, error) {
	win := xproto.Window(id)
	if !h.IsLive(id) {
		return nil, host.ErrGone
	}
	return &host.FrameInfo{
		ID:         id,
		Name:       h.frameName(win),
		Visibility: h.frameVisibility(win),
	}, nil
}

func (h *Host) IsLive(id host.FrameID) bool {
	_, err := xproto.GetWindowAttributes(h.xu.Conn(), xproto.Window(id)).Reply()
	return err == nil
}

func (h *Host) ActiveFrame() (host.FrameID, error) {
	win, err := ewmh.ActiveWindowGet(h.xu)
	if err != nil {
		return 0, fmt.Errorf("failed to get active window: %w", err)
	}
	if win == 0 {
		return 0, fmt.Errorf("no active window")
	}
	return host.FrameID(win), nil
}

func (h *Host) CreateFrame(name string, params map[string]string) (host.FrameID, error) {
	win, err := xwindow.Generate(h.xu)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate window id: %w", err)
	}

	x := paramInt(params, "x", 0)
	y := paramInt(params, "y", 0)
	width := paramInt(params, "width", 640)
	height := paramInt(params, "height", 480)

	if err := win.CreateChecked(h.root, x, y, width, height,
		xproto.CwBackPixel, 0xffffff); err != nil {
		return 0, fmt.Errorf("failed to create window: %w", err)
	}

	if err := ewmh.WmNameSet(h.xu, win.Id, name); err != nil {
		h.log.Debug().Err(err).Msg("Failed to set _NET_WM_NAME on new frame")
	}
	if err := icccm.WmNameSet(h.xu, win.Id, name); err != nil {
		h.log.Debug().Err(err).Msg("Failed to set WM_NAME on new frame")
	}

	if params["visibility"] != "false" {
		win.Map()
	}

	h.log.Debug().
		Str("name", name).
		Uint32("frame", uint32(win.Id)).
		Msg("Created frame")
	return host.FrameID(win.Id), nil
}

func paramInt(params map[string]string, key string, fallback int) int {
	if raw, ok := params[key]; ok {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

// SelectFrame makes the frame the active toplevel. For X the active
// selection and the focus holder are the same EWMH property.
func (h *Host) SelectFrame(id host.FrameID) error {
	return h.activate(xproto.Window(id))
}

func (h *Host) RaiseFrame(id host.FrameID) error {
	win := xwindow.New(h.xu, xproto.Window(id))
	// Mapping deiconifies per ICCCM; restacking puts the frame on top.
	win.Map()
	win.Stack(xproto.StackModeAbove)
	return nil
}

func (h *Host) IconifyFrame(id host.FrameID) error {
	err := ewmh.ClientEvent(h.xu, xproto.Window(id), "WM_CHANGE_STATE", icccm.StateIconic)
	if err != nil {
		return fmt.Errorf("failed to iconify window %d: %w", id, err)
	}
	return nil
}

func (h *Host) HideFrame(id host.FrameID) error {
	xwindow.New(h.xu, xproto.Window(id)).Unmap()
	return nil
}

func (h *Host) FocusHolder() (host.FrameID, error) {
	return h.ActiveFrame()
}

func (h *Host) SetFocusHolder(id host.FrameID) error {
	return h.activate(xproto.Window(id))
}

func (h *Host) activate(win xproto.Window) error {
	if err := ewmh.ActiveWindowReq(h.xu, win); err == nil {
		return nil
	}
	// No EWMH window manager; fall back to raw input focus.
	return xproto.SetInputFocusChecked(h.xu.Conn(),
		xproto.InputFocusPointerRoot, win, xproto.TimeCurrentTime).Check()
}

func (h *Host) SelectedWindow() (host.WindowID, error) {
	frame, err := h.ActiveFrame()
	if err != nil {
		return 0, err
	}
	return host.WindowID(frame), nil
}

func (h *Host) SelectWindow(id host.WindowID) error {
	return h.activate(xproto.Window(id))
}

func (h *Host) WindowFrame(id host.WindowID) (host.FrameID, error) {
	if !h.IsLive(host.FrameID(id)) {
		return 0, host.ErrGone
	}
	return host.FrameID(id), nil
}

func (h *Host) FindWindowShowing(ref host.ContentRef) (host.WindowID, bool) {
	win, ok := h.resolveContent(ref)
	if !ok {
		return 0, false
	}
	return host.WindowID(win), true
}

func (h *Host) ContentExists(ref host.ContentRef) bool {
	_, ok := h.resolveContent(ref)
	return ok
}

func (h *Host) resolveContent(ref host.ContentRef) (xproto.Window, bool) {
	if ref.ID != 0 {
		win := xproto.Window(ref.ID)
		if h.IsLive(host.FrameID(win)) {
			return win, true
		}
		return 0, false
	}
	if ref.Name == "" {
		return 0, false
	}
	frames, err := h.ListFrames()
	if err != nil {
		return 0, false
	}
	for _, f := range frames {
		if f.Name == ref.Name {
			return xproto.Window(f.ID), true
		}
	}
	return 0, false
}

// ShowContent forces the content's toplevel visible above the target
// frame. When the content is the frame itself this is a no-op; the raise
// in the display phase already covers it.
func (h *Host) ShowContent(frame host.FrameID, ref host.ContentRef, hints map[string]string) error {
	win, ok := h.resolveContent(ref)
	if !ok {
		return fmt.Errorf("no window for content %+v", ref)
	}
	if host.FrameID(win) == frame {
		return nil
	}
	w := xwindow.New(h.xu, win)
	w.Map()
	w.Stack(xproto.StackModeAbove)
	return nil
}

func (h *Host) Flush() {
	h.xu.Sync()
}

func (h *Host) Close() error {
	h.xu.Conn().Close()
	return nil
}
