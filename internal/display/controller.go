// Package display orchestrates transient visibility: it forces a frame or
// window to the front, holds it there until a condition or timeout, and
// restores the prior visibility and focus afterwards.
package display

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kestrelwm/xflash/internal/config"
	"github.com/kestrelwm/xflash/internal/hold"
	"github.com/kestrelwm/xflash/internal/host"
	"github.com/kestrelwm/xflash/internal/logger"
)

var (
	// ErrInvalidArgument reports a malformed target, content reference, or
	// hold duration. Raised before any surface mutation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotLive reports a target handle whose surface has been destroyed.
	ErrNotLive = errors.New("surface is not live")

	// ErrInvalidContent reports content that resolves to no existing unit.
	ErrInvalidContent = errors.New("content does not exist")
)

// FrameTarget names the frame to flash. The zero value means the currently
// active frame; a Name with no live match causes the frame to be created
// with the configured creation parameters.
type FrameTarget struct {
	ID   host.FrameID
	Name string
}

// FrameByID targets a frame by handle.
func FrameByID(id host.FrameID) FrameTarget { return FrameTarget{ID: id} }

// FrameByName targets a frame by name, creating it on a lookup miss.
func FrameByName(name string) FrameTarget { return FrameTarget{Name: name} }

// ActiveFrame targets whichever frame is currently active.
func ActiveFrame() FrameTarget { return FrameTarget{} }

// WindowTarget names the window to flash. The zero value means the
// currently selected window. When Content is set instead of Window, the
// window currently showing that content is used, falling back to the
// selected window (and, if no explicit content was requested, the content
// itself becomes the content to display).
type WindowTarget struct {
	Window  host.WindowID
	Content host.ContentRef
}

// WindowByID targets a window by handle.
func WindowByID(id host.WindowID) WindowTarget { return WindowTarget{Window: id} }

// WindowShowing targets the window currently showing the given content.
func WindowShowing(ref host.ContentRef) WindowTarget { return WindowTarget{Content: ref} }

// SelectedWindow targets whichever window is currently selected.
func SelectedWindow() WindowTarget { return WindowTarget{} }

// Options tunes a single flash.
type Options struct {
	// Content, when set, is bound into the target frame's display area
	// while the flash is held.
	Content host.ContentRef

	// Condition, when set, terminates the hold early the first time it
	// returns true. It is evaluated once per poll quantum on the calling
	// goroutine and must not mutate surface state from elsewhere.
	Condition func() bool

	// HoldFor overrides the configured hold delay when positive.
	HoldFor time.Duration
}

// priorState is the snapshot taken before a flash mutates anything. One
// snapshot exists per in-flight call, written at capture and read exactly
// once at restore.
type priorState struct {
	visibility host.Visibility
	focus      host.FrameID
	window     host.WindowID
	hasWindow  bool
}

// Controller runs the flash state machine against a host environment.
//
// Resolution and validation failures return before any surface mutation,
// so a failed call leaves the environment unchanged. Restoration runs on
// every exit path once the display phase has begun and never reports
// errors of its own.
type Controller struct {
	host   host.Host
	reg    *Registry
	cfg    *config.Manager
	log    *zerolog.Logger
	notify func(Event)
}

// NewController returns a controller over the given host and configuration.
func NewController(h host.Host, cfg *config.Manager) *Controller {
	return &Controller{
		host: h,
		reg:  NewRegistry(h),
		cfg:  cfg,
		log:  logger.WithComponent("display"),
	}
}

// SetNotifier installs an observer for flash lifecycle events. Must be set
// before the controller is used; events are delivered synchronously on the
// flashing goroutine.
func (c *Controller) SetNotifier(fn func(Event)) {
	c.notify = fn
}

// FindFrameByName exposes registry lookup on the controller surface.
func (c *Controller) FindFrameByName(name string) (*host.FrameInfo, bool, error) {
	return c.reg.FindByName(name)
}

// ListFrames enumerates the host's live frames.
func (c *Controller) ListFrames() ([]*host.FrameInfo, error) {
	return c.host.ListFrames()
}

// FlashFrame forces the target frame to the front and visible, holds it
// there until opts.Condition fires or the hold delay elapses, then restores
// the frame's prior visibility and the focus holder that was active at call
// time. Stacking depth is not restored.
func (c *Controller) FlashFrame(target FrameTarget, opts Options) error {
	delay, err := c.effectiveDelay(opts)
	if err != nil {
		return err
	}

	frameID, err := c.resolveFrame(target)
	if err != nil {
		c.emit(Event{Kind: EventFlashFailed, Name: target.Name, Error: err.Error()})
		return err
	}

	err = c.flash(frameID, opts, delay, false)
	if err != nil {
		c.emit(Event{Kind: EventFlashFailed, Frame: frameID, Error: err.Error()})
	}
	return err
}

// FlashWindow is the window-oriented entry point. The target resolves to a
// window; the flash is delegated to the frame owning it. In addition to the
// frame restore, the previously selected window is re-selected and focus is
// re-applied to that window's owning frame (a window has no focus state
// apart from its frame's).
func (c *Controller) FlashWindow(target WindowTarget, opts Options) error {
	delay, err := c.effectiveDelay(opts)
	if err != nil {
		return err
	}

	winID, opts, err := c.resolveWindow(target, opts)
	if err != nil {
		c.emit(Event{Kind: EventFlashFailed, Error: err.Error()})
		return err
	}

	frameID, err := c.host.WindowFrame(winID)
	if err != nil {
		err = fmt.Errorf("%w: window %d", ErrNotLive, winID)
		c.emit(Event{Kind: EventFlashFailed, Error: err.Error()})
		return err
	}

	err = c.flash(frameID, opts, delay, true)
	if err != nil {
		c.emit(Event{Kind: EventFlashFailed, Frame: frameID, Error: err.Error()})
	}
	return err
}

// effectiveDelay validates the hold duration up front so a bad delay fails
// before any mutation.
func (c *Controller) effectiveDelay(opts Options) (time.Duration, error) {
	delay := opts.HoldFor
	if delay == 0 {
		delay = c.cfg.HoldDelay()
	}
	if delay <= 0 {
		return 0, fmt.Errorf("%w: hold delay must be positive, got %s", ErrInvalidArgument, delay)
	}
	return delay, nil
}

func (c *Controller) resolveFrame(target FrameTarget) (host.FrameID, error) {
	switch {
	case target.ID != 0:
		if !c.host.IsLive(target.ID) {
			return 0, fmt.Errorf("%w: frame %d", ErrNotLive, target.ID)
		}
		return target.ID, nil

	case target.Name != "":
		info, found, err := c.reg.FindByName(target.Name)
		if err != nil {
			return 0, err
		}
		if found {
			return info.ID, nil
		}
		id, err := c.host.CreateFrame(target.Name, c.cfg.CreationParameters())
		if err != nil {
			return 0, fmt.Errorf("failed to create frame %q: %w", target.Name, err)
		}
		c.log.Debug().Str("name", target.Name).Uint32("frame", uint32(id)).Msg("Created frame for flash")
		return id, nil

	default:
		id, err := c.host.ActiveFrame()
		if err != nil {
			return 0, fmt.Errorf("no active frame: %w", err)
		}
		return id, nil
	}
}

func (c *Controller) resolveWindow(target WindowTarget, opts Options) (host.WindowID, Options, error) {
	if target.Window != 0 {
		if _, err := c.host.WindowFrame(target.Window); err != nil {
			return 0, opts, fmt.Errorf("%w: window %d", ErrNotLive, target.Window)
		}
		return target.Window, opts, nil
	}

	if !target.Content.IsZero() {
		if win, ok := c.host.FindWindowShowing(target.Content); ok {
			return win, opts, nil
		}
		// No window shows the content; fall back to the selected window
		// and, absent an explicit content request, display the content
		// there during the flash.
		if opts.Content.IsZero() {
			opts.Content = target.Content
		}
	}

	win, err := c.host.SelectedWindow()
	if err != nil {
		return 0, opts, fmt.Errorf("no selected window: %w", err)
	}
	return win, opts, nil
}

// flash runs Displaying, Holding, and Restoring for an already-resolved
// frame. restoreWindow selects the window-oriented restore variant.
func (c *Controller) flash(frameID host.FrameID, opts Options, delay time.Duration, restoreWindow bool) error {
	// Content is validated before anything is mutated. The flush lets the
	// caller observe the environment exactly as it was at the failure.
	if !opts.Content.IsZero() && !c.host.ContentExists(opts.Content) {
		c.host.Flush()
		return fmt.Errorf("%w: %s", ErrInvalidContent, describeContent(opts.Content))
	}

	info, err := c.host.FrameInfo(frameID)
	if err != nil {
		return fmt.Errorf("%w: frame %d", ErrNotLive, frameID)
	}

	prior := priorState{visibility: info.Visibility}
	if focus, err := c.host.FocusHolder(); err == nil {
		prior.focus = focus
	}
	if restoreWindow {
		if win, err := c.host.SelectedWindow(); err == nil {
			prior.window = win
			prior.hasWindow = true
		}
	}

	// From here on the restore must run on every exit path, exactly once.
	defer c.restore(frameID, prior)

	if err := c.host.SelectFrame(frameID); err != nil {
		return fmt.Errorf("failed to select frame %d: %w", frameID, err)
	}
	if err := c.host.RaiseFrame(frameID); err != nil {
		return fmt.Errorf("failed to raise frame %d: %w", frameID, err)
	}
	if !opts.Content.IsZero() {
		if err := c.host.ShowContent(frameID, opts.Content, c.cfg.CreationParameters()); err != nil {
			return fmt.Errorf("failed to show content in frame %d: %w", frameID, err)
		}
	}

	// The flush must complete before timing starts, otherwise the hold
	// would be counted against a change nobody can see yet.
	c.host.Flush()

	c.emit(Event{Kind: EventFlashStarted, Frame: frameID, Name: info.Name})
	c.log.Debug().
		Uint32("frame", uint32(frameID)).
		Str("prior_visibility", prior.visibility.String()).
		Dur("delay", delay).
		Msg("Holding frame visible")

	if err := hold.Until(opts.Condition, delay); err != nil {
		// Unreachable: the delay was validated on entry.
		return err
	}
	return nil
}

// restore puts back the captured prior state. Failures here are logged and
// swallowed: cleanup must not throw over the primary result, and a frame
// destroyed during the hold simply has nothing left to restore.
func (c *Controller) restore(frameID host.FrameID, prior priorState) {
	if c.host.IsLive(frameID) {
		var err error
		switch prior.visibility {
		case host.Iconified:
			err = c.host.IconifyFrame(frameID)
		case host.Hidden:
			err = c.host.HideFrame(frameID)
		}
		if err != nil {
			c.log.Debug().Err(err).Uint32("frame", uint32(frameID)).Msg("Visibility restore failed")
		}
	}

	if prior.focus != 0 && c.host.IsLive(prior.focus) {
		if err := c.host.SetFocusHolder(prior.focus); err != nil {
			c.log.Debug().Err(err).Uint32("frame", uint32(prior.focus)).Msg("Focus restore failed")
		}
	}

	if prior.hasWindow {
		if err := c.host.SelectWindow(prior.window); err != nil {
			c.log.Debug().Err(err).Uint32("window", uint32(prior.window)).Msg("Window restore failed")
		} else if frame, err := c.host.WindowFrame(prior.window); err == nil {
			if err := c.host.SetFocusHolder(frame); err != nil {
				c.log.Debug().Err(err).Uint32("frame", uint32(frame)).Msg("Window focus restore failed")
			}
		}
	}

	c.host.Flush()
	c.emit(Event{Kind: EventFlashRestored, Frame: frameID})
}

func (c *Controller) emit(ev Event) {
	if c.notify != nil {
		c.notify(ev)
	}
}

func describeContent(ref host.ContentRef) string {
	if ref.Name != "" {
		return fmt.Sprintf("content %q", ref.Name)
	}
	return fmt.Sprintf("content id %d", ref.ID)
}
