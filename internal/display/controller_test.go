package display_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelwm/xflash/internal/config"
	"github.com/kestrelwm/xflash/internal/display"
	"github.com/kestrelwm/xflash/internal/host"
	"github.com/kestrelwm/xflash/internal/host/memory"
)

const holdFor = 200 * time.Millisecond

func newTestController(t *testing.T) (*display.Controller, *memory.Host, *config.Manager) {
	t.Helper()

	cfg, err := config.NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	h := memory.New()
	return display.NewController(h, cfg), h, cfg
}

func TestFlashFrame_RestoreInvariant(t *testing.T) {
	ctrl, h, _ := newTestController(t)

	focused := h.AddFrame("editor", host.Visible)
	target := h.AddFrame("scratch", host.Hidden)
	require.NoError(t, h.SetFocusHolder(focused))

	var sawVisible, sawOnTop bool
	err := ctrl.FlashFrame(display.FrameByID(target), display.Options{
		HoldFor: holdFor,
		Condition: func() bool {
			if h.Visibility(target) == host.Visible {
				sawVisible = true
			}
			if h.TopFrame() == target {
				sawOnTop = true
			}
			return false
		},
	})
	require.NoError(t, err)

	assert.True(t, sawVisible, "target must be visible during the hold")
	assert.True(t, sawOnTop, "target must be on top during the hold")
	assert.Equal(t, host.Hidden, h.Visibility(target), "visibility must be restored")
	assert.Equal(t, focused, h.Focus(), "focus holder must be restored")
}

func TestFlashFrame_InvisibleScenario(t *testing.T) {
	ctrl, h, _ := newTestController(t)

	h.AddFrame("editor", host.Visible)
	target := h.AddFrame("popup", host.Hidden)

	start := time.Now()
	err := ctrl.FlashFrame(display.FrameByID(target), display.Options{HoldFor: holdFor})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, host.Hidden, h.Visibility(target))
	assert.GreaterOrEqual(t, elapsed, holdFor)
	assert.Less(t, elapsed, holdFor+300*time.Millisecond)
}

func TestFlashFrame_IconifiedRestore(t *testing.T) {
	ctrl, h, _ := newTestController(t)

	h.AddFrame("editor", host.Visible)
	target := h.AddFrame("mail", host.Iconified)

	err := ctrl.FlashFrame(display.FrameByID(target), display.Options{HoldFor: holdFor})
	require.NoError(t, err)

	assert.Equal(t, host.Iconified, h.Visibility(target))
}

func TestFlashFrame_VisibleStaysVisible(t *testing.T) {
	ctrl, h, _ := newTestController(t)

	target := h.AddFrame("editor", host.Visible)

	err := ctrl.FlashFrame(display.FrameByID(target), display.Options{HoldFor: holdFor})
	require.NoError(t, err)

	assert.Equal(t, host.Visible, h.Visibility(target))
}

func TestFlashFrame_ConditionShortCircuits(t *testing.T) {
	ctrl, h, _ := newTestController(t)

	target := h.AddFrame("popup", host.Hidden)

	start := time.Now()
	err := ctrl.FlashFrame(display.FrameByID(target), display.Options{
		HoldFor:   2 * time.Second,
		Condition: func() bool { return true },
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Less(t, elapsed, 300*time.Millisecond)
	assert.Equal(t, host.Hidden, h.Visibility(target), "restore runs on the condition path too")
}

func TestFlashFrame_CreationOnMiss(t *testing.T) {
	ctrl, h, cfg := newTestController(t)

	h.AddFrame("editor", host.Visible)
	require.NoError(t, cfg.SetCreationParameter("visibility", "false"))

	var duringVisible bool
	err := ctrl.FlashFrame(display.FrameByName("Aux"), display.Options{
		HoldFor: holdFor,
		Condition: func() bool {
			info, found, err := ctrl.FindFrameByName("Aux")
			if err == nil && found {
				duringVisible = info.Visibility == host.Visible
			}
			return false
		},
	})
	require.NoError(t, err)

	info, found, err := ctrl.FindFrameByName("Aux")
	require.NoError(t, err)
	require.True(t, found, "a frame named Aux must have been created")
	assert.True(t, duringVisible, "created frame must be forced visible during the hold")
	assert.Equal(t, host.Hidden, info.Visibility, "restore matches the created-invisible initial state")
	assert.Equal(t, map[string]string{"visibility": "false"}, h.CreationParams(info.ID))

	// A second call finds the frame instead of creating another.
	count := h.FrameCount()
	require.NoError(t, ctrl.FlashFrame(display.FrameByName("Aux"), display.Options{HoldFor: holdFor}))
	assert.Equal(t, count, h.FrameCount())
}

func TestFlashFrame_InvalidContentFailsFast(t *testing.T) {
	ctrl, h, _ := newTestController(t)

	focused := h.AddFrame("editor", host.Visible)
	target := h.AddFrame("popup", host.Hidden)
	require.NoError(t, h.SetFocusHolder(focused))

	err := ctrl.FlashFrame(display.FrameByID(target), display.Options{
		HoldFor: holdFor,
		Content: host.ContentRef{Name: "no-such-content"},
	})
	require.ErrorIs(t, err, display.ErrInvalidContent)

	assert.Equal(t, host.Hidden, h.Visibility(target), "a failed call leaves visibility unchanged")
	assert.Equal(t, focused, h.Focus())
}

func TestFlashFrame_ContentBoundDuringHold(t *testing.T) {
	ctrl, h, _ := newTestController(t)

	target := h.AddFrame("popup", host.Hidden)
	logs := h.AddContent("logs")

	var bound bool
	err := ctrl.FlashFrame(display.FrameByID(target), display.Options{
		HoldFor: holdFor,
		Content: logs,
		Condition: func() bool {
			if win, ok := h.FindWindowShowing(logs); ok {
				if frame, err := h.WindowFrame(win); err == nil && frame == target {
					bound = true
				}
			}
			return false
		},
	})
	require.NoError(t, err)
	assert.True(t, bound, "content must be bound into the target frame during the hold")
}

func TestFlashFrame_NotLive(t *testing.T) {
	ctrl, h, _ := newTestController(t)
	h.AddFrame("editor", host.Visible)

	err := ctrl.FlashFrame(display.FrameByID(9999), display.Options{HoldFor: holdFor})
	assert.ErrorIs(t, err, display.ErrNotLive)
}

func TestFlashFrame_InvalidHoldDelay(t *testing.T) {
	ctrl, h, _ := newTestController(t)
	target := h.AddFrame("popup", host.Hidden)

	err := ctrl.FlashFrame(display.FrameByID(target), display.Options{HoldFor: -time.Second})
	assert.ErrorIs(t, err, display.ErrInvalidArgument)
	assert.Equal(t, host.Hidden, h.Visibility(target))
}

func TestFlashFrame_TargetDiesMidHold(t *testing.T) {
	ctrl, h, _ := newTestController(t)

	focused := h.AddFrame("editor", host.Visible)
	target := h.AddFrame("popup", host.Hidden)
	require.NoError(t, h.SetFocusHolder(focused))

	err := ctrl.FlashFrame(display.FrameByID(target), display.Options{
		HoldFor: holdFor,
		Condition: func() bool {
			h.RemoveFrame(target)
			return false
		},
	})
	require.NoError(t, err, "restore of a dead frame must be a no-op, not a failure")
	assert.Equal(t, focused, h.Focus(), "focus is still restored")
}

func TestFlashFrame_ActiveFrameDefault(t *testing.T) {
	ctrl, h, _ := newTestController(t)

	active := h.AddFrame("editor", host.Visible)
	require.NoError(t, h.HideFrame(active))

	var sawVisible bool
	err := ctrl.FlashFrame(display.ActiveFrame(), display.Options{
		HoldFor: holdFor,
		Condition: func() bool {
			sawVisible = sawVisible || h.Visibility(active) == host.Visible
			return false
		},
	})
	require.NoError(t, err)
	assert.True(t, sawVisible)
	assert.Equal(t, host.Hidden, h.Visibility(active))
}

func TestFlashFrame_Events(t *testing.T) {
	ctrl, h, _ := newTestController(t)
	target := h.AddFrame("popup", host.Hidden)

	var events []display.Event
	ctrl.SetNotifier(func(ev display.Event) { events = append(events, ev) })

	require.NoError(t, ctrl.FlashFrame(display.FrameByID(target), display.Options{HoldFor: holdFor}))

	require.Len(t, events, 2)
	assert.Equal(t, display.EventFlashStarted, events[0].Kind)
	assert.Equal(t, target, events[0].Frame)
	assert.Equal(t, display.EventFlashRestored, events[1].Kind)
}

func TestFlashWindow_RestoresSelection(t *testing.T) {
	ctrl, h, _ := newTestController(t)

	editor := h.AddFrame("editor", host.Visible)
	other := h.AddFrame("logs-frame", host.Hidden)
	logs := h.AddContent("logs")
	require.NoError(t, h.ShowContent(other, logs, nil))

	editorWin, err := h.SelectedWindow()
	require.NoError(t, err)
	require.NoError(t, h.SetFocusHolder(editor))

	require.NoError(t, ctrl.FlashWindow(display.WindowShowing(logs), display.Options{HoldFor: holdFor}))

	sel, err := h.SelectedWindow()
	require.NoError(t, err)
	assert.Equal(t, editorWin, sel, "previously selected window must be re-selected")
	assert.Equal(t, editor, h.Focus(), "focus returns to the selected window's frame")
	assert.Equal(t, host.Hidden, h.Visibility(other), "the flashed frame's visibility is restored")
}

func TestFlashWindow_FallbackShowsContentInSelected(t *testing.T) {
	ctrl, h, _ := newTestController(t)

	editor := h.AddFrame("editor", host.Visible)
	notes := h.AddContent("notes")

	editorWin, err := h.SelectedWindow()
	require.NoError(t, err)

	var shownInSelected bool
	err = ctrl.FlashWindow(display.WindowShowing(notes), display.Options{
		HoldFor: holdFor,
		Condition: func() bool {
			shownInSelected = h.WindowContent(editorWin) == notes
			return false
		},
	})
	require.NoError(t, err)

	assert.True(t, shownInSelected, "with no window showing the content, it is displayed in the selected window")
	assert.Equal(t, editor, h.Focus())
}

func TestFlashWindow_MissingContentAndWindow(t *testing.T) {
	ctrl, h, _ := newTestController(t)
	h.AddFrame("editor", host.Visible)

	err := ctrl.FlashWindow(display.WindowShowing(host.ContentRef{Name: "ghost"}), display.Options{HoldFor: holdFor})
	assert.ErrorIs(t, err, display.ErrInvalidContent, "unresolvable content falls through to content validation")
}

func TestFlashFrame_DefaultDelayFromConfig(t *testing.T) {
	ctrl, h, cfg := newTestController(t)
	require.NoError(t, cfg.SetHoldDelaySeconds(0.2))

	target := h.AddFrame("popup", host.Hidden)

	start := time.Now()
	require.NoError(t, ctrl.FlashFrame(display.FrameByID(target), display.Options{}))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
	assert.Less(t, elapsed, 600*time.Millisecond)
}
