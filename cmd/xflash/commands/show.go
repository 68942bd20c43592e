package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrelwm/xflash/internal/display"
	"github.com/kestrelwm/xflash/internal/host"
	x11host "github.com/kestrelwm/xflash/internal/host/x11"
)

var showCmd = &cobra.Command{
	Use:   "show [NAME]",
	Short: "Flash a frame or window to the front",
	Long: `Flash a frame to the front and visible, hold it there for the configured
delay (or --duration), then restore its previous visibility and the input
focus that was active before the call.

With a NAME argument the frame is looked up by name; if no live frame
matches, one is created using the configured creation parameters. Without
arguments the currently active frame is flashed.`,
	Example: `  # Flash the currently active frame for the configured delay
  xflash show

  # Flash the frame named "Scratch", creating it if necessary
  xflash show Scratch

  # Flash a frame by X window id for two seconds
  xflash show --frame-id 0x1c00004 --duration 2

  # Window-oriented: flash whichever window shows "logs", or show it
  # in the selected window if nothing does
  xflash show --window logs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

var (
	showFrameID  uint32
	showWindow   bool
	showContent  string
	showDuration float64
)

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().Uint32Var(&showFrameID, "frame-id", 0, "target frame by window id instead of name")
	showCmd.Flags().BoolVarP(&showWindow, "window", "w", false, "treat NAME as content and use the window-oriented entry point")
	showCmd.Flags().StringVarP(&showContent, "content", "c", "", "content (window name) to display while flashed")
	showCmd.Flags().Float64VarP(&showDuration, "duration", "d", 0, "hold duration in seconds (default: configured hold delay)")
}

func runShow(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}

	h, err := x11host.New()
	if err != nil {
		return fmt.Errorf("failed to connect to X11: %w", err)
	}
	defer h.Close()

	ctrl := display.NewController(h, configMgr)

	opts := display.Options{}
	if showContent != "" {
		opts.Content = host.ContentRef{Name: showContent}
	}
	if showDuration > 0 {
		opts.HoldFor = time.Duration(showDuration * float64(time.Second))
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	if showWindow {
		target := display.SelectedWindow()
		if name != "" {
			target = display.WindowShowing(host.ContentRef{Name: name})
		}
		if err := ctrl.FlashWindow(target, opts); err != nil {
			return err
		}
	} else {
		target := display.ActiveFrame()
		switch {
		case showFrameID != 0:
			target = display.FrameByID(host.FrameID(showFrameID))
		case name != "":
			target = display.FrameByName(name)
		}
		if err := ctrl.FlashFrame(target, opts); err != nil {
			return err
		}
	}

	fmt.Println("Restored previous visibility and focus")
	return nil
}
