package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kestrelwm/xflash/internal/api"
	"github.com/kestrelwm/xflash/internal/display"
	"github.com/kestrelwm/xflash/internal/host"
	"github.com/kestrelwm/xflash/internal/host/memory"
	x11host "github.com/kestrelwm/xflash/internal/host/x11"
	"github.com/kestrelwm/xflash/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the xflash control daemon",
	Long: `Start the xflash HTTP control daemon.

The daemon exposes a REST API for triggering flashes and managing
configuration, plus a websocket stream of flash lifecycle events.`,
	Example: `  # Start the daemon on the configured port
  xflash serve

  # Start on a custom port
  xflash serve --port 9290

  # Run against an in-memory host instead of X11 (for development)
  xflash serve --headless`,
	RunE: runServe,
}

var serveHeadless bool

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "server port (default: configured server_port)")
	serveCmd.Flags().BoolVar(&serveHeadless, "headless", false, "use the in-memory host instead of X11")

	viper.BindPFlag("server_port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}

	if viper.IsSet("server_port") && viper.GetInt("server_port") > 0 {
		if err := configMgr.SetPort(viper.GetInt("server_port")); err != nil {
			return err
		}
	}

	var h host.Host
	if serveHeadless {
		h = memory.New()
		logger.WithComponent("serve").Info().Msg("Running headless with in-memory host")
	} else {
		h, err = x11host.New()
		if err != nil {
			return fmt.Errorf("failed to connect to X11: %w", err)
		}
	}
	defer h.Close()

	ctrl := display.NewController(h, configMgr)
	server := api.NewServer(ctrl, configMgr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(configMgr.GetPort())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		logger.WithComponent("serve").Info().Str("signal", sig.String()).Msg("Shutting down")
		return nil
	}
}
