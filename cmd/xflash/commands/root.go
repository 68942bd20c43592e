package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kestrelwm/xflash/internal/config"
	"github.com/kestrelwm/xflash/internal/logger"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "xflash",
		Short: "xflash - flash a window to the front, then put everything back",
		Long: `xflash forces an X11 frame or window to the front and visible, holds it
there until a timeout elapses, and then restores the previous visibility
state and input focus.

Features:
  • Flash existing frames by name or window id
  • Create missing frames on demand with configurable parameters
  • Hold delay and creation parameters configurable at runtime
  • Control daemon with REST API and websocket event stream`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/xflash/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("pretty", false, "human-readable log output")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("pretty", rootCmd.PersistentFlags().Lookup("pretty"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// loadConfig builds the config manager and applies flag overrides to the
// logger before any real work happens.
func loadConfig() (*config.Manager, error) {
	configMgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := configMgr.GetLogLevel()
	if viper.IsSet("log_level") && viper.GetString("log_level") != "" {
		level = viper.GetString("log_level")
	}
	logger.Init(level, viper.GetBool("pretty"))

	return configMgr, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
