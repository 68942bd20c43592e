package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage xflash configuration",
	Long:  `View and manage xflash configuration settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Example: `  # Show configuration as YAML (default)
  xflash config show

  # Show configuration as JSON
  xflash config show --format json`,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Creation parameters use dotted keys.

Keys: hold_delay_seconds, log_level, server_port, creation.<param>`,
	Example: `  # Hold flashed frames for two seconds
  xflash config set hold_delay_seconds 2

  # Newly created frames start invisible
  xflash config set creation.visibility false`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset KEY",
	Short: "Remove a creation parameter",
	Example: `  # Stop forcing a size on created frames
  xflash config unset creation.width`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigUnset,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

var configFormat string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configPathCmd)

	configShowCmd.Flags().StringVarP(&configFormat, "format", "f", "yaml", "output format (yaml or json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}

	cfg := configMgr.Get()
	switch configFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cfg)
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (use 'yaml' or 'json')", configFormat)
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	switch {
	case key == "hold_delay_seconds":
		seconds, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid hold delay %q: %w", value, err)
		}
		if err := configMgr.SetHoldDelaySeconds(seconds); err != nil {
			return err
		}
	case key == "log_level":
		if err := configMgr.SetLogLevel(value); err != nil {
			return err
		}
	case key == "server_port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", value, err)
		}
		if err := configMgr.SetPort(port); err != nil {
			return err
		}
	case strings.HasPrefix(key, "creation."):
		param := strings.TrimPrefix(key, "creation.")
		if err := configMgr.SetCreationParameter(param, value); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	if !strings.HasPrefix(key, "creation.") {
		return fmt.Errorf("only creation.<param> keys can be unset, got %s", key)
	}
	if err := configMgr.RemoveCreationParameter(strings.TrimPrefix(key, "creation.")); err != nil {
		return err
	}

	fmt.Printf("Removed %s\n", key)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println(configMgr.GetConfigPath())
	return nil
}
