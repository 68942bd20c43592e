package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kestrelwm/xflash/internal/host"
	x11host "github.com/kestrelwm/xflash/internal/host/x11"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List live frames",
	Long: `List the frames the window manager currently knows about, with their
names and visibility state.`,
	Example: `  # List frames in table format (default)
  xflash list

  # List frames in JSON format
  xflash list --format json`,
	RunE: runList,
}

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table or json)")
}

func runList(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	h, err := x11host.New()
	if err != nil {
		return fmt.Errorf("failed to connect to X11: %w", err)
	}
	defer h.Close()

	frames, err := h.ListFrames()
	if err != nil {
		return fmt.Errorf("failed to list frames: %w", err)
	}

	switch listFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(frames)
	case "table":
		return printFramesTable(frames)
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", listFormat)
	}
}

func printFramesTable(frames []*host.FrameInfo) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tNAME\tVISIBILITY")
	fmt.Fprintln(w, "--\t----\t----------")

	for _, f := range frames {
		fmt.Fprintf(w, "0x%x\t%s\t%s\n", uint32(f.ID), f.Name, f.Visibility)
	}

	return nil
}
