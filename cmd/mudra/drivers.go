package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/driver"
)

var driversDir string

func newDriversCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drivers",
		Short: "List the external drivers available to the exec transport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir := cfg.Transport.DriverDir
			if cmd.Flags().Changed("dir") {
				dir = driversDir
			}
			return listDrivers(cmd.OutOrStdout(), dir)
		},
	}

	cmd.Flags().StringVar(&driversDir, "dir", "", "driver directory (overrides transport.driver-dir)")
	return cmd
}

func listDrivers(w io.Writer, dir string) error {
	mgr := driver.NewManager(dir)
	if err := mgr.Discover(); err != nil {
		return fmt.Errorf("failed to discover drivers: %w", err)
	}

	drivers := mgr.List()
	if len(drivers) == 0 {
		fmt.Fprintf(w, "No drivers in %s\n", dir)
		return nil
	}

	for _, d := range drivers {
		commands := "all"
		if len(d.Manifest.Commands) > 0 {
			commands = strings.Join(d.Manifest.Commands, ",")
		}
		fmt.Fprintf(w, "%s %s %s %s\n",
			column(d.Manifest.Name, 16),
			column(d.Manifest.Version, 8),
			column(commands, 12),
			d.Manifest.Description)
	}
	return nil
}

// column pads or truncates s to width terminal cells.
func column(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
