package main

import (
	"context"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ayusman/mudra/internal/monitor"
)

var (
	watchURL   string
	watchPlain bool
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a running pipeline in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runWatchCmd,
	}
	cmd.Flags().StringVar(&watchURL, "url", "", "event stream URL (default derived from server.addr)")
	cmd.Flags().BoolVar(&watchPlain, "plain", false, "print one line per command instead of the dashboard")
	return cmd
}

func runWatchCmd(cmd *cobra.Command, _ []string) error {
	url := watchURL
	if url == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		url = eventsURL(cfg.Server.Addr)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	msgs := monitor.Listen(ctx, url)

	if watchPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return monitor.Follow(ctx, msgs, cmd.OutOrStdout())
	}

	program := tea.NewProgram(monitor.NewModel(msgs), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func eventsURL(addr string) string {
	return "ws" + strings.TrimPrefix(dashboardURL(addr), "http") + "/api/events"
}
