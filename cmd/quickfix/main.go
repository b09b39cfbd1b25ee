// cmd/quickfix/main.go
//
// This is the entry point for the QuickFixHub terminal client.
//
// Flow:
// 1. Load (or create) the config under ~/.quickfix
// 2. Build the API client and the activity logbook
// 3. Launch the TUI; it restores any previous session on its own

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Sonalgupta2005/QuickFixhub/internal/api"
	"github.com/Sonalgupta2005/QuickFixhub/internal/config"
	"github.com/Sonalgupta2005/QuickFixhub/internal/logbook"
	"github.com/Sonalgupta2005/QuickFixhub/internal/tui"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	client, err := api.NewClient(cfg.API, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building API client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	// The logbook is best effort; the client runs fine without it.
	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: activity log unavailable: %v\n", err)
		lb = nil
	} else {
		lb.Info("Session opened · backend %s", cfg.API.BaseURL)
	}

	p := tea.NewProgram(
		tui.NewApp(client, lb),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
