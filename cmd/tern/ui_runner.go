package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"tern/internal/driver"
	"tern/internal/ui"
)

// uiMode is the --ui setting.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch m := uiMode(strings.ToLower(strings.TrimSpace(value))); m {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return m, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// shouldUseTUI: auto enables progress only for a terminal and only when the
// output is not machine-readable (json/yaml/msgpack under a TUI make no sense).
func shouldUseTUI(mode uiMode, out io.Writer, structured bool) bool {
	if mode == uiModeAuto {
		return !structured && writerIsTerminal(out)
	}
	return mode == uiModeOn
}

// runCheckWithUI runs driver.Check in the background and draws its progress
// events on out. The UI error is reported only when the check itself
// succeeded.
func runCheckWithUI(ctx context.Context, out io.Writer, title string, paths []string, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	opts.Progress = driver.ChannelSink{Ch: events}

	var g errgroup.Group
	var res *driver.Result
	g.Go(func() error {
		defer close(events)
		var err error
		res, err = driver.Check(ctx, paths, opts)
		return err
	})

	program := tea.NewProgram(ui.NewProgressModel(title, paths, events),
		tea.WithOutput(out), tea.WithInput(nil), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// the TUI may have quit early (context canceled); drain so the driver does not stall
	for range events {
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, uiErr
}
