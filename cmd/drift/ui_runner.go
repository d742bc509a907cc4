package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"drift/internal/checkpipeline"
	"drift/internal/ui"
)

// uiMode управляет прогресс-интерфейсом команды check.
type uiMode uint8

const (
	uiModeAuto uiMode = iota
	uiModeOn
	uiModeOff
)

// readUIMode разбирает значение флага --ui.
func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	}
	return uiModeAuto, fmt.Errorf("unsupported --ui mode %q: use auto, on or off", value)
}

// shouldUseTUI reports whether the progress UI should run. Explicit on/off
// wins; auto falls back to stdout being a terminal.
func (m uiMode) shouldUseTUI() bool {
	switch m {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

type checkOutcome struct {
	result *checkpipeline.Result
	err    error
}

// runCheckWithUI runs the pipeline in a goroutine, streaming its progress
// events into the Bubble Tea model. The outcome channel keeps the pipeline
// result alive even when the UI itself fails.
func runCheckWithUI(ctx context.Context, title string, files []string, req checkpipeline.CheckRequest) (*checkpipeline.Result, error) {
	events := make(chan checkpipeline.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		reqCopy := req
		reqCopy.Progress = checkpipeline.ChannelSink{Ch: events}
		res, err := checkpipeline.Check(ctx, reqCopy)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
