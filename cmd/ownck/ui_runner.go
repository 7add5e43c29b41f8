package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ownck/internal/driver"
	"ownck/internal/ui"
)

type checkOutcome struct {
	results []driver.FileResult
	err     error
}

// runCheckWithUI runs CheckFiles in the background while a progress model
// renders its events. The diagnostics are printed after the UI exits.
func runCheckWithUI(ctx context.Context, title string, files []string, opts driver.Options) ([]driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.CheckFiles(ctx, files, optsCopy)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// UI мог выйти раньше (ctrl+c): дочитываем события, чтобы воркеры не заблокировались
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
