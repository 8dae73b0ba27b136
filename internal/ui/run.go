package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"geoprof/internal/pipeline"
)

// Run shows the live batch view while batch runs and returns its summary.
// Quitting the view early cancels the batch after the job in flight.
func Run(ctx context.Context, batch BatchFunc) (pipeline.Summary, error) {
	m := NewModel(ctx, batch)
	prog := tea.NewProgram(m)

	stop := context.AfterFunc(ctx, func() { prog.Send(interruptMsg{}) })
	defer stop()

	_, err := prog.Run()
	close(m.exited)
	if err != nil {
		m.cancel()
		select {
		case <-m.started:
		default:
			// The program failed before the batch was started.
			return pipeline.Summary{}, err
		}
	}
	sum := <-m.done
	m.cancel()
	return sum, err
}
