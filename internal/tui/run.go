package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/led-inventory/internal/dedup"
)

// Option configures Review.
type Option func(*options)

type options struct {
	input     io.Reader
	output    io.Writer
	altScreen bool
}

// WithInput reads key presses from r instead of stdin.
func WithInput(r io.Reader) Option {
	return func(o *options) { o.input = r }
}

// WithOutput renders to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithAltScreen runs the review in the terminal's alternate screen.
func WithAltScreen(enabled bool) Option {
	return func(o *options) { o.altScreen = enabled }
}

// Review shows plan for interactive selection. It returns the selected part of
// the plan and whether the user confirmed the deletion.
func Review(ctx context.Context, plan dedup.Plan, opts ...Option) (dedup.Plan, bool, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if o.input != nil {
		programOpts = append(programOpts, tea.WithInput(o.input))
	}
	if o.output != nil {
		programOpts = append(programOpts, tea.WithOutput(o.output))
	}
	if o.altScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(NewModel(plan), programOpts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return dedup.Plan{}, false, ctx.Err()
		}
		return dedup.Plan{}, false, fmt.Errorf("review failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return dedup.Plan{}, false, fmt.Errorf("unexpected model type %T", final)
	}
	if !m.Confirmed() {
		return dedup.Plan{}, false, nil
	}
	return m.Selection(), true, nil
}
