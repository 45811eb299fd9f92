package ui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/danhigham/telefleet/internal/login"
)

// submittedMsg delivers the outcome of one login input.
type submittedMsg struct {
	state login.State
	err   error
}

// submitCmd runs the blocking login step off the event loop.
func submitCmd(ctx context.Context, flow *login.Flow, value string) tea.Cmd {
	return func() tea.Msg {
		state, err := flow.Submit(ctx, value)
		return submittedMsg{state: state, err: err}
	}
}
