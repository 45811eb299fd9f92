// Package ui holds the terminal front-end of telefleet.
package ui

import (
	"context"
	"errors"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/danhigham/telefleet/internal/domain"
	"github.com/danhigham/telefleet/internal/login"
)

// ErrCancelled is returned by RunLogin when the operator aborts.
var ErrCancelled = errors.New("login cancelled")

// formPadding is the horizontal space taken by the form border and padding.
const formPadding = 8

// LoginModel is the Bubble Tea model of the terminal login form.
type LoginModel struct {
	ctx    context.Context
	flow   *login.Flow
	input  textinput.Model
	status statusModel

	state  login.State
	notice string
	busy   bool
}

// NewLoginModel creates a form driving flow. ctx bounds every login step.
func NewLoginModel(ctx context.Context, flow *login.Flow) LoginModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Focus()

	m := LoginModel{ctx: ctx, flow: flow, input: ti, state: flow.State()}
	return m.prompt()
}

// prompt prepares the input for the current state.
func (m LoginModel) prompt() LoginModel {
	m.input.Reset()
	m.input.Placeholder = prompts[m.state].placeholder
	m.input.EchoMode = textinput.EchoNormal
	if m.state == login.StateAwaitingPassword {
		m.input.EchoMode = textinput.EchoPassword
	}
	m.input.Focus()
	m.status = m.status.SetState(m.state, m.busy)
	return m
}

func (m LoginModel) Init() tea.Cmd {
	return nil
}

type cancelledMsg struct{}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.status = m.status.SetWidth(msg.Width)
		m.input.SetWidth(max(msg.Width-formPadding, 10))
		return m, nil

	case submittedMsg:
		m.busy = false
		m.state = msg.state
		m.notice = noticeFor(msg.err)
		if m.state.Terminal() {
			return m, tea.Quit
		}
		return m.prompt(), nil

	case cancelledMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			// Cancel may wait for an in-flight step, keep it off the event loop.
			flow := m.flow
			return m, func() tea.Msg {
				flow.Cancel()
				return cancelledMsg{}
			}
		case "enter":
			if m.busy {
				return m, nil
			}
			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				return m, nil
			}
			m.busy = true
			m.notice = ""
			m.input.Blur()
			m.status = m.status.SetState(m.state, true)
			return m, submitCmd(m.ctx, m.flow, value)
		}
		if m.busy {
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m LoginModel) View() tea.View {
	p := prompts[m.state]

	var b strings.Builder
	b.WriteString(labelStyle.Render(p.label))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	if p.hint != "" {
		b.WriteString("\n\n" + hintStyle.Render(p.hint))
	}
	if m.notice != "" {
		b.WriteString("\n\n" + noticeStyle.Render(m.notice))
	}
	b.WriteString("\n\n" + helpLine())

	form := applyBorderColor(
		lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 3),
		!m.busy,
	).Render(b.String())

	return tea.NewView(lipgloss.JoinVertical(lipgloss.Left, m.status.View(), form))
}

// noticeFor turns a rejected input into operator text.
func noticeFor(err error) string {
	var fw *domain.FloodWaitError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidAPIID):
		return "The API ID must be a positive number."
	case errors.Is(err, domain.ErrInvalidCode):
		return "That code was not accepted, try again."
	case errors.Is(err, domain.ErrInvalidPassword):
		return "Wrong password, try again."
	case errors.As(err, &fw):
		return "Too many attempts, wait " + fw.Wait.String() + " before retrying."
	default:
		return err.Error()
	}
}

// RunLogin drives flow from the terminal until it ends and returns the
// stored account.
func RunLogin(ctx context.Context, flow *login.Flow) (*login.Result, error) {
	p := tea.NewProgram(NewLoginModel(ctx, flow), tea.WithContext(ctx))
	_, err := p.Run()
	if !flow.State().Terminal() {
		flow.Cancel()
	}
	if err != nil {
		return nil, err
	}

	switch flow.State() {
	case login.StateAuthenticated:
		return flow.Result(), nil
	case login.StateFailed:
		return nil, flow.Err()
	default:
		return nil, ErrCancelled
	}
}
