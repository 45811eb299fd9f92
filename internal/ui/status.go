package ui

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/danhigham/telefleet/internal/login"
)

var (
	statusBarBg     = lipgloss.Color("#353533")
	statusPillBg    = lipgloss.Color("#FF5FAF")
	statusPillBgOff = lipgloss.Color("#6C5098")
	statusStepBg    = lipgloss.Color("#6124DF")
)

// loginSteps is the number of inputs of a login without two-step
// verification.
const loginSteps = 4

type statusModel struct {
	state login.State
	busy  bool
	width int
}

func (m statusModel) SetWidth(w int) statusModel {
	m.width = w
	return m
}

func (m statusModel) SetState(s login.State, busy bool) statusModel {
	m.state = s
	m.busy = busy
	return m
}

func stepNumber(s login.State) string {
	switch s {
	case login.StateAwaitingAPIHash, login.StateAwaitingAPIID, login.StateAwaitingPhone, login.StateAwaitingCode:
		return strconv.Itoa(int(s)+1) + "/" + strconv.Itoa(loginSteps)
	case login.StateAwaitingPassword:
		return "2FA"
	default:
		return "-"
	}
}

// View renders a full-width bar:
// [STATE pill] [title] ... [step pill]
func (m statusModel) View() string {
	text := m.state.String()
	pillBg := statusPillBg
	if m.busy {
		text = "working"
		pillBg = statusPillBgOff
	}
	pill := lipgloss.NewStyle().
		Background(pillBg).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1).
		Render(strings.ToUpper(strings.ReplaceAll(text, "_", " ")))

	title := lipgloss.NewStyle().
		Background(statusBarBg).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1).
		Render("telefleet login")

	step := lipgloss.NewStyle().
		Background(statusStepBg).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1).
		Render(stepNumber(m.state))

	left := pill + title
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(step), 0)
	filler := lipgloss.NewStyle().
		Background(statusBarBg).
		Render(strings.Repeat(" ", gap))

	return lipgloss.NewStyle().
		Background(statusBarBg).
		Width(m.width).
		Render(left + filler + step)
}
