package ui

import (
	"strconv"

	"charm.land/lipgloss/v2"
)

const bannerArt = `
 _       _       __ _           _
| |_ ___| | ___ / _| | ___  ___| |_
| __/ _ \ |/ _ \ |_| |/ _ \/ _ \ __|
| ||  __/ |  __/  _| |  __/  __/ |_
 \__\___|_|\___|_| |_|\___|\___|\__|
`

// Banner renders the startup box printed by the bot server.
func Banner(bot string, accounts int) string {
	info := lipgloss.NewStyle().Foreground(dimColor).Render(
		"bot @" + bot + " · " + pluralAccounts(accounts),
	)
	body := lipgloss.JoinVertical(lipgloss.Center, bannerArt, info)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForegroundBlend(rainbowBlend...).
		Padding(1, 3).
		Render(body)
}

func pluralAccounts(n int) string {
	switch n {
	case 0:
		return "no accounts"
	case 1:
		return "1 account"
	default:
		return strconv.Itoa(n) + " accounts"
	}
}
