package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/danhigham/telefleet/internal/domain"
)

// AccountsMarkdown lists accounts as a markdown table ordered by key.
func AccountsMarkdown(accounts map[string]domain.Account) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Accounts (%d)\n\n", len(accounts))
	if len(accounts) == 0 {
		b.WriteString("_No accounts stored. Add one with `telefleet login`._\n")
		return b.String()
	}

	b.WriteString("| Key | Account ID | Name | Username | Phone | API ID |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, key := range domain.SortedKeys(accounts) {
		acc := accounts[key]
		username := ""
		if acc.Username != "" {
			username = "@" + acc.Username
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d |\n",
			cell(key),
			cell(acc.AccountID),
			cell(strings.TrimSpace(acc.FirstName+" "+acc.LastName)),
			cell(username),
			cell(acc.Phone),
			acc.APIID,
		)
	}
	return b.String()
}

// cell escapes a value for a table cell.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderAccounts renders the accounts table for a terminal of the given
// width.
func RenderAccounts(accounts map[string]domain.Account, width int) (string, error) {
	wordWrap := max(width-2, 40)
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(AccountsMarkdown(accounts))
	if err != nil {
		return "", fmt.Errorf("render accounts: %w", err)
	}
	return out, nil
}
