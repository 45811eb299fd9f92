package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danhigham/telefleet/internal/domain"
)

func TestAccountsMarkdown(t *testing.T) {
	accounts := map[string]domain.Account{
		"session_10": {Key: "session_10", APIID: 3, FirstName: "Zed"},
		"session_2":  {Key: "session_2", APIID: 1, FirstName: "A|B", Username: "ab", AccountID: "77", Phone: "+1"},
	}

	md := AccountsMarkdown(accounts)
	assert.True(t, strings.HasPrefix(md, "# Accounts (2)"))
	assert.Contains(t, md, `| session_2 | 77 | A\|B | @ab | +1 | 1 |`)
	assert.Contains(t, md, "| session_10 | - | Zed | - | - | 3 |")
	assert.Less(t, strings.Index(md, "session_2 "), strings.Index(md, "session_10 "))
}

func TestAccountsMarkdownEmpty(t *testing.T) {
	md := AccountsMarkdown(nil)
	assert.Contains(t, md, "# Accounts (0)")
	assert.Contains(t, md, "No accounts stored")
	assert.NotContains(t, md, "|")
}

func TestRenderAccounts(t *testing.T) {
	out, err := RenderAccounts(map[string]domain.Account{
		"session_1": {Key: "session_1", APIID: 1, FirstName: "Ann"},
	}, 100)
	require.NoError(t, err)
	assert.Contains(t, out, "Ann")
}
