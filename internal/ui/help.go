package ui

import (
	"strings"

	"github.com/danhigham/telefleet/internal/login"
)

type prompt struct {
	label       string
	placeholder string
	hint        string
}

var prompts = map[login.State]prompt{
	login.StateAwaitingAPIHash: {
		label:       "API hash",
		placeholder: "0123456789abcdef0123456789abcdef",
		hint:        "Create an application at https://my.telegram.org to get one.",
	},
	login.StateAwaitingAPIID: {
		label:       "API ID",
		placeholder: "12345",
		hint:        "The numeric id shown next to the API hash.",
	},
	login.StateAwaitingPhone: {
		label:       "Phone number",
		placeholder: "+15551234567",
		hint:        "International format. A login code will be sent to this account.",
	},
	login.StateAwaitingCode: {
		label:       "Login code",
		placeholder: "12345",
		hint:        "Sent by Telegram to your other sessions or by SMS.",
	},
	login.StateAwaitingPassword: {
		label: "Two-step verification password",
		hint:  "The account has a cloud password.",
	},
}

var keyHelp = []string{"enter submit", "esc cancel"}

func helpLine() string {
	return hintStyle.Render(strings.Join(keyHelp, " • "))
}
