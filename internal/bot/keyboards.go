package bot

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/danhigham/telefleet/internal/domain"
)

// Callback actions. Account-scoped actions carry the record key after a
// colon, session termination also carries the displayed index.
const (
	cbNoop           = "not"
	cbHome           = "back_home"
	cbAddAccount     = "add_account"
	cbShowAccounts   = "show_accounts"
	cbToolMessage    = "tool_send_message"
	cbToolJoin       = "tool_join_channel"
	cbToolReaction   = "tool_reaction"
	cbViewAccount    = "view_account"
	cbEditAccount    = "edit_account"
	cbDeleteAccount  = "delete_session"
	cbEditFirstName  = "edit_first_name"
	cbEditLastName   = "edit_last_name"
	cbEditUsername   = "edit_username"
	cbEditBio        = "edit_bio"
	cbChange2FA      = "change_2fa"
	cbSet2FA         = "set_2fa"
	cbManageSessions = "manage_sessions"
	cbViewSessions   = "view_active_sessions"
	cbTerminateAll   = "terminate_all"
	cbTerminateOne   = "terminate_session"
)

func data(action string, args ...string) string {
	return strings.Join(append([]string{action}, args...), ":")
}

// parseData splits callback data into its action and arguments.
func parseData(s string) (string, []string) {
	parts := strings.Split(s, ":")
	return parts[0], parts[1:]
}

func button(lang Lang, key, cb string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(T(lang, key), cb)
}

func homeKeyboard(lang Lang) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_manager", cbNoop)),
		tgbotapi.NewInlineKeyboardRow(
			button(lang, "btn_add_account", cbAddAccount),
			button(lang, "btn_show_accounts", cbShowAccounts),
		),
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_tools", cbNoop)),
		tgbotapi.NewInlineKeyboardRow(
			button(lang, "btn_send_message", cbToolMessage),
			button(lang, "btn_join_channel", cbToolJoin),
		),
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_send_reaction", cbToolReaction)),
	)
}

func backKeyboard(lang Lang, cb string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_back", cb)),
	)
}

// accountsKeyboard lists accounts ordered by record index.
func accountsKeyboard(lang Lang, accounts map[string]domain.Account) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			button(lang, "hdr_id", cbNoop),
			button(lang, "hdr_name", cbNoop),
			button(lang, "hdr_view", cbNoop),
			button(lang, "hdr_delete", cbNoop),
		),
	}

	for _, key := range domain.SortedKeys(accounts) {
		acc := accounts[key]
		id := acc.AccountID
		if id == "" {
			id = strconv.Itoa(acc.ID)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(id, cbNoop),
			tgbotapi.NewInlineKeyboardButtonData(acc.DisplayName(), data(cbEditAccount, key)),
			button(lang, "btn_view", data(cbViewAccount, key)),
			button(lang, "btn_delete", data(cbDeleteAccount, key)),
		))
	}
	if len(accounts) == 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(lang, "no_accounts", cbNoop)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(lang, "btn_back", cbHome)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func accountKeyboard(lang Lang, key string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button(lang, "btn_edit_profile", data(cbEditAccount, key)),
			button(lang, "btn_change_2fa", data(cbChange2FA, key)),
		),
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_sessions", data(cbManageSessions, key))),
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_back", cbShowAccounts)),
	)
}

func editProfileKeyboard(lang Lang, key string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button(lang, "btn_first_name", data(cbEditFirstName, key)),
			button(lang, "btn_last_name", data(cbEditLastName, key)),
		),
		tgbotapi.NewInlineKeyboardRow(
			button(lang, "btn_username", data(cbEditUsername, key)),
			button(lang, "btn_bio", data(cbEditBio, key)),
		),
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_back", data(cbViewAccount, key))),
	)
}

func manageSessionsKeyboard(lang Lang, key string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_view_sessions", data(cbViewSessions, key))),
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_terminate_all", data(cbTerminateAll, key))),
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_back", data(cbViewAccount, key))),
	)
}

func change2FAKeyboard(lang Lang, key string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_set_password", data(cbSet2FA, key))),
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_back", data(cbViewAccount, key))),
	)
}

// sessionsKeyboard offers one terminate button per non-current session,
// two per row, referring to the displayed index.
func sessionsKeyboard(lang Lang, key string, sessions []domain.Session) tgbotapi.InlineKeyboardMarkup {
	var buttons []tgbotapi.InlineKeyboardButton
	for _, i := range domain.Terminable(sessions) {
		n := strconv.Itoa(i)
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			T(lang, "btn_terminate", "number", n),
			data(cbTerminateOne, key, n),
		))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(buttons); i += 2 {
		end := min(i+2, len(buttons))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons[i:end]...))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_terminate_all", data(cbTerminateAll, key))),
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_back", data(cbManageSessions, key))),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
