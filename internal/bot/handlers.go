package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/danhigham/telefleet/internal/broadcast"
	"github.com/danhigham/telefleet/internal/domain"
	"github.com/danhigham/telefleet/internal/login"
)

// none is what the operator types to clear an optional field.
const none = "none"

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Debug("answer callback", zap.Error(err))
	}

	conv := b.convs.Get(q.Message.Chat.ID)
	conv.SetMessageID(q.Message.MessageID)
	lang := conv.View().Lang

	action, args := parseData(q.Data)
	key := ""
	if len(args) > 0 {
		key = args[0]
	}

	switch action {
	case cbNoop:
	case cbHome:
		conv.Reset()
		b.home(conv, "")

	case cbAddAccount:
		conv.StartLogin(b.newLogin())
		b.show(conv, T(lang, "add_intro")+T(lang, "prompt_api_hash"), backKeyboard(lang, cbHome))

	case cbShowAccounts:
		conv.Reset()
		b.showAccounts(ctx, conv, "")

	case cbToolMessage:
		conv.SetStep(StepMessageUsername, "")
		b.show(conv, T(lang, "prompt_msg_username"), backKeyboard(lang, cbHome))
	case cbToolJoin:
		conv.SetStep(StepJoinChannel, "")
		b.show(conv, T(lang, "prompt_join"), backKeyboard(lang, cbHome))
	case cbToolReaction:
		conv.SetStep(StepReactionLink, "")
		b.show(conv, T(lang, "prompt_reaction"), backKeyboard(lang, cbHome))

	case cbViewAccount:
		b.viewAccount(ctx, conv, key)

	case cbDeleteAccount:
		conv.Reset()
		ok, err := b.accounts.Delete(ctx, key)
		if err != nil {
			b.fail(conv, err, backKeyboard(lang, cbShowAccounts))
			return
		}
		notice := T(lang, "account_gone")
		if ok {
			notice = T(lang, "deleted", "key", key)
		}
		b.showAccounts(ctx, conv, notice)

	case cbEditAccount:
		conv.SetStep(StepNone, key)
		b.show(conv, T(lang, "edit_title"), editProfileKeyboard(lang, key))
	case cbEditFirstName:
		b.prompt(conv, StepEditFirstName, key, "prompt_first_name", data(cbEditAccount, key))
	case cbEditLastName:
		b.prompt(conv, StepEditLastName, key, "prompt_last_name", data(cbEditAccount, key))
	case cbEditUsername:
		b.prompt(conv, StepEditUsername, key, "prompt_username", data(cbEditAccount, key))
	case cbEditBio:
		b.prompt(conv, StepEditBio, key, "prompt_bio", data(cbEditAccount, key))

	case cbChange2FA:
		conv.SetStep(StepNone, key)
		b.show(conv, T(lang, "twofa_title"), change2FAKeyboard(lang, key))
	case cbSet2FA:
		b.prompt(conv, StepCurrentPassword, key, "prompt_current_2fa", data(cbChange2FA, key))

	case cbManageSessions:
		conv.SetStep(StepNone, key)
		b.show(conv, T(lang, "sessions_title"), manageSessionsKeyboard(lang, key))
	case cbViewSessions:
		b.viewSessions(ctx, conv, key)
	case cbTerminateAll:
		b.terminate(ctx, conv, key, true, nil)
	case cbTerminateOne:
		if len(args) < 2 {
			return
		}
		n, err := strconv.Atoi(args[1])
		hash, ok := conv.SessionHash(n)
		if err != nil || !ok {
			b.show(conv, T(lang, "session_stale"), manageSessionsKeyboard(lang, key))
			return
		}
		b.terminate(ctx, conv, key, false, []int64{hash})

	default:
		b.logger.Debug("unknown callback", zap.String("data", q.Data))
	}
}

func (b *Bot) prompt(conv *Conversation, step Step, key, textKey, back string) {
	conv.SetStep(step, key)
	lang := conv.View().Lang
	b.show(conv, T(lang, textKey), backKeyboard(lang, back))
}

func (b *Bot) showAccounts(ctx context.Context, conv *Conversation, notice string) {
	lang := conv.View().Lang
	list, err := b.accounts.List(ctx)
	if err != nil {
		b.fail(conv, err, backKeyboard(lang, cbHome))
		return
	}
	text := T(lang, "accounts_title")
	if notice != "" {
		text = notice + "\n\n" + text
	}
	b.show(conv, text, accountsKeyboard(lang, list))
}

func (b *Bot) viewAccount(ctx context.Context, conv *Conversation, key string) {
	gen := conv.SetStep(StepNone, key)
	lang := conv.View().Lang
	b.show(conv, T(lang, "working"), backKeyboard(lang, cbShowAccounts))

	details, err := b.accounts.Details(ctx, key)
	if !conv.Current(gen) {
		return
	}
	if err != nil {
		b.fail(conv, err, backKeyboard(lang, cbShowAccounts))
		return
	}
	b.show(conv, detailsText(lang, details), accountKeyboard(lang, key))
}

func (b *Bot) viewSessions(ctx context.Context, conv *Conversation, key string) {
	gen := conv.SetStep(StepNone, key)
	lang := conv.View().Lang
	b.show(conv, T(lang, "working"), backKeyboard(lang, data(cbManageSessions, key)))

	sessions, err := b.accounts.Sessions(ctx, key)
	if !conv.Current(gen) {
		return
	}
	if err != nil {
		b.fail(conv, err, backKeyboard(lang, data(cbManageSessions, key)))
		return
	}
	text, byIndex := sessionsText(lang, sessions)
	conv.SetSessions(byIndex)
	b.show(conv, text, sessionsKeyboard(lang, key, sessions))
}

func (b *Bot) terminate(ctx context.Context, conv *Conversation, key string, all bool, hashes []int64) {
	gen := conv.SetStep(StepNone, key)
	lang := conv.View().Lang
	back := manageSessionsKeyboard(lang, key)
	b.show(conv, T(lang, "working"), back)

	n, err := b.accounts.TerminateSessions(ctx, key, all, hashes)
	if !conv.Current(gen) {
		return
	}
	conv.SetSessions(nil)
	if err != nil {
		b.fail(conv, err, back)
		return
	}
	b.show(conv, T(lang, "sessions_terminated", "count", n), back)
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	conv := b.convs.Get(msg.Chat.ID)
	if err := conv.Wait(ctx); err != nil {
		return
	}

	v := conv.View()
	if v.Step == StepNone {
		return
	}
	// Inputs may hold passwords; keep the chat to the single menu message.
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID)); err != nil {
		b.logger.Debug("delete input message", zap.Error(err))
	}

	text := strings.TrimSpace(msg.Text)
	lang, key := v.Lang, v.Account

	switch v.Step {
	case StepLogin:
		b.handleLogin(ctx, conv, text)

	case StepEditFirstName:
		b.updateProfile(ctx, conv, key, domain.ProfileUpdate{FirstName: &text})
	case StepEditLastName:
		last := optional(text)
		b.updateProfile(ctx, conv, key, domain.ProfileUpdate{LastName: &last})
	case StepEditUsername:
		username := strings.TrimPrefix(text, "@")
		b.updateProfile(ctx, conv, key, domain.ProfileUpdate{Username: &username})
	case StepEditBio:
		bio := optional(text)
		b.updateProfile(ctx, conv, key, domain.ProfileUpdate{Bio: &bio})

	case StepCurrentPassword:
		conv.Put("current_password", optional(text))
		b.prompt(conv, StepNewPassword, key, "prompt_new_2fa", data(cbChange2FA, key))
	case StepNewPassword:
		current := conv.Take("current_password")
		gen := conv.SetStep(StepNone, key)
		back := change2FAKeyboard(lang, key)
		b.show(conv, T(lang, "working"), back)
		err := b.accounts.UpdatePassword(ctx, key, current, text)
		if !conv.Current(gen) {
			return
		}
		if err != nil {
			b.fail(conv, err, back)
			return
		}
		b.show(conv, T(lang, "password_updated"), back)

	case StepMessageUsername:
		conv.Put("username", text)
		b.prompt(conv, StepMessageText, "", "prompt_msg_text", cbHome)
	case StepMessageText:
		username := conv.Take("username")
		b.broadcast(conv, func() (*broadcast.Report, error) {
			return b.broadcaster.SendMessage(ctx, username, text)
		})
	case StepJoinChannel:
		b.broadcast(conv, func() (*broadcast.Report, error) {
			return b.broadcaster.JoinChannel(ctx, text)
		})
	case StepReactionLink:
		b.broadcast(conv, func() (*broadcast.Report, error) {
			return b.broadcaster.React(ctx, text)
		})
	}
}

// broadcast runs fn with the conversation back on the home step and
// renders its report if the operator has not navigated away meanwhile.
func (b *Bot) broadcast(conv *Conversation, fn func() (*broadcast.Report, error)) {
	step := conv.View().Step
	gen := conv.SetStep(StepNone, "")
	lang := conv.View().Lang
	b.show(conv, T(lang, "working"), backKeyboard(lang, cbHome))

	report, err := fn()
	if !conv.Current(gen) {
		return
	}
	if errors.Is(err, domain.ErrInvalidMessageLink) {
		conv.SetStep(step, "")
		b.show(conv, T(lang, "bad_link")+"\n\n"+T(lang, "prompt_reaction"), backKeyboard(lang, cbHome))
		return
	}
	if err != nil {
		b.fail(conv, err, backKeyboard(lang, cbHome))
		return
	}
	b.home(conv, reportText(lang, report))
}

func (b *Bot) updateProfile(ctx context.Context, conv *Conversation, key string, upd domain.ProfileUpdate) {
	gen := conv.SetStep(StepNone, key)
	lang := conv.View().Lang
	back := editProfileKeyboard(lang, key)
	b.show(conv, T(lang, "working"), back)

	err := b.accounts.UpdateProfile(ctx, key, upd)
	if !conv.Current(gen) {
		return
	}
	if err != nil {
		b.fail(conv, err, back)
		return
	}
	b.show(conv, T(lang, "profile_updated"), back)
}

func (b *Bot) handleLogin(ctx context.Context, conv *Conversation, input string) {
	flow := conv.Login()
	if flow == nil {
		conv.Reset()
		b.home(conv, "")
		return
	}
	gen := conv.View().Gen
	lang := conv.View().Lang
	back := backKeyboard(lang, cbHome)

	state, err := flow.Submit(ctx, input)
	if !conv.Current(gen) {
		return
	}

	switch state {
	case login.StateAwaitingAPIHash:
		b.show(conv, T(lang, "prompt_api_hash"), back)
	case login.StateAwaitingAPIID:
		b.show(conv, rejected(lang, err, "bad_api_id")+T(lang, "prompt_api_id"), back)
	case login.StateAwaitingPhone:
		b.show(conv, T(lang, "prompt_phone"), back)
	case login.StateAwaitingCode:
		b.show(conv, rejected(lang, err, "bad_code")+T(lang, "prompt_code"), back)
	case login.StateAwaitingPassword:
		b.show(conv, rejected(lang, err, "bad_password")+T(lang, "prompt_password"), back)
	case login.StateAuthenticated:
		res := flow.Result()
		conv.Reset()
		b.home(conv, T(lang, "account_added", "key", res.Key, "name", userName(res.User)))
	case login.StateFailed, login.StateCancelled:
		conv.Reset()
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		b.show(conv, T(lang, "login_failed", "error", escape(msg)), back)
	}
}

// rejected returns the notice for a re-prompted login step.
func rejected(lang Lang, err error, key string) string {
	if err == nil {
		return ""
	}
	return T(lang, key) + "\n\n"
}

func userName(u domain.User) string {
	return escape(domain.Account{FirstName: u.FirstName, LastName: u.LastName, Username: u.Username}.DisplayName())
}

func optional(s string) string {
	if strings.EqualFold(s, none) {
		return ""
	}
	return s
}
