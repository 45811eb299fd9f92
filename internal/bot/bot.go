// Package bot is the Telegram bot front-end of telefleet.
package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/danhigham/telefleet/internal/broadcast"
	"github.com/danhigham/telefleet/internal/domain"
	"github.com/danhigham/telefleet/internal/login"
	"github.com/danhigham/telefleet/internal/metrics"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Accounts interface {
	List(ctx context.Context) (map[string]domain.Account, error)
	Delete(ctx context.Context, key string) (bool, error)
	Details(ctx context.Context, key string) (*domain.AccountDetails, error)
	UpdateProfile(ctx context.Context, key string, upd domain.ProfileUpdate) error
	UpdatePassword(ctx context.Context, key, current, next string) error
	Sessions(ctx context.Context, key string) ([]domain.Session, error)
	TerminateSessions(ctx context.Context, key string, all bool, hashes []int64) (int, error)
}

type Broadcaster interface {
	SendMessage(ctx context.Context, username, text string) (*broadcast.Report, error)
	JoinChannel(ctx context.Context, target string) (*broadcast.Report, error)
	React(ctx context.Context, link string) (*broadcast.Report, error)
}

// LoginFactory starts a new login flow.
type LoginFactory func() *login.Flow

type Bot struct {
	api         API
	accounts    Accounts
	broadcaster Broadcaster
	newLogin    LoginFactory
	convs       *Conversations
	allowed     map[int64]struct{}
	logger      *zap.Logger
}

// New builds a bot. An empty allowedUsers lets anyone operate it.
func New(api API, accts Accounts, bc Broadcaster, newLogin LoginFactory, convs *Conversations, allowedUsers []int64, logger *zap.Logger) *Bot {
	allowed := make(map[int64]struct{}, len(allowedUsers))
	for _, id := range allowedUsers {
		allowed[id] = struct{}{}
	}
	return &Bot{
		api:         api,
		accounts:    accts,
		broadcaster: bc,
		newLogin:    newLogin,
		convs:       convs,
		allowed:     allowed,
		logger:      logger,
	}
}

// Commands is the command menu registered with Telegram.
var Commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Start the bot"},
	{Command: "help", Description: "Show help information"},
	{Command: "eng", Description: "Switch to English language"},
	{Command: "fa", Description: "Switch to Persian language"},
}

func (b *Bot) permitted(user *tgbotapi.User) bool {
	if len(b.allowed) == 0 {
		return true
	}
	if user == nil {
		return false
	}
	_, ok := b.allowed[user.ID]
	return ok
}

// HandleUpdate processes one update. Updates of different chats may be
// handled concurrently.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.Message == nil {
			return
		}
		if !b.permitted(q.From) {
			b.deny(q.Message.Chat.ID)
			return
		}
		metrics.RecordBotUpdate("callback")
		b.handleCallback(ctx, q)

	case update.Message != nil:
		msg := update.Message
		if !b.permitted(msg.From) {
			b.deny(msg.Chat.ID)
			return
		}
		if msg.IsCommand() {
			metrics.RecordBotUpdate("command")
			b.handleCommand(ctx, msg)
			return
		}
		metrics.RecordBotUpdate("text")
		b.handleText(ctx, msg)
	}
}

func (b *Bot) deny(chatID int64) {
	metrics.RecordBotUpdate("denied")
	b.logger.Warn("update from unauthorized user", zap.Int64("chat_id", chatID))
	conv := b.convs.Get(chatID)
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, T(conv.View().Lang, "access_denied"))); err != nil {
		b.logger.Error("send message", zap.Error(err))
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	conv := b.convs.Get(msg.Chat.ID)

	switch msg.Command() {
	case "start":
		conv.Reset()
		conv.SetMessageID(0)
		b.home(conv, "")
	case "help":
		conv.SetMessageID(0)
		lang := conv.View().Lang
		b.show(conv, T(lang, "help"), backKeyboard(lang, cbHome))
	case "eng", "en":
		b.switchLang(conv, English)
	case "fa":
		b.switchLang(conv, Persian)
	default:
		b.logger.Debug("unknown command", zap.String("command", msg.Command()))
	}
}

func (b *Bot) switchLang(conv *Conversation, lang Lang) {
	conv.SetLang(lang)
	conv.Reset()
	conv.SetMessageID(0)
	b.home(conv, T(lang, "lang_changed"))
}

// home shows the main menu, optionally preceded by a notice.
func (b *Bot) home(conv *Conversation, notice string) {
	lang := conv.View().Lang
	text := T(lang, "welcome")
	if notice != "" {
		text = notice + "\n\n" + text
	}
	b.show(conv, text, homeKeyboard(lang))
}

// show renders text in the conversation's menu message, editing it in
// place when possible and sending a new one otherwise.
func (b *Bot) show(conv *Conversation, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if id := conv.View().MessageID; id != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(conv.ChatID, id, text, markup)
		edit.ParseMode = tgbotapi.ModeHTML
		_, err := b.api.Send(edit)
		if err == nil || isNotModified(err) {
			return
		}
		b.logger.Debug("edit menu message", zap.Int64("chat_id", conv.ChatID), zap.Error(err))
	}

	msg := tgbotapi.NewMessage(conv.ChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Error("send menu message", zap.Int64("chat_id", conv.ChatID), zap.Error(err))
		return
	}
	conv.SetMessageID(sent.MessageID)
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

// fail renders err for the operator and logs it unless it is expected.
func (b *Bot) fail(conv *Conversation, err error, markup tgbotapi.InlineKeyboardMarkup) {
	lang := conv.View().Lang
	text := errorText(lang, err)
	if text == T(lang, "error") {
		b.logger.Error("operation failed", zap.Int64("chat_id", conv.ChatID), zap.Error(err))
	}
	b.show(conv, text, markup)
}
