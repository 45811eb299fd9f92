package bot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danhigham/telefleet/internal/accounts"
	"github.com/danhigham/telefleet/internal/broadcast"
	"github.com/danhigham/telefleet/internal/config"
	"github.com/danhigham/telefleet/internal/domain"
	"github.com/danhigham/telefleet/internal/login"
	"github.com/danhigham/telefleet/internal/store"
	"github.com/danhigham/telefleet/internal/telegram/telegramtest"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
	editErr  error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	if _, ok := c.(tgbotapi.EditMessageTextConfig); ok && f.editErr != nil {
		return tgbotapi.Message{}, f.editErr
	}
	f.nextID++
	return tgbotapi.Message{MessageID: 1000 + f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// last returns the text and keyboard of the latest rendered message.
func (f *fakeAPI) last(t *testing.T) (string, *tgbotapi.InlineKeyboardMarkup) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)

	switch c := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.EditMessageTextConfig:
		return c.Text, c.ReplyMarkup
	case tgbotapi.MessageConfig:
		markup, _ := c.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		return c.Text, &markup
	default:
		t.Fatalf("unexpected chattable %T", c)
		return "", nil
	}
}

func (f *fakeAPI) deletes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if _, ok := r.(tgbotapi.DeleteMessageConfig); ok {
			n++
		}
	}
	return n
}

type harness struct {
	bot      *Bot
	api      *fakeAPI
	store    store.Store
	platform *telegramtest.Platform
	convs    *Conversations
}

func newHarness(t *testing.T, setup func(domain.Credentials) *telegramtest.Client, allowed ...int64) *harness {
	t.Helper()
	st, err := store.NewJSONStore(filepath.Join(t.TempDir(), "Sessions.json"))
	require.NoError(t, err)

	platform := &telegramtest.Platform{Setup: setup}
	logger := zap.NewNop()
	api := &fakeAPI{}
	convs := NewConversations(English, 0)

	b := New(api,
		accounts.NewService(st, platform, logger),
		broadcast.NewDispatcher(st, platform, config.BroadcastConfig{Concurrency: 2}, logger),
		func() *login.Flow { return login.New(platform, st, logger) },
		convs,
		allowed,
		logger,
	)
	return &harness{bot: b, api: api, store: st, platform: platform, convs: convs}
}

const (
	chatA  int64 = 10
	chatB  int64 = 20
	userID int64 = 7
)

func (h *harness) text(chatID int64, text string) {
	msg := &tgbotapi.Message{
		MessageID: 500,
		From:      &tgbotapi.User{ID: userID},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	h.bot.HandleUpdate(context.Background(), tgbotapi.Update{Message: msg})
}

func (h *harness) click(chatID int64, data string) {
	h.bot.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{MessageID: 42, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}})
}

func (h *harness) seed(t *testing.T, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := h.store.Add(context.Background(), domain.NewAccount{
			APIID: i, APIHash: "hash", Session: fmt.Sprintf("token-%d", i), FirstName: fmt.Sprintf("User%d", i),
		})
		require.NoError(t, err)
	}
}

func hasButton(markup *tgbotapi.InlineKeyboardMarkup, data string) bool {
	for _, row := range markup.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil && *b.CallbackData == data {
				return true
			}
		}
	}
	return false
}

func TestStartShowsHome(t *testing.T) {
	h := newHarness(t, nil)
	h.text(chatA, "/start")

	text, markup := h.api.last(t)
	assert.Contains(t, text, "Telegram account manager")
	assert.True(t, hasButton(markup, cbAddAccount))
	assert.True(t, hasButton(markup, cbToolReaction))
	assert.Equal(t, 1001, h.convs.Get(chatA).View().MessageID)
}

func TestWhitelist(t *testing.T) {
	h := newHarness(t, nil, 99)
	h.text(chatA, "/start")

	text, _ := h.api.last(t)
	assert.Equal(t, T(English, "access_denied"), text)
}

func TestLanguageSwitch(t *testing.T) {
	h := newHarness(t, nil)
	h.text(chatA, "/fa")

	text, _ := h.api.last(t)
	assert.Contains(t, text, T(Persian, "lang_changed"))
	assert.Equal(t, Persian, h.convs.Get(chatA).View().Lang)
	assert.Equal(t, English, h.convs.Get(chatB).View().Lang)
}

func TestLoginThroughBot(t *testing.T) {
	client := &telegramtest.Client{
		Code:     "11111",
		Password: "pw",
		Token:    "tok",
		User:     domain.User{ID: 5, FirstName: "Ann"},
	}
	h := newHarness(t, func(domain.Credentials) *telegramtest.Client { return client })

	h.click(chatA, cbAddAccount)
	text, _ := h.api.last(t)
	assert.Contains(t, text, T(English, "prompt_api_hash"))

	h.text(chatA, "abcdef")
	h.text(chatA, "not-a-number")
	text, _ = h.api.last(t)
	assert.Contains(t, text, T(English, "bad_api_id"))

	h.text(chatA, "123")
	h.text(chatA, "+1555")
	text, _ = h.api.last(t)
	assert.Contains(t, text, T(English, "prompt_code"))

	h.text(chatA, "00000")
	text, _ = h.api.last(t)
	assert.Contains(t, text, T(English, "bad_code"))

	h.text(chatA, "11111")
	text, _ = h.api.last(t)
	assert.Contains(t, text, T(English, "prompt_password"))

	h.text(chatA, "pw")
	text, _ = h.api.last(t)
	assert.Contains(t, text, "session_1")
	assert.Equal(t, StepNone, h.convs.Get(chatA).View().Step)
	assert.Equal(t, 7, h.api.deletes())

	acc, err := h.store.Get(context.Background(), "session_1")
	require.NoError(t, err)
	assert.Equal(t, "tok", acc.Session)
}

func TestBackHomeCancelsLogin(t *testing.T) {
	client := &telegramtest.Client{Code: "1"}
	h := newHarness(t, func(domain.Credentials) *telegramtest.Client { return client })

	h.click(chatA, cbAddAccount)
	h.text(chatA, "hash")
	h.text(chatA, "1")
	h.text(chatA, "+1555")
	flow := h.convs.Get(chatA).Login()
	require.NotNil(t, flow)
	require.False(t, client.Closed())

	h.click(chatA, cbHome)
	assert.True(t, client.Closed())
	assert.Equal(t, login.StateCancelled, flow.State())

	h.text(chatA, "1")
	list, err := h.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestConversationsAreIndependent(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, 1)

	h.click(chatA, cbAddAccount)
	h.click(chatB, cbToolJoin)

	h.text(chatB, "@news")
	text, _ := h.api.last(t)
	assert.Contains(t, text, "1 of 1 accounts succeeded")

	assert.Equal(t, StepLogin, h.convs.Get(chatA).View().Step)
	assert.Equal(t, StepNone, h.convs.Get(chatB).View().Step)
}

func TestBroadcastMessage(t *testing.T) {
	h := newHarness(t, func(creds domain.Credentials) *telegramtest.Client {
		c := &telegramtest.Client{Authorized: true}
		if creds.Session == "token-2" {
			c.Fail = map[string]error{"SendMessage": errors.New("USER_PRIVACY_RESTRICTED")}
		}
		return c
	})
	h.seed(t, 3)

	h.click(chatA, cbToolMessage)
	h.text(chatA, "@friend")
	assert.Equal(t, StepMessageText, h.convs.Get(chatA).View().Step)
	h.text(chatA, "hello there")

	text, markup := h.api.last(t)
	assert.Contains(t, text, "2 of 3 accounts succeeded")
	assert.True(t, hasButton(markup, cbAddAccount))
}

func TestReactionBadLinkReprompts(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, 1)

	h.click(chatA, cbToolReaction)
	h.text(chatA, "https://t.me/chat/notanumber")

	text, _ := h.api.last(t)
	assert.Contains(t, text, T(English, "bad_link"))
	assert.Equal(t, StepReactionLink, h.convs.Get(chatA).View().Step)
	assert.Empty(t, h.platform.Opened())

	h.text(chatA, "https://t.me/chat/5?single")
	text, _ = h.api.last(t)
	assert.Contains(t, text, "1 of 1 accounts succeeded")
}

func TestEditFallsBackToNewMessage(t *testing.T) {
	h := newHarness(t, nil)
	h.api.editErr = errors.New("Bad Request: message to edit not found")

	h.click(chatA, cbShowAccounts)

	h.api.mu.Lock()
	require.Len(t, h.api.sent, 2)
	_, isEdit := h.api.sent[0].(tgbotapi.EditMessageTextConfig)
	_, isNew := h.api.sent[1].(tgbotapi.MessageConfig)
	h.api.mu.Unlock()
	assert.True(t, isEdit)
	assert.True(t, isNew)
	assert.Equal(t, 1001, h.convs.Get(chatA).View().MessageID)
}

func TestAccountsListAndDelete(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, 2)

	h.click(chatA, cbShowAccounts)
	_, markup := h.api.last(t)
	assert.True(t, hasButton(markup, data(cbViewAccount, "session_1")))
	assert.True(t, hasButton(markup, data(cbDeleteAccount, "session_2")))

	h.click(chatA, data(cbDeleteAccount, "session_1"))
	text, markup := h.api.last(t)
	assert.Contains(t, text, "session_1")
	assert.False(t, hasButton(markup, data(cbViewAccount, "session_1")))
	assert.True(t, hasButton(markup, data(cbViewAccount, "session_2")))
}

func TestViewAccount(t *testing.T) {
	h := newHarness(t, func(domain.Credentials) *telegramtest.Client {
		return &telegramtest.Client{
			Authorized: true,
			User:       domain.User{ID: 77, FirstName: "Ann", Username: "ann"},
			About:      "<b>bio</b>",
		}
	})
	h.seed(t, 1)

	h.click(chatA, data(cbViewAccount, "session_1"))
	text, markup := h.api.last(t)
	assert.Contains(t, text, "77")
	assert.Contains(t, text, "@ann")
	assert.Contains(t, text, "&lt;b&gt;bio&lt;/b&gt;")
	assert.True(t, hasButton(markup, data(cbManageSessions, "session_1")))
}

func TestInvalidSessionIsReported(t *testing.T) {
	h := newHarness(t, func(domain.Credentials) *telegramtest.Client {
		return &telegramtest.Client{Authorized: false}
	})
	h.seed(t, 1)

	h.click(chatA, data(cbViewAccount, "session_1"))
	text, _ := h.api.last(t)
	assert.Equal(t, T(English, "session_dead"), text)
}

func TestTerminateByDisplayedIndex(t *testing.T) {
	client := &telegramtest.Client{
		Authorized: true,
		Auths: []domain.Authorization{
			{Hash: 111, Current: true, DateCreated: 1},
			{Hash: 222, DateCreated: 2},
			{Hash: 333, DateCreated: 3},
		},
	}
	h := newHarness(t, func(domain.Credentials) *telegramtest.Client { return client })
	h.seed(t, 1)

	h.click(chatA, data(cbTerminateOne, "session_1", "2"))
	text, _ := h.api.last(t)
	assert.Equal(t, T(English, "session_stale"), text)

	h.click(chatA, data(cbViewSessions, "session_1"))
	text, markup := h.api.last(t)
	assert.Contains(t, text, "CURRENT")
	assert.False(t, hasButton(markup, data(cbTerminateOne, "session_1", "1")))
	assert.True(t, hasButton(markup, data(cbTerminateOne, "session_1", "3")))

	h.click(chatA, data(cbTerminateOne, "session_1", "3"))
	text, _ = h.api.last(t)
	assert.Contains(t, text, "1 session(s) terminated")

	var reset []any
	for _, c := range client.Calls() {
		if c.Method == "ResetAuthorization" {
			reset = append(reset, c.Args[0])
		}
	}
	assert.Equal(t, []any{int64(333)}, reset)
}

func TestSessionIndicesSkipCurrent(t *testing.T) {
	sessions := []domain.Session{
		{Authorization: domain.Authorization{Hash: 10}},
		{Authorization: domain.Authorization{Hash: 20, Current: true}},
		{Authorization: domain.Authorization{Hash: 30}},
	}

	_, byIndex := sessionsText(English, sessions)
	assert.Equal(t, map[int]int64{1: 10, 3: 30}, byIndex)

	markup := sessionsKeyboard(English, "session_1", sessions)
	for n := 1; n <= len(sessions); n++ {
		_, ok := byIndex[n]
		assert.Equal(t, ok, hasButton(&markup, data(cbTerminateOne, "session_1", strconv.Itoa(n))), n)
	}
}

func TestEditLastNameNone(t *testing.T) {
	client := &telegramtest.Client{
		Authorized: true,
		User:       domain.User{FirstName: "Ann", LastName: "Lee"},
	}
	h := newHarness(t, func(domain.Credentials) *telegramtest.Client { return client })
	h.seed(t, 1)

	h.click(chatA, data(cbEditLastName, "session_1"))
	h.text(chatA, "none")

	text, _ := h.api.last(t)
	assert.Equal(t, T(English, "profile_updated"), text)
	assert.Equal(t, "", client.User.LastName)
	assert.Equal(t, "Ann", client.User.FirstName)
}

func TestChangePassword(t *testing.T) {
	client := &telegramtest.Client{Authorized: true, Password: "old"}
	h := newHarness(t, func(domain.Credentials) *telegramtest.Client { return client })
	h.seed(t, 1)

	h.click(chatA, data(cbSet2FA, "session_1"))
	h.text(chatA, "old")
	assert.Equal(t, StepNewPassword, h.convs.Get(chatA).View().Step)
	h.text(chatA, "new")

	text, _ := h.api.last(t)
	assert.Equal(t, T(English, "password_updated"), text)
	assert.Equal(t, "new", client.Password)
}

func TestTextWithoutStepIsIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.text(chatA, "hello")

	h.api.mu.Lock()
	defer h.api.mu.Unlock()
	assert.Empty(t, h.api.sent)
	assert.Empty(t, h.api.requests)
}
