package bot_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danhigham/telefleet/internal/bot"
)

func TestConversations_GetCreatesOnce(t *testing.T) {
	cs := bot.NewConversations(bot.Persian, 0)

	var wg sync.WaitGroup
	got := make([]*bot.Conversation, 16)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = cs.Get(5)
		}()
	}
	wg.Wait()

	for _, c := range got {
		if c != got[0] {
			t.Fatal("Get returned different conversations for one chat")
		}
	}
	if cs.Len() != 1 {
		t.Errorf("Len = %d, want 1", cs.Len())
	}
	if got[0].View().Lang != bot.Persian {
		t.Errorf("Lang = %q, want fa", got[0].View().Lang)
	}
}

func TestConversation_Generation(t *testing.T) {
	c := bot.NewConversations(bot.English, 0).Get(1)

	gen := c.SetStep(bot.StepEditBio, "session_2")
	if !c.Current(gen) {
		t.Fatal("fresh generation should be current")
	}
	v := c.View()
	if v.Step != bot.StepEditBio || v.Account != "session_2" {
		t.Errorf("View = %+v", v)
	}

	c.Reset()
	if c.Current(gen) {
		t.Error("generation should be stale after Reset")
	}
	if c.View().Step != bot.StepNone {
		t.Errorf("Step = %v, want none", c.View().Step)
	}
}

func TestConversation_Scratch(t *testing.T) {
	c := bot.NewConversations(bot.English, 0).Get(1)

	c.Put("username", "bob")
	if got := c.Take("username"); got != "bob" {
		t.Errorf("Take = %q, want bob", got)
	}
	if got := c.Take("username"); got != "" {
		t.Errorf("second Take = %q, want empty", got)
	}

	c.Put("username", "bob")
	c.Reset()
	if got := c.Take("username"); got != "" {
		t.Errorf("Take after Reset = %q, want empty", got)
	}
}

func TestConversation_SessionHash(t *testing.T) {
	c := bot.NewConversations(bot.English, 0).Get(1)

	if _, ok := c.SessionHash(2); ok {
		t.Error("no sessions shown yet")
	}
	c.SetSessions(map[int]int64{2: 222})
	if h, ok := c.SessionHash(2); !ok || h != 222 {
		t.Errorf("SessionHash(2) = %d, %v", h, ok)
	}
}

func TestConversation_Wait(t *testing.T) {
	c := bot.NewConversations(bot.English, time.Hour).Get(1)

	if err := c.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.Wait(ctx); err == nil {
		t.Error("second Wait within the interval should fail")
	}
}

func TestStep_String(t *testing.T) {
	if bot.StepReactionLink.String() != "reaction_link" {
		t.Errorf("String = %q", bot.StepReactionLink.String())
	}
	if bot.Step(99).String() != "unknown" {
		t.Errorf("String = %q", bot.Step(99).String())
	}
}

func TestT(t *testing.T) {
	got := bot.T(bot.English, "broadcast_done", "ok", 2, "total", 3)
	if !strings.Contains(got, "2 of 3") {
		t.Errorf("T = %q", got)
	}

	if bot.T(bot.Persian, "welcome") == bot.T(bot.English, "welcome") {
		t.Error("Persian welcome should be translated")
	}
	if bot.T(bot.Lang("de"), "yes") != bot.T(bot.English, "yes") {
		t.Error("unknown language should fall back to English")
	}
	if got := bot.T(bot.English, "no_such_key"); !strings.Contains(got, "no_such_key") {
		t.Errorf("missing key = %q", got)
	}
}

func TestParseLang(t *testing.T) {
	cases := map[string]bot.Lang{"fa": bot.Persian, "FA": bot.Persian, "en": bot.English, "": bot.English}
	for in, want := range cases {
		if got := bot.ParseLang(in); got != want {
			t.Errorf("ParseLang(%q) = %q, want %q", in, got, want)
		}
	}
}
