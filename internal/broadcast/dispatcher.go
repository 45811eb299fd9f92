// Package broadcast fans one action out over every registered account.
package broadcast

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danhigham/telefleet/internal/config"
	"github.com/danhigham/telefleet/internal/domain"
	"github.com/danhigham/telefleet/internal/metrics"
	"github.com/danhigham/telefleet/internal/store"
	"github.com/danhigham/telefleet/internal/telegram"
)

const (
	ActionSendMessage = "send_message"
	ActionJoinChannel = "join_channel"
	ActionReact       = "react"
)

// Action is performed once per account on an authorized connection.
type Action func(ctx context.Context, c telegram.Client) error

// Report summarises one broadcast run.
type Report struct {
	RunID     string
	Action    string
	Total     int
	Succeeded int
	// Failed maps record keys to the error of that account.
	Failed map[string]error
	// Err combines every per-account error.
	Err error
}

// FailedKeys returns the keys of failed accounts in order.
func (r *Report) FailedKeys() []string {
	keys := make([]string, 0, len(r.Failed))
	for k := range r.Failed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type Dispatcher struct {
	store       store.Store
	platform    telegram.Platform
	concurrency int
	reactions   []string
	pick        func(n int) int
	logger      *zap.Logger
}

func NewDispatcher(st store.Store, platform telegram.Platform, cfg config.BroadcastConfig, logger *zap.Logger) *Dispatcher {
	reactions := cfg.Reactions
	if len(reactions) == 0 {
		reactions = config.DefaultReactions
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{
		store:       st,
		platform:    platform,
		concurrency: concurrency,
		reactions:   reactions,
		pick:        rand.IntN,
		logger:      logger,
	}
}

// Run applies fn to every stored account. A failing account never stops
// the others; only a failure to list the accounts is returned as error.
func (d *Dispatcher) Run(ctx context.Context, action string, fn Action) (*Report, error) {
	accounts, err := d.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	report := &Report{
		RunID:  uuid.NewString(),
		Action: action,
		Total:  len(accounts),
		Failed: make(map[string]error),
	}
	log := d.logger.With(zap.String("run", report.RunID), zap.String("action", action))
	log.Info("broadcast started", zap.Int("accounts", report.Total))
	start := time.Now()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for key, acc := range accounts {
		g.Go(func() error {
			err := d.runOne(gctx, acc, fn)
			metrics.RecordBroadcastAccount(action, err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn("account failed", zap.String("account", key), zap.Error(err))
				report.Failed[key] = err
				report.Err = multierr.Append(report.Err, fmt.Errorf("%s: %w", key, err))
				return nil
			}
			report.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	metrics.RecordBroadcastRun(action, time.Since(start))
	log.Info("broadcast finished",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", len(report.Failed)),
		zap.Duration("took", time.Since(start)),
	)
	return report, nil
}

func (d *Dispatcher) runOne(ctx context.Context, acc domain.Account, fn Action) (err error) {
	if err := acc.Validate(); err != nil {
		return err
	}

	client, err := d.platform.Open(ctx, acc.Credentials())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		err = multierr.Append(err, client.Close())
	}()

	ok, err := client.IsAuthorized(ctx)
	if err != nil {
		return fmt.Errorf("check authorization: %w", err)
	}
	if !ok {
		return domain.ErrSessionInvalid
	}
	return fn(ctx, client)
}

// SendMessage sends text to username from every account.
func (d *Dispatcher) SendMessage(ctx context.Context, username, text string) (*Report, error) {
	username = normalizeUsername(username)
	return d.Run(ctx, ActionSendMessage, func(ctx context.Context, c telegram.Client) error {
		return c.SendMessage(ctx, username, text)
	})
}

// JoinChannel joins target from every account. A leading "@" is ignored.
func (d *Dispatcher) JoinChannel(ctx context.Context, target string) (*Report, error) {
	target = normalizeUsername(target)
	return d.Run(ctx, ActionJoinChannel, func(ctx context.Context, c telegram.Client) error {
		return c.JoinChannel(ctx, target)
	})
}

// React reacts to the message behind link from every account with a
// randomly picked glyph. An unparsable link fails before any account is
// touched.
func (d *Dispatcher) React(ctx context.Context, link string) (*Report, error) {
	ref, err := ParseMessageLink(link)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx, ActionReact, func(ctx context.Context, c telegram.Client) error {
		emoji := d.reactions[d.pick(len(d.reactions))]
		if c.Capabilities().DirectReaction {
			return c.SendReaction(ctx, ref, emoji)
		}
		return c.ReactViaMessage(ctx, ref, emoji)
	})
}

// ParseMessageLink extracts the chat and message id from a link such as
// https://t.me/chat/123?single. The query is dropped and the last two path
// segments are used. A host in the chat position, as in https://t.me/123,
// is rejected.
func ParseMessageLink(link string) (domain.MessageRef, error) {
	link = strings.TrimSpace(link)
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	link = strings.TrimRight(link, "/")

	parts := strings.Split(link, "/")
	if len(parts) < 2 {
		return domain.MessageRef{}, fmt.Errorf("%w: %q", domain.ErrInvalidMessageLink, link)
	}
	chat := parts[len(parts)-2]
	id, err := parseMessageID(parts[len(parts)-1])
	if err != nil || chat == "" || strings.ContainsAny(chat, ":.") {
		return domain.MessageRef{}, fmt.Errorf("%w: %q", domain.ErrInvalidMessageLink, link)
	}
	return domain.MessageRef{Chat: chat, MessageID: id}, nil
}

func parseMessageID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("bad message id %q", s)
	}
	return id, nil
}

func normalizeUsername(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}
