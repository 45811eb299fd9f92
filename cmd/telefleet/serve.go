package main

import (
	"fmt"

	"charm.land/lipgloss/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danhigham/telefleet/internal/accounts"
	"github.com/danhigham/telefleet/internal/bot"
	"github.com/danhigham/telefleet/internal/broadcast"
	"github.com/danhigham/telefleet/internal/login"
	"github.com/danhigham/telefleet/internal/metrics"
	"github.com/danhigham/telefleet/internal/ui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the management bot",
	Long: `Connect to the Bot API with bot.token and serve operators until
interrupted. When metrics.addr is set, Prometheus metrics and a health check
are exposed on that address.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.Close()

	cfg, logger := e.cfg, e.logger
	if err := cfg.RequireBot(); err != nil {
		return err
	}

	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return fmt.Errorf("connect bot: %w", err)
	}

	ctx := cmd.Context()
	list, err := e.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	lipgloss.Println(ui.Banner(api.Self.UserName, len(list)))

	b := bot.New(
		api,
		accounts.NewService(e.store, e.platform, logger.Named("accounts")),
		broadcast.NewDispatcher(e.store, e.platform, cfg.Broadcast, logger.Named("broadcast")),
		func() *login.Flow { return login.New(e.platform, e.store, logger.Named("login")) },
		bot.NewConversations(bot.ParseLang(cfg.Bot.Language), cfg.Bot.MinInterval),
		cfg.Bot.AllowedUsers,
		logger.Named("bot"),
	)
	logger.Info("bot ready",
		zap.String("username", api.Self.UserName),
		zap.Int("accounts", len(list)),
		zap.Int("allowed_users", len(cfg.Bot.AllowedUsers)),
	)

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return metrics.NewServer(cfg.Metrics.Addr, logger.Named("metrics")).Start(ctx)
		})
	}
	g.Go(func() error {
		return bot.NewPoller(api, b, logger.Named("poller")).Run(ctx)
	})
	return g.Wait()
}
