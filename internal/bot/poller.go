package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Poller feeds long-polled updates to a Bot.
type Poller struct {
	api    *tgbotapi.BotAPI
	bot    *Bot
	logger *zap.Logger
}

func NewPoller(api *tgbotapi.BotAPI, b *Bot, logger *zap.Logger) *Poller {
	return &Poller{api: api, bot: b, logger: logger}
}

// Run registers the command menu and dispatches updates until ctx is done.
// Each update is handled on its own goroutine; Run waits for them to finish
// before returning.
func (p *Poller) Run(ctx context.Context) error {
	if _, err := p.api.Request(tgbotapi.NewSetMyCommands(Commands...)); err != nil {
		return fmt.Errorf("set bot commands: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := p.api.GetUpdatesChan(u)

	p.logger.Info("bot polling started", zap.String("username", p.api.Self.UserName))

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("bot polling stopped")
			p.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				p.logger.Info("updates channel closed")
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.bot.HandleUpdate(ctx, update)
			}()
		}
	}
}
