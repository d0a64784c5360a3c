// Package bot is the Telegram presentation layer: commands, the CSV
// document drop, and the notification interaction callbacks.
package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bizbooster/internal/bot/handlers"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	handlers *handlers.Handlers
	chatID   int64
	log      *slog.Logger
}

// New wires the bot around an existing API client; chatID is the single
// authorized chat, every other sender is ignored.
func New(api *tgbotapi.BotAPI, h *handlers.Handlers, chatID int64, log *slog.Logger) *Bot {
	return &Bot{
		api:      api,
		handlers: h,
		chatID:   chatID,
		log:      log,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	b.log.Info("bot authorized", slog.String("account", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// A tapped notification button arrives as a callback query. Telegram
	// queues it until we confirm the update offset, so taps made while the
	// process was down are replayed here on the next start.
	if update.CallbackQuery != nil {
		if update.CallbackQuery.Message == nil || !b.authorized(update.CallbackQuery.Message.Chat.ID) {
			return
		}
		b.handlers.HandleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || !b.authorized(update.Message.Chat.ID) {
		return
	}

	if update.Message.Document != nil {
		b.handlers.HandleDocument(ctx, update.Message)
		return
	}

	if update.Message.IsCommand() {
		b.handlers.HandleCommand(ctx, update.Message)
	}
}

func (b *Bot) authorized(chatID int64) bool {
	return b.chatID == 0 || chatID == b.chatID
}
