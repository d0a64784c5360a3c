package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier delivers notifications to the single configured chat.
// Reminder messages carry an inline "open client" button whose callback data
// holds the client id, so a tap resolves back to the record even after a
// process restart (Telegram keeps the update queued until it is confirmed).
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(api *tgbotapi.BotAPI, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{api: api, chatID: chatID}
}

func (t *TelegramNotifier) Send(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := "🔔 " + n.Title
	if n.Body != "" {
		text += "\n\n" + n.Body
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	if n.ClientID != "" {
		openButton := tgbotapi.NewInlineKeyboardButtonData(
			"📂 Ouvrir la fiche",
			"open:"+n.ClientID,
		)
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(openButton),
		)
	}

	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram notification: %w", err)
	}
	return nil
}
