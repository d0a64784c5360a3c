package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bizbooster/internal/lib/sl"
	"bizbooster/internal/service"
)

// HandleCallback routes an inline button tap. The payload is "<action>:<id>";
// "open" comes from reminder notifications, the rest from the client card.
func (h *Handlers) HandleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Acknowledge first so the client stops the loading spinner even when
	// the action below fails.
	if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		h.log.Error("failed to answer callback", sl.Err(err))
	}

	action, clientID, ok := strings.Cut(query.Data, ":")
	if !ok || clientID == "" {
		return
	}
	chatID := query.Message.Chat.ID

	client, err := h.clients.Get(ctx, clientID)
	if err != nil {
		h.replyClientError(chatID, err)
		return
	}

	switch action {
	case "open":
		h.sendClientCard(ctx, chatID, client)

	case "call":
		if _, err := h.clients.RecordInteraction(ctx, clientID, service.InteractionCall); err != nil {
			h.log.Error("failed to record call", sl.Err(err))
			h.sendMessage(chatID, "Impossible d'enregistrer l'appel.")
			return
		}
		h.sendMessage(chatID, "📞 Appel enregistré pour "+client.Name+" ("+client.Phone+").")

	case "sms":
		h.sendFollowUp(ctx, chatID, clientID, service.InteractionSMS)

	case "email":
		h.sendFollowUp(ctx, chatID, clientID, service.InteractionEmail)

	case "draft":
		h.sendDraft(ctx, chatID, clientID)

	case "delete":
		if err := h.clients.Delete(ctx, clientID); err != nil {
			h.log.Error("failed to delete client", sl.Err(err))
			h.sendMessage(chatID, "Impossible de supprimer la fiche.")
			return
		}
		h.sendMessage(chatID, "🗑 Fiche de "+client.Name+" supprimée.")
	}
}

// sendFollowUp hands the personalized template to the user and records the
// interaction.
func (h *Handlers) sendFollowUp(ctx context.Context, chatID int64, clientID string, kind service.InteractionKind) {
	text, err := h.clients.FollowUpMessage(ctx, clientID, kind)
	if err != nil {
		h.log.Error("failed to build follow-up message", sl.Err(err))
		h.sendMessage(chatID, "Impossible de préparer le message.")
		return
	}

	client, err := h.clients.RecordInteraction(ctx, clientID, kind)
	if err != nil {
		h.log.Error("failed to record interaction", sl.Err(err))
		h.sendMessage(chatID, "Impossible d'enregistrer l'interaction.")
		return
	}

	label := "💬 SMS pour " + client.Name
	if kind == service.InteractionEmail {
		label = "✉️ Email pour " + client.Name
	}
	h.sendMessage(chatID, label+" :\n\n"+text)
}

// sendDraft asks the model for a follow-up draft; without an AI client the
// stored template is returned as-is.
func (h *Handlers) sendDraft(ctx context.Context, chatID int64, clientID string) {
	template, err := h.clients.FollowUpMessage(ctx, clientID, service.InteractionSMS)
	if err != nil {
		h.log.Error("failed to build follow-up message", sl.Err(err))
		h.sendMessage(chatID, "Impossible de préparer le message.")
		return
	}

	if h.ai == nil {
		h.sendMessage(chatID, "✍️ Proposition de relance :\n\n"+template)
		return
	}

	client, err := h.clients.Get(ctx, clientID)
	if err != nil {
		h.replyClientError(chatID, err)
		return
	}
	draft, err := h.ai.DraftFollowUp(ctx, client, template)
	if err != nil {
		h.log.Error("failed to draft follow-up", sl.Err(err))
		h.sendMessage(chatID, "✍️ Proposition de relance :\n\n"+template)
		return
	}
	h.sendMessage(chatID, "🤖 Proposition de relance :\n\n"+draft)
}
