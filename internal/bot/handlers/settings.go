package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bizbooster/internal/lib/sl"
	"bizbooster/internal/models"
)

// handleThreshold updates the follow-up alert threshold. Out-of-range values
// are clamped to [1, 30] by the settings layer; without an argument the
// current value is shown.
func (h *Handlers) handleThreshold(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		settings, err := h.settings.GetOrCreate(ctx)
		if err != nil {
			h.log.Error("failed to load settings", sl.Err(err))
			h.sendMessage(msg.Chat.ID, "Impossible de lire les réglages.")
			return
		}
		h.sendMessage(msg.Chat.ID,
			fmt.Sprintf("Seuil d'alerte actuel : %d jour(s).", settings.AlertThresholdDays))
		return
	}

	days, err := strconv.Atoi(arg)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Usage : /seuil <jours> (entre 1 et 30)")
		return
	}
	if err := h.clients.SetAlertThreshold(ctx, days); err != nil {
		h.log.Error("failed to set alert threshold", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de modifier le seuil.")
		return
	}
	h.sendMessage(msg.Chat.ID,
		fmt.Sprintf("Seuil d'alerte fixé à %d jour(s).", models.ClampThreshold(days)))
}

// handleDisplay flips the list display toggles: /affichage tri enables the
// sort tokens of /clients, /affichage produit the produit: filter.
func (h *Handlers) handleDisplay(ctx context.Context, msg *tgbotapi.Message) {
	settings, err := h.settings.GetOrCreate(ctx)
	if err != nil {
		h.log.Error("failed to load settings", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de lire les réglages.")
		return
	}

	switch strings.ToLower(strings.TrimSpace(msg.CommandArguments())) {
	case "":
		h.sendMessage(msg.Chat.ID, fmt.Sprintf(
			"Options d'affichage :\ntri : %s\nfiltre produit : %s\n\nUsage : /affichage <tri|produit>",
			onOff(settings.ShowSorting), onOff(settings.ShowProductFilter)))
	case "tri":
		if err := h.settings.SetShowSorting(ctx, !settings.ShowSorting); err != nil {
			h.log.Error("failed to toggle sorting", sl.Err(err))
			h.sendMessage(msg.Chat.ID, "Impossible de modifier l'affichage.")
			return
		}
		h.sendMessage(msg.Chat.ID, "Tri de la liste : "+onOff(!settings.ShowSorting))
	case "produit":
		if err := h.settings.SetShowProductFilter(ctx, !settings.ShowProductFilter); err != nil {
			h.log.Error("failed to toggle product filter", sl.Err(err))
			h.sendMessage(msg.Chat.ID, "Impossible de modifier l'affichage.")
			return
		}
		h.sendMessage(msg.Chat.ID, "Filtre produit : "+onOff(!settings.ShowProductFilter))
	default:
		h.sendMessage(msg.Chat.ID, "Usage : /affichage <tri|produit>")
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "activé"
	}
	return "désactivé"
}

func (h *Handlers) handlePrefix(ctx context.Context, msg *tgbotapi.Message) {
	prefix := strings.TrimSpace(msg.CommandArguments())
	if prefix == "" {
		h.sendMessage(msg.Chat.ID, "Usage : /prefixe <+33>")
		return
	}
	if !strings.HasPrefix(prefix, "+") {
		h.sendMessage(msg.Chat.ID, "Le préfixe doit commencer par « + », par exemple +33.")
		return
	}
	if err := h.settings.SetDefaultPhonePrefix(ctx, prefix); err != nil {
		h.log.Error("failed to set phone prefix", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de modifier le préfixe.")
		return
	}
	h.sendMessage(msg.Chat.ID, "Préfixe téléphonique par défaut : "+prefix)
}

func (h *Handlers) handleSMSTemplate(ctx context.Context, msg *tgbotapi.Message) {
	template := strings.TrimSpace(msg.CommandArguments())
	if template == "" {
		settings, err := h.settings.GetOrCreate(ctx)
		if err != nil {
			h.log.Error("failed to load settings", sl.Err(err))
			h.sendMessage(msg.Chat.ID, "Impossible de lire les réglages.")
			return
		}
		h.sendMessage(msg.Chat.ID, "Modèle SMS actuel :\n\n"+settings.SMSTemplate)
		return
	}
	if err := h.settings.SetSMSTemplate(ctx, template); err != nil {
		h.log.Error("failed to set sms template", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de modifier le modèle.")
		return
	}
	h.sendMessage(msg.Chat.ID, "Modèle SMS enregistré. Utilisez [Nom du Client] comme variable.")
}

func (h *Handlers) handleEmailTemplate(ctx context.Context, msg *tgbotapi.Message) {
	template := strings.TrimSpace(msg.CommandArguments())
	if template == "" {
		settings, err := h.settings.GetOrCreate(ctx)
		if err != nil {
			h.log.Error("failed to load settings", sl.Err(err))
			h.sendMessage(msg.Chat.ID, "Impossible de lire les réglages.")
			return
		}
		h.sendMessage(msg.Chat.ID, "Modèle email actuel :\n\n"+settings.EmailTemplate)
		return
	}
	if err := h.settings.SetEmailTemplate(ctx, template); err != nil {
		h.log.Error("failed to set email template", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de modifier le modèle.")
		return
	}
	h.sendMessage(msg.Chat.ID, "Modèle email enregistré. Utilisez [Nom du Client] comme variable.")
}
