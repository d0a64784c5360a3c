package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bizbooster/internal/format"
	"bizbooster/internal/lib/sl"
	"bizbooster/internal/models"
	"bizbooster/internal/service"
)

const reminderLayout = "02/01/2006 15:04"

// handleAdd creates a client from semicolon-separated fields:
// /ajouter Nom ; Téléphone ; Email ; Produit
func (h *Handlers) handleAdd(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		h.sendMessage(msg.Chat.ID, "Usage : /ajouter Nom ; Téléphone ; Email ; Produit")
		return
	}

	fields := strings.Split(args, ";")
	in := service.CreateInput{Name: strings.TrimSpace(fields[0])}
	if len(fields) > 1 {
		in.Phone = strings.TrimSpace(fields[1])
	}
	if len(fields) > 2 {
		in.Email = strings.TrimSpace(fields[2])
	}
	if len(fields) > 3 {
		in.Product = strings.TrimSpace(fields[3])
	}
	if in.Name == "" {
		h.sendMessage(msg.Chat.ID, "Le nom est obligatoire.")
		return
	}

	client, err := h.clients.Create(ctx, in)
	switch {
	case errors.Is(err, models.ErrLimitReached):
		h.sendMessage(msg.Chat.ID, format.TrialLimitMessage(models.TrialClientLimit))
		return
	case errors.Is(err, models.ErrInvalidEmail):
		h.sendMessage(msg.Chat.ID, "Adresse email invalide.")
		return
	case err != nil:
		h.log.Error("failed to create client", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de créer la fiche.")
		return
	}

	h.sendMessage(msg.Chat.ID,
		"✅ Fiche créée : "+client.Name+" ["+format.ShortID(client.ID)+"]")
}

func (h *Handlers) handleList(ctx context.Context, msg *tgbotapi.Message) {
	settings, err := h.settings.GetOrCreate(ctx)
	if err != nil {
		h.log.Error("failed to load settings", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de lire les réglages.")
		return
	}

	filter := models.ListFilter{Sort: models.SortLastInteractionRecent}
	title := "📋 Clients"

	for _, token := range strings.Fields(msg.CommandArguments()) {
		if status, ok := parseStatus(token); ok {
			filter.Status = &status
			title = "📋 Clients — " + format.StatusLabel(status)
			continue
		}
		if product, ok := strings.CutPrefix(token, "produit:"); ok && settings.ShowProductFilter {
			filter.Product = product
			continue
		}
		if sort, ok := parseSort(token); ok && settings.ShowSorting {
			filter.Sort = sort
			continue
		}
		h.sendMessage(msg.Chat.ID, "Filtre inconnu : "+token)
		return
	}

	clients, err := h.clients.List(ctx, filter)
	if err != nil {
		h.log.Error("failed to list clients", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de lister les clients.")
		return
	}
	h.sendMessage(msg.Chat.ID, format.ClientList(title, clients))
}

// handleSearch free-text searches name, phone, email and product.
func (h *Handlers) handleSearch(ctx context.Context, msg *tgbotapi.Message) {
	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		h.sendMessage(msg.Chat.ID, "Usage : /chercher <texte>")
		return
	}

	clients, err := h.clients.List(ctx, models.ListFilter{
		Search: query,
		Sort:   models.SortLastInteractionRecent,
	})
	if err != nil {
		h.log.Error("failed to search clients", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de chercher.")
		return
	}
	h.sendMessage(msg.Chat.ID, format.ClientList("🔍 Résultats pour « "+query+" »", clients))
}

func (h *Handlers) handleOverdue(ctx context.Context, msg *tgbotapi.Message) {
	clients, err := h.clients.Overdue(ctx)
	if err != nil {
		h.log.Error("failed to compute overdue clients", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de calculer les alertes.")
		return
	}
	h.sendMessage(msg.Chat.ID, format.ClientList("🔔 Clients à relancer", clients))
}

func (h *Handlers) handleDetail(ctx context.Context, msg *tgbotapi.Message) {
	ref := strings.TrimSpace(msg.CommandArguments())
	if ref == "" {
		h.sendMessage(msg.Chat.ID, "Usage : /fiche <id>")
		return
	}
	client, err := h.resolveClient(ctx, ref)
	if err != nil {
		h.replyClientError(msg.Chat.ID, err)
		return
	}
	h.sendClientCard(ctx, msg.Chat.ID, client)
}

// sendClientCard renders the detail view with the interaction buttons.
func (h *Handlers) sendClientCard(ctx context.Context, chatID int64, client *models.Client) {
	history, err := h.clients.History(ctx, client.ID)
	if err != nil {
		h.log.Error("failed to load history",
			sl.Err(err))
		history = nil
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📞 Appel", "call:"+client.ID),
			tgbotapi.NewInlineKeyboardButtonData("💬 SMS", "sms:"+client.ID),
			tgbotapi.NewInlineKeyboardButtonData("✉️ Email", "email:"+client.ID),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🤖 Rédiger la relance", "draft:"+client.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Supprimer", "delete:"+client.ID),
		),
	)
	h.sendWithKeyboard(chatID, format.ClientCard(client, history), keyboard)
}

func (h *Handlers) handleNote(ctx context.Context, msg *tgbotapi.Message) {
	ref, rest := splitArg(msg.CommandArguments())
	if ref == "" || rest == "" {
		h.sendMessage(msg.Chat.ID, "Usage : /note <id> <texte>")
		return
	}
	client, err := h.resolveClient(ctx, ref)
	if err != nil {
		h.replyClientError(msg.Chat.ID, err)
		return
	}
	if _, err := h.clients.AddNote(ctx, client.ID, rest); err != nil {
		h.log.Error("failed to add note", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible d'ajouter la note.")
		return
	}
	h.sendMessage(msg.Chat.ID, "📝 Note ajoutée pour "+client.Name+".")
}

func (h *Handlers) handleTag(ctx context.Context, msg *tgbotapi.Message) {
	ref, tag := splitArg(msg.CommandArguments())
	if ref == "" || tag == "" {
		h.sendMessage(msg.Chat.ID, "Usage : /tag <id> <tag>")
		return
	}
	client, err := h.resolveClient(ctx, ref)
	if err != nil {
		h.replyClientError(msg.Chat.ID, err)
		return
	}
	if _, err := h.clients.AddTag(ctx, client.ID, tag); err != nil {
		h.log.Error("failed to add tag", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible d'ajouter le tag.")
		return
	}
	h.sendMessage(msg.Chat.ID, "🏷 Tag « "+tag+" » ajouté pour "+client.Name+".")
}

func (h *Handlers) handleUntag(ctx context.Context, msg *tgbotapi.Message) {
	ref, tag := splitArg(msg.CommandArguments())
	if ref == "" || tag == "" {
		h.sendMessage(msg.Chat.ID, "Usage : /untag <id> <tag>")
		return
	}
	client, err := h.resolveClient(ctx, ref)
	if err != nil {
		h.replyClientError(msg.Chat.ID, err)
		return
	}
	if _, err := h.clients.RemoveTag(ctx, client.ID, tag); err != nil {
		h.log.Error("failed to remove tag", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de retirer le tag.")
		return
	}
	h.sendMessage(msg.Chat.ID, "🏷 Tag « "+tag+" » retiré pour "+client.Name+".")
}

// handleStatus moves a client to a new lifecycle state. A trailing amount is
// the validated quote total: /statut <id> valide 1500.50
func (h *Handlers) handleStatus(ctx context.Context, msg *tgbotapi.Message) {
	ref, rest := splitArg(msg.CommandArguments())
	if ref == "" || rest == "" {
		h.sendMessage(msg.Chat.ID, "Usage : /statut <id> <en_cours|valide|annule> [montant]")
		return
	}

	statusToken, amountToken := splitArg(rest)
	status, ok := parseStatus(statusToken)
	if !ok {
		h.sendMessage(msg.Chat.ID, "Statut inconnu. Utilisez en_cours, valide ou annule.")
		return
	}

	client, err := h.resolveClient(ctx, ref)
	if err != nil {
		h.replyClientError(msg.Chat.ID, err)
		return
	}

	var info *service.ValidationInfo
	if status == models.StatusValidated && amountToken != "" {
		amount, err := strconv.ParseFloat(strings.ReplaceAll(amountToken, ",", "."), 64)
		if err != nil {
			h.sendMessage(msg.Chat.ID, "Montant invalide.")
			return
		}
		info = &service.ValidationInfo{ValidatedAmount: amount}
	}

	if _, err := h.clients.SetStatus(ctx, client.ID, status, info); err != nil {
		h.log.Error("failed to set status", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de changer le statut.")
		return
	}
	h.sendMessage(msg.Chat.ID,
		"📊 "+client.Name+" est maintenant « "+format.StatusLabel(status)+" ».")
}

// handleReminder sets or clears the reminder:
// /rappel <id> 25/12/2026 09:00 — or — /rappel <id> off
func (h *Handlers) handleReminder(ctx context.Context, msg *tgbotapi.Message) {
	ref, rest := splitArg(msg.CommandArguments())
	if ref == "" || rest == "" {
		h.sendMessage(msg.Chat.ID, "Usage : /rappel <id> <JJ/MM/AAAA HH:MM> ou /rappel <id> off")
		return
	}

	client, err := h.resolveClient(ctx, ref)
	if err != nil {
		h.replyClientError(msg.Chat.ID, err)
		return
	}

	if strings.EqualFold(rest, "off") {
		if _, err := h.clients.SetReminder(ctx, client.ID, nil); err != nil {
			h.log.Error("failed to clear reminder", sl.Err(err))
			h.sendMessage(msg.Chat.ID, "Impossible de supprimer le rappel.")
			return
		}
		h.sendMessage(msg.Chat.ID, "⏰ Rappel supprimé pour "+client.Name+".")
		return
	}

	when, err := time.ParseInLocation(reminderLayout, rest, time.Local)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Date invalide. Format attendu : JJ/MM/AAAA HH:MM")
		return
	}
	if _, err := h.clients.SetReminder(ctx, client.ID, &when); err != nil {
		h.log.Error("failed to set reminder", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de programmer le rappel.")
		return
	}
	h.sendMessage(msg.Chat.ID,
		"⏰ Rappel programmé pour "+client.Name+" le "+models.FormatTimestamp(when)+".")
}

func (h *Handlers) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	stats, err := h.clients.Stats(ctx)
	if err != nil {
		h.log.Error("failed to compute stats", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de calculer les statistiques.")
		return
	}
	h.sendMessage(msg.Chat.ID, format.Stats(stats.CountsByStatus, stats.AvgDecisionDays))
}

func (h *Handlers) replyClientError(chatID int64, err error) {
	if errors.Is(err, models.ErrNotFound) {
		h.sendMessage(chatID, "Client introuvable.")
		return
	}
	h.log.Error("failed to resolve client", sl.Err(err))
	h.sendMessage(chatID, "Une erreur est survenue.")
}

// parseSort maps the /clients sort tokens onto sort options.
func parseSort(token string) (models.SortOption, bool) {
	switch strings.ToLower(token) {
	case "recent", "récent":
		return models.SortLastInteractionRecent, true
	case "ancien":
		return models.SortLastInteractionOldest, true
	case "nom":
		return models.SortNameAscending, true
	case "rappel":
		return models.SortReminderDateRecent, true
	}
	return "", false
}

// splitArg cuts the first whitespace-separated token off an argument string.
func splitArg(args string) (first, rest string) {
	args = strings.TrimSpace(args)
	first, rest, _ = strings.Cut(args, " ")
	return strings.TrimSpace(first), strings.TrimSpace(rest)
}
