package handlers

import (
	"context"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bizbooster/internal/ai"
	"bizbooster/internal/lib/sl"
	"bizbooster/internal/models"
	"bizbooster/internal/repository"
	"bizbooster/internal/service"
	"bizbooster/internal/transfer"
)

type Handlers struct {
	api      *tgbotapi.BotAPI
	clients  *service.ClientService
	settings *repository.SettingsRepository
	// store is the raw client storage the CSV import writes through; unlike
	// creation via /ajouter it does not pass the trial gate.
	store transfer.Store
	ai    *ai.Client
	log   *slog.Logger
}

func New(
	api *tgbotapi.BotAPI,
	clients *service.ClientService,
	settings *repository.SettingsRepository,
	store transfer.Store,
	aiClient *ai.Client,
	log *slog.Logger,
) *Handlers {
	return &Handlers{
		api:      api,
		clients:  clients,
		settings: settings,
		store:    store,
		ai:       aiClient,
		log:      log,
	}
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "aide":
		h.handleHelp(msg)
	case "ajouter":
		h.handleAdd(ctx, msg)
	case "clients":
		h.handleList(ctx, msg)
	case "chercher":
		h.handleSearch(ctx, msg)
	case "alerte":
		h.handleOverdue(ctx, msg)
	case "fiche":
		h.handleDetail(ctx, msg)
	case "note":
		h.handleNote(ctx, msg)
	case "tag":
		h.handleTag(ctx, msg)
	case "untag":
		h.handleUntag(ctx, msg)
	case "statut":
		h.handleStatus(ctx, msg)
	case "rappel":
		h.handleReminder(ctx, msg)
	case "stats":
		h.handleStats(ctx, msg)
	case "export":
		h.handleExport(ctx, msg)
	case "seuil":
		h.handleThreshold(ctx, msg)
	case "prefixe":
		h.handlePrefix(ctx, msg)
	case "affichage":
		h.handleDisplay(ctx, msg)
	case "modelesms":
		h.handleSMSTemplate(ctx, msg)
	case "modelemail":
		h.handleEmailTemplate(ctx, msg)
	default:
		h.sendMessage(msg.Chat.ID, "Commande inconnue. Utilisez /aide pour la liste des commandes.")
	}
}

func (h *Handlers) handleHelp(msg *tgbotapi.Message) {
	help := `📒 BizBooster — suivi de vos clients

/ajouter Nom ; Téléphone ; Email ; Produit — nouvelle fiche
/clients [en_cours|valides|annules] — liste des clients
/chercher <texte> — recherche nom, téléphone, email, produit
/alerte — clients à relancer
/fiche <id> — détails d'une fiche
/note <id> <texte> — ajouter une note
/tag <id> <tag> — ajouter un tag
/untag <id> <tag> — retirer un tag
/statut <id> <en_cours|valide|annule> [montant] — changer le statut
/rappel <id> <JJ/MM/AAAA HH:MM> — programmer un rappel
/rappel <id> off — supprimer le rappel
/stats — statistiques
/export — export CSV (import : envoyez un fichier .csv)
/seuil <jours> — seuil d'alerte de relance (1 à 30)
/prefixe <+33> — préfixe téléphonique par défaut
/affichage <tri|produit> — options de la liste de clients
/modelesms, /modelemail <texte> — modèles de message`
	h.sendMessage(msg.Chat.ID, help)
}

// resolveClient accepts a full client id or its displayed 8-character
// prefix.
func (h *Handlers) resolveClient(ctx context.Context, ref string) (*models.Client, error) {
	ref = strings.TrimSpace(ref)
	if client, err := h.clients.Get(ctx, ref); err == nil {
		return client, nil
	}

	clients, err := h.clients.List(ctx, models.ListFilter{})
	if err != nil {
		return nil, err
	}
	for _, client := range clients {
		if strings.HasPrefix(client.ID, ref) {
			return client, nil
		}
	}
	return nil, models.ErrNotFound
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.api.Send(msg); err != nil {
		h.log.Error("failed to send message", sl.Err(err))
	}
}

func (h *Handlers) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := h.api.Send(msg); err != nil {
		h.log.Error("failed to send message", sl.Err(err))
	}
}

// parseStatus maps the French command tokens onto lifecycle states.
func parseStatus(token string) (models.Status, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "en_cours", "encours":
		return models.StatusInProgress, true
	case "valide", "validé", "valides", "validés":
		return models.StatusValidated, true
	case "annule", "annulé", "annules", "annulés":
		return models.StatusCancelled, true
	}
	return "", false
}
