// Package format renders the French user-facing texts: notification
// contents, client cards and list lines.
package format

import (
	"fmt"
	"strings"

	"bizbooster/internal/models"
)

// ReminderTitle and ReminderBody build the per-client reminder notification.
func ReminderTitle(client *models.Client) string {
	name := client.Name
	if name == "" {
		name = "Client"
	}
	return "Rappel - " + name
}

func ReminderBody(client *models.Client) string {
	product := client.Product
	if product == "" {
		product = "non spécifié"
	}
	return fmt.Sprintf("N'oubliez pas de vérifier les détails du produit %s.", product)
}

// DailyAlertTitle and DailyAlertBody build the aggregate follow-up alert.
func DailyAlertTitle() string {
	return "Clients en alerte"
}

func DailyAlertBody(count int) string {
	return fmt.Sprintf("Vous avez %d client(s) à suivre aujourd'hui.", count)
}

// ApplyTemplate substitutes the client name placeholder used by the stored
// SMS and email templates.
func ApplyTemplate(template string, client *models.Client) string {
	name := client.Name
	if name == "" {
		name = "Client"
	}
	return strings.ReplaceAll(template, "[Nom du Client]", name)
}

// StatusLabel renders a status for display.
func StatusLabel(status models.Status) string {
	switch status {
	case models.StatusValidated:
		return "Validé"
	case models.StatusCancelled:
		return "Annulé"
	default:
		return "En cours"
	}
}

// ClientLine is the one-line list entry: short id, name, phone, status.
func ClientLine(client *models.Client) string {
	line := fmt.Sprintf("• [%s] %s", ShortID(client.ID), orDash(client.Name))
	if client.Phone != "" {
		line += " — " + client.Phone
	}
	line += " (" + StatusLabel(client.Status) + ")"
	return line
}

// ClientCard is the detail view of a record.
func ClientCard(client *models.Client, history []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s\n", orDash(client.Name))
	fmt.Fprintf(&b, "📞 %s\n", orDash(client.Phone))
	fmt.Fprintf(&b, "✉️ %s\n", orDash(client.Email))
	fmt.Fprintf(&b, "📦 Produit : %s\n", orDash(client.Product))
	fmt.Fprintf(&b, "📊 Statut : %s\n", StatusLabel(client.Status))

	if client.FirstQuoteDate != nil {
		fmt.Fprintf(&b, "Client ajouté le %s\n", models.FormatTimestamp(*client.FirstQuoteDate))
	}
	if client.Status == models.StatusValidated {
		if client.ValidationDate != nil {
			fmt.Fprintf(&b, "Validé le %s\n", models.FormatTimestamp(*client.ValidationDate))
		}
		if client.ValidatedAmount > 0 {
			fmt.Fprintf(&b, "Montant HT : %.2f €\n", client.ValidatedAmount)
		}
	}
	if client.LastInteraction != nil {
		fmt.Fprintf(&b, "Dernière interaction : %s\n", models.FormatTimestamp(*client.LastInteraction))
	}
	if client.ReminderDate != nil {
		fmt.Fprintf(&b, "⏰ Rappel : %s\n", models.FormatTimestamp(*client.ReminderDate))
	}
	if len(client.Tags) > 0 {
		fmt.Fprintf(&b, "🏷 %s\n", strings.Join(client.Tags, ", "))
	}
	if client.Notes != "" {
		b.WriteString("\n📝 Notes :\n" + client.Notes + "\n")
	}
	if len(history) > 0 {
		b.WriteString("\n🕓 Historique :\n")
		// Most recent first; storage keeps insertion order.
		for i := len(history) - 1; i >= 0; i-- {
			b.WriteString("  " + history[i] + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ClientList renders a titled list of one-line entries.
func ClientList(title string, clients []*models.Client) string {
	if len(clients) == 0 {
		return title + "\n\nAucun client."
	}
	var b strings.Builder
	b.WriteString(title + "\n\n")
	for _, client := range clients {
		b.WriteString(ClientLine(client) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Stats renders the statistics summary.
func Stats(counts map[models.Status]int, avgDecisionDays float64) string {
	var b strings.Builder
	b.WriteString("📈 Statistiques\n\n")
	fmt.Fprintf(&b, "En cours : %d\n", counts[models.StatusInProgress])
	fmt.Fprintf(&b, "Validés : %d\n", counts[models.StatusValidated])
	fmt.Fprintf(&b, "Annulés : %d\n", counts[models.StatusCancelled])
	fmt.Fprintf(&b, "Temps de décision moyen : %.1f jour(s)", avgDecisionDays)
	return b.String()
}

// TrialLimitMessage is shown when a create is rejected by the gate.
func TrialLimitMessage(limit int) string {
	return fmt.Sprintf("Vous avez atteint la limite de %d clients pour la version d'essai.", limit)
}

// ShortID is the displayed prefix of a client id.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
