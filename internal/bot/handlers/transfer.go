package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bizbooster/internal/lib/sl"
	"bizbooster/internal/transfer"
)

// handleExport sends the whole client base as a CSV document.
func (h *Handlers) handleExport(ctx context.Context, msg *tgbotapi.Message) {
	var buf bytes.Buffer
	if err := transfer.Export(ctx, h.store, &buf); err != nil {
		h.log.Error("failed to export clients", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible d'exporter les clients.")
		return
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  "clients.csv",
		Bytes: buf.Bytes(),
	})
	doc.Caption = "Export des clients"
	if _, err := h.api.Send(doc); err != nil {
		h.log.Error("failed to send export", sl.Err(err))
	}
}

// HandleDocument imports clients from an uploaded CSV file. Rows whose phone
// already exists are skipped.
func (h *Handlers) HandleDocument(ctx context.Context, msg *tgbotapi.Message) {
	doc := msg.Document
	if !strings.HasSuffix(strings.ToLower(doc.FileName), ".csv") {
		h.sendMessage(msg.Chat.ID, "Envoyez un fichier .csv pour importer des clients.")
		return
	}

	url, err := h.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		h.log.Error("failed to resolve file url", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de récupérer le fichier.")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		h.log.Error("failed to build download request", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de récupérer le fichier.")
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		h.log.Error("failed to download file", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Impossible de télécharger le fichier.")
		return
	}
	defer resp.Body.Close()

	result, err := transfer.Import(ctx, h.store, resp.Body, time.Now)
	if err != nil {
		h.log.Error("failed to import clients", sl.Err(err))
		h.sendMessage(msg.Chat.ID, "Import impossible : "+err.Error())
		return
	}

	h.sendMessage(msg.Chat.ID, fmt.Sprintf(
		"📥 Import terminé : %d client(s) créé(s), %d ligne(s) ignorée(s).",
		result.Created, result.Skipped))
}
