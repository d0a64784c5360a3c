// Package ai drafts follow-up messages with an OpenAI-compatible model.
// The feature is optional; without an API key the app falls back to the
// stored templates untouched.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"bizbooster/internal/models"
)

type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

const systemPrompt = `Tu es l'assistant d'un artisan qui relance ses prospects.
À partir du modèle de message et des informations client fournis, rédige un
message de relance court, courtois et prêt à envoyer, en français.
Garde le ton du modèle, personnalise avec le nom du client et le produit,
et ne dépasse pas 500 caractères. Réponds uniquement avec le message.`

// DraftFollowUp produces a follow-up message for the client based on the
// stored template.
func (c *Client) DraftFollowUp(ctx context.Context, client *models.Client, template string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Modèle :\n%s\n\n", template)
	fmt.Fprintf(&b, "Client : %s\n", client.Name)
	if client.Product != "" {
		fmt.Fprintf(&b, "Produit : %s\n", client.Product)
	}
	if client.LastInteraction != nil {
		fmt.Fprintf(&b, "Dernière interaction : %s\n", client.LastInteraction.Format("02/01/2006"))
	}
	if client.Notes != "" {
		notes := client.Notes
		// Only the tail of long note streams is relevant context.
		if len(notes) > 600 {
			notes = notes[len(notes)-600:]
		}
		fmt.Fprintf(&b, "Notes :\n%s\n", notes)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: b.String()},
		},
	})
	if err != nil {
		return "", fmt.Errorf("draft follow-up: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("draft follow-up: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
