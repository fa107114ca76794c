package genchat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	pkglog "github.com/nipun-marak/Firebase-CRUD-with-NestJS/pkg/log"
)

const DefaultModelName = "gemini-2.0-pro-exp-02-05"

// Gemini implements Generator on the Google generative-language API.
type Gemini struct {
	client *genai.Client
	model  string
	logger pkglog.Logger
}

func NewGemini(client *genai.Client, model string, logger pkglog.Logger) *Gemini {
	if model == "" {
		model = DefaultModelName
	}
	return &Gemini{client: client, model: model, logger: logger}
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) generativeModel() *genai.GenerativeModel {
	model := g.client.GenerativeModel(g.model)

	temp := float32(0.7)
	topP := float32(0.8)
	topK := int32(40)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: &temp,
		TopP:        &topP,
		TopK:        &topK,
	}
	return model
}

func (g *Gemini) Generate(ctx context.Context, prompt string, history []Turn) (string, error) {
	model := g.generativeModel()

	session := model.StartChat()
	for _, turn := range history {
		session.History = append(session.History, &genai.Content{
			Role:  turn.Role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini SendMessage failed: %w", err)
	}
	return responseText(resp)
}

func (g *Gemini) GenerateOnce(ctx context.Context, prompt string) (string, error) {
	resp, err := g.generativeModel().GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini GenerateContent failed: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini returned a non-text response")
	}
	return text.String(), nil
}
