// Package genchat holds the generative-chat collaborator: a Generator
// abstraction over the language-model API plus the prompt configuration
// loaded from the document store.
package genchat

import "context"

// Turn is one seed turn of prompt history. Role follows the model API's
// convention: "user" or "model".
type Turn struct {
	Role string
	Text string
}

type Generator interface {
	// Generate sends prompt on a chat session seeded with history and
	// returns the model's reply text.
	Generate(ctx context.Context, prompt string, history []Turn) (string, error)
	// GenerateOnce is a single-shot completion without seed history.
	GenerateOnce(ctx context.Context, prompt string) (string, error)
}
