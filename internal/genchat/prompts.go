package genchat

import (
	"context"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/store"
	pkglog "github.com/nipun-marak/Firebase-CRUD-with-NestJS/pkg/log"
)

// PromptConfig is the system prompt and seed conversation prepended to every
// chat turn. It lives in a single document-store document so it can be tuned
// without redeploying.
type PromptConfig struct {
	SystemPrompt   string
	ExampleHistory []Turn
}

var defaultPromptConfig = PromptConfig{
	SystemPrompt: "",
	ExampleHistory: []Turn{
		{Role: "user", Text: "How are you?"},
		{Role: "model", Text: "I'm fine, thank you! How can I help you today?"},
	},
}

// PromptSource loads PromptConfig from the store. Load never fails: a missing
// document, a fetch error or a malformed field all degrade to the built-in
// defaults, because a broken config document must not take chat down.
type PromptSource struct {
	store  store.Store
	docID  string
	logger pkglog.Logger
}

func NewPromptSource(st store.Store, docID string, logger pkglog.Logger) *PromptSource {
	return &PromptSource{store: st, docID: docID, logger: logger}
}

func (p *PromptSource) Load(ctx context.Context) PromptConfig {
	doc, err := p.store.Get(ctx, store.PromptConfigDoc(p.docID))
	if err != nil {
		p.logger.Warn().Err(err).Msg("prompt config unavailable, using defaults")
		return defaultPromptConfig
	}

	cfg := defaultPromptConfig
	if s := store.StringField(doc, "systemPrompt"); s != "" {
		cfg.SystemPrompt = s
	} else if s := store.StringField(doc, "systemPromt"); s != "" {
		// Older config documents carry the misspelled field name.
		cfg.SystemPrompt = s
	}
	if turns := decodeTurns(doc.Data["exampleHistory"]); len(turns) > 0 {
		cfg.ExampleHistory = turns
	}
	return cfg
}

// decodeTurns reads the stored example history, shaped as
// [{role, parts: [{text}]}], tolerating any malformed entries.
func decodeTurns(raw interface{}) []Turn {
	entries, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	var turns []Turn
	for _, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		role, _ := m["role"].(string)
		if role != "user" && role != "model" {
			continue
		}
		parts, _ := m["parts"].([]interface{})
		text := ""
		for _, part := range parts {
			pm, ok := part.(map[string]interface{})
			if !ok {
				continue
			}
			if t, ok := pm["text"].(string); ok {
				text += t
			}
		}
		if text == "" {
			continue
		}
		turns = append(turns, Turn{Role: role, Text: text})
	}
	return turns
}
