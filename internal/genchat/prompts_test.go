package genchat

import (
	"context"
	"testing"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/store"
	pkglog "github.com/nipun-marak/Firebase-CRUD-with-NestJS/pkg/log"
)

func TestLoadMissingDocumentUsesDefaults(t *testing.T) {
	src := NewPromptSource(store.NewMemStore(), "missing", pkglog.New("test"))

	cfg := src.Load(context.Background())
	if cfg.SystemPrompt != "" {
		t.Errorf("system prompt = %q, want empty default", cfg.SystemPrompt)
	}
	if len(cfg.ExampleHistory) != 2 || cfg.ExampleHistory[0].Role != "user" {
		t.Errorf("example history = %+v", cfg.ExampleHistory)
	}
}

func TestLoadReadsConfiguredDocument(t *testing.T) {
	st := store.NewMemStore()
	ctx := context.Background()
	if err := st.Set(ctx, store.PromptConfigDoc("cfg"), map[string]interface{}{
		"systemPrompt": "Be concise.",
		"exampleHistory": []interface{}{
			map[string]interface{}{"role": "user", "parts": []interface{}{map[string]interface{}{"text": "ping"}}},
			map[string]interface{}{"role": "model", "parts": []interface{}{map[string]interface{}{"text": "pong"}}},
		},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg := NewPromptSource(st, "cfg", pkglog.New("test")).Load(ctx)
	if cfg.SystemPrompt != "Be concise." {
		t.Errorf("system prompt = %q", cfg.SystemPrompt)
	}
	if len(cfg.ExampleHistory) != 2 || cfg.ExampleHistory[1].Text != "pong" {
		t.Errorf("example history = %+v", cfg.ExampleHistory)
	}
}

func TestLoadAcceptsLegacyMisspelledField(t *testing.T) {
	st := store.NewMemStore()
	ctx := context.Background()
	if err := st.Set(ctx, store.PromptConfigDoc("cfg"), map[string]interface{}{
		"systemPromt": "Old field name.",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg := NewPromptSource(st, "cfg", pkglog.New("test")).Load(ctx)
	if cfg.SystemPrompt != "Old field name." {
		t.Errorf("system prompt = %q, want legacy field value", cfg.SystemPrompt)
	}
}

func TestDecodeTurnsSkipsMalformedEntries(t *testing.T) {
	turns := decodeTurns([]interface{}{
		"not a map",
		map[string]interface{}{"role": "narrator", "parts": []interface{}{map[string]interface{}{"text": "x"}}},
		map[string]interface{}{"role": "user"},
		map[string]interface{}{"role": "user", "parts": []interface{}{
			map[string]interface{}{"text": "first "},
			map[string]interface{}{"text": "second"},
		}},
	})
	if len(turns) != 1 {
		t.Fatalf("turns = %+v, want exactly the well-formed entry", turns)
	}
	if turns[0].Text != "first second" {
		t.Errorf("text = %q, want concatenated parts", turns[0].Text)
	}

	if got := decodeTurns("garbage"); got != nil {
		t.Errorf("non-list input decoded to %+v", got)
	}
}
