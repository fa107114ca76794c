package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/apperr"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/genchat"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/models"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/store"
	pkglog "github.com/nipun-marak/Firebase-CRUD-with-NestJS/pkg/log"
)

const verseDateLayout = "2006-01-02"

var fallbackVerse = models.DailyVerse{
	Verse:     "For God so loved the world that he gave his one and only Son, that whoever believes in him shall not perish but have eternal life.",
	Reference: "John 3:16",
	Occasion:  "Daily encouragement",
}

// VerseService serves the verse of the day. One generation per date is cached
// in the document store and shared across users.
type VerseService struct {
	store     store.Store
	generator genchat.Generator
	logger    pkglog.Logger
	now       func() time.Time
}

func NewVerseService(st store.Store, generator genchat.Generator, logger pkglog.Logger) *VerseService {
	return &VerseService{store: st, generator: generator, logger: logger, now: time.Now}
}

func (s *VerseService) GetDailyVerse(ctx context.Context, date string) (*models.DailyVerse, error) {
	if date == "" {
		date = s.now().Format(verseDateLayout)
	}
	if _, err := time.Parse(verseDateLayout, date); err != nil {
		return nil, apperr.New(apperr.BadRequest, "Date must be formatted YYYY-MM-DD")
	}

	doc, err := s.store.Get(ctx, store.DailyVerseDoc(date))
	if err == nil {
		return &models.DailyVerse{
			Verse:     store.StringField(doc, "verse"),
			Reference: store.StringField(doc, "reference"),
			Occasion:  store.StringField(doc, "occasion"),
		}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch daily verse", err)
	}

	prompt := fmt.Sprintf(
		"Provide an encouraging Bible verse for %s. Consider any holiday or occasion falling on that date. "+
			"Respond with JSON only, shaped {\"verse\": \"...\", \"reference\": \"...\", \"occasion\": \"...\"}.",
		date,
	)
	raw, err := s.generator.GenerateOnce(ctx, prompt)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch daily verse", err)
	}

	verse := parseVerse(raw)
	if verse == nil {
		s.logger.Warn().Str("date", date).Msg("unparseable verse output, serving fallback")
		verse = &fallbackVerse
	}

	// Cache is best-effort; a write failure only costs a re-generation.
	cacheErr := s.store.Set(ctx, store.DailyVerseDoc(date), map[string]interface{}{
		"verse":     verse.Verse,
		"reference": verse.Reference,
		"occasion":  verse.Occasion,
		"createdAt": s.now(),
	})
	if cacheErr != nil {
		s.logger.Warn().Err(cacheErr).Str("date", date).Msg("failed to cache daily verse")
	}
	return verse, nil
}

// parseVerse extracts the JSON payload from the model output, tolerating
// markdown code fences around it.
func parseVerse(raw string) *models.DailyVerse {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return nil
	}

	var verse models.DailyVerse
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &verse); err != nil {
		return nil
	}
	if verse.Verse == "" || verse.Reference == "" {
		return nil
	}
	return &verse
}
