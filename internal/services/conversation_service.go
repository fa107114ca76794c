package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/apperr"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/genchat"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/models"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/store"
	pkglog "github.com/nipun-marak/Firebase-CRUD-with-NestJS/pkg/log"
)

const (
	// Conversation ids embed at most this many words of the opening message.
	maxIDWords = 100
	maxIDLen   = 64
	maxTitle   = 100
)

// ConversationService owns the nested conversation/message schema under
// users/{uid}/chat-history and the policy for picking the conversation an
// incoming message lands in. Messages are append-only and ordered by
// timestamp; the store itself guarantees no ordering.
type ConversationService struct {
	store     store.Store
	generator genchat.Generator
	prompts   *genchat.PromptSource
	logger    pkglog.Logger
	now       func() time.Time
}

func NewConversationService(st store.Store, generator genchat.Generator, prompts *genchat.PromptSource, logger pkglog.Logger) *ConversationService {
	return &ConversationService{
		store:     st,
		generator: generator,
		prompts:   prompts,
		logger:    logger,
		now:       time.Now,
	}
}

// PostMessage appends the user's message to the right conversation, asks the
// model for a reply, appends that too, and returns the full conversation.
// The two appends are not transactional: a generation or storage failure
// after the first append leaves a dangling user-only turn, which is accepted.
func (s *ConversationService) PostMessage(ctx context.Context, uid string, req *models.ChatRequest) (*models.ChatResponse, error) {
	chatID, err := s.resolveConversation(ctx, uid, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	userMsg := map[string]interface{}{
		"role":      string(models.RoleUser),
		"content":   req.Message,
		"timestamp": now,
	}
	if _, err := s.store.Add(ctx, store.Messages(uid, chatID), userMsg); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to process chat message", err)
	}

	reply, err := s.generateReply(ctx, req.Message)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to process chat message", err)
	}

	assistantMsg := map[string]interface{}{
		"role":      string(models.RoleAssistant),
		"content":   reply,
		"timestamp": s.now(),
	}
	if _, err := s.store.Add(ctx, store.Messages(uid, chatID), assistantMsg); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to process chat message", err)
	}

	messages, err := s.messagesAscending(ctx, uid, chatID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to process chat message", err)
	}
	return &models.ChatResponse{Messages: messages, ChatID: chatID}, nil
}

// resolveConversation picks or creates the conversation bucket for a message:
// an explicit new chat derives its id from the opening text, an explicit
// chatId is used as-is, and otherwise the most recently updated conversation
// wins (or a fresh timestamp-only one when the user has none).
func (s *ConversationService) resolveConversation(ctx context.Context, uid string, req *models.ChatRequest) (string, error) {
	now := s.now()

	if req.IsNewChat {
		chatID := newConversationID(req.Message, now)
		if err := s.createConversation(ctx, uid, chatID, req.Message, now); err != nil {
			return "", err
		}
		return chatID, nil
	}

	if req.ChatID != "" {
		err := s.store.Update(ctx, store.ConversationDoc(uid, req.ChatID), map[string]interface{}{
			"updatedAt": now,
		})
		if errors.Is(err, store.ErrNotFound) {
			// Client-supplied id for a conversation that never got its
			// record; materialize it instead of dropping the message.
			err = s.createConversation(ctx, uid, req.ChatID, req.Message, now)
		}
		if err != nil {
			return "", apperr.Wrap(apperr.Internal, "Failed to process chat message", err)
		}
		return req.ChatID, nil
	}

	latest, err := s.latestConversationID(ctx, uid)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "Failed to process chat message", err)
	}
	if latest != "" {
		if err := s.store.Update(ctx, store.ConversationDoc(uid, latest), map[string]interface{}{
			"updatedAt": now,
		}); err != nil {
			return "", apperr.Wrap(apperr.Internal, "Failed to process chat message", err)
		}
		return latest, nil
	}

	chatID := fmt.Sprintf("chat-%d", now.UnixMilli())
	if err := s.createConversation(ctx, uid, chatID, req.Message, now); err != nil {
		return "", err
	}
	return chatID, nil
}

func (s *ConversationService) createConversation(ctx context.Context, uid, chatID, message string, now time.Time) error {
	data := map[string]interface{}{
		"title":     conversationTitle(message),
		"createdAt": now,
		"updatedAt": now,
	}
	if err := s.store.Set(ctx, store.ConversationDoc(uid, chatID), data); err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to process chat message", err)
	}
	return nil
}

func (s *ConversationService) latestConversationID(ctx context.Context, uid string) (string, error) {
	docs, err := s.store.Documents(ctx, store.ChatHistory(uid))
	if err != nil {
		return "", err
	}
	latest := ""
	var latestAt time.Time
	for i := range docs {
		updatedAt := store.TimeField(&docs[i], "updatedAt")
		if latest == "" || updatedAt.After(latestAt) {
			latest = docs[i].ID
			latestAt = updatedAt
		}
	}
	return latest, nil
}

func (s *ConversationService) generateReply(ctx context.Context, message string) (string, error) {
	cfg := s.prompts.Load(ctx)
	prompt := fmt.Sprintf("%s\n\nPlease provide a response to the following message: %s", cfg.SystemPrompt, message)
	return s.generator.Generate(ctx, prompt, cfg.ExampleHistory)
}

// GetHistory returns the conversation's messages sorted ascending by
// timestamp, oldest first.
func (s *ConversationService) GetHistory(ctx context.Context, uid, chatID string) ([]models.ChatMessage, error) {
	if _, err := s.store.Get(ctx, store.ConversationDoc(uid, chatID)); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidPath) {
			return nil, apperr.New(apperr.NotFound, "Conversation not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch chat history", err)
	}

	messages, err := s.messagesAscending(ctx, uid, chatID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch chat history", err)
	}
	return messages, nil
}

// ListConversations returns the user's conversations, newest update first,
// each enriched with its message count. Conversations that never recorded an
// updatedAt sort as oldest.
func (s *ConversationService) ListConversations(ctx context.Context, uid string) ([]models.ConversationSummary, error) {
	docs, err := s.store.Documents(ctx, store.ChatHistory(uid))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch conversations", err)
	}

	summaries := make([]models.ConversationSummary, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range docs {
		i := i
		summaries[i] = models.ConversationSummary{
			Conversation: models.Conversation{
				ID:        docs[i].ID,
				Title:     store.StringField(&docs[i], "title"),
				CreatedAt: store.TimeField(&docs[i], "createdAt"),
				UpdatedAt: store.TimeField(&docs[i], "updatedAt"),
			},
		}
		// One count sub-query per conversation, fanned out concurrently.
		g.Go(func() error {
			msgs, err := s.store.Documents(gctx, store.Messages(uid, summaries[i].ID))
			if err != nil {
				return err
			}
			summaries[i].MessageCount = len(msgs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch conversations", err)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// GetAllHistory returns every conversation plus the union of all messages,
// each tagged with its conversation id and title. The merged messages sort
// descending by timestamp, deliberately the opposite of per-conversation
// retrieval.
func (s *ConversationService) GetAllHistory(ctx context.Context, uid string) (*models.AllHistoryResponse, error) {
	conversations, err := s.ListConversations(ctx, uid)
	if err != nil {
		return nil, err
	}

	tagged := make([][]models.TaggedMessage, len(conversations))
	g, gctx := errgroup.WithContext(ctx)
	for i := range conversations {
		i := i
		g.Go(func() error {
			messages, err := s.messagesAscending(gctx, uid, conversations[i].ID)
			if err != nil {
				return err
			}
			out := make([]models.TaggedMessage, len(messages))
			for j, m := range messages {
				out[j] = models.TaggedMessage{
					ChatMessage: m,
					ChatID:      conversations[i].ID,
					Title:       conversations[i].Title,
				}
			}
			tagged[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch chat history", err)
	}

	var merged []models.TaggedMessage
	for _, msgs := range tagged {
		merged = append(merged, msgs...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})

	return &models.AllHistoryResponse{Conversations: conversations, Messages: merged}, nil
}

func (s *ConversationService) messagesAscending(ctx context.Context, uid, chatID string) ([]models.ChatMessage, error) {
	docs, err := s.store.Documents(ctx, store.Messages(uid, chatID))
	if err != nil {
		return nil, err
	}

	messages := make([]models.ChatMessage, 0, len(docs))
	for i := range docs {
		messages = append(messages, models.ChatMessage{
			Role:      models.Role(store.StringField(&docs[i], "role")),
			Content:   store.StringField(&docs[i], "content"),
			Timestamp: store.TimeField(&docs[i], "timestamp"),
		})
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

// newConversationID derives a document key from the opening message: the
// first words lowercased and reduced to [a-z0-9-], truncated, with the
// current timestamp appended so identical openers still get distinct ids.
func newConversationID(message string, now time.Time) string {
	words := strings.Fields(message)
	if len(words) > maxIDWords {
		words = words[:maxIDWords]
	}

	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.Join(words, " ")) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxIDLen {
		slug = strings.Trim(slug[:maxIDLen], "-")
	}
	if slug == "" {
		return fmt.Sprintf("chat-%d", now.UnixMilli())
	}
	return fmt.Sprintf("%s-%d", slug, now.UnixMilli())
}

func conversationTitle(message string) string {
	title := strings.TrimSpace(message)
	runes := []rune(title)
	if len(runes) > maxTitle {
		title = string(runes[:maxTitle])
	}
	return title
}
