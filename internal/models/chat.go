package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn in a conversation. Messages are append-only and
// ordered by timestamp, not by insertion order in the store.
type ChatMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TaggedMessage is a ChatMessage annotated with its owning conversation,
// used by the all-history view.
type TaggedMessage struct {
	ChatMessage
	ChatID string `json:"chatId"`
	Title  string `json:"title"`
}

type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ConversationSummary struct {
	Conversation
	MessageCount int `json:"messageCount"`
}

type ChatRequest struct {
	Message   string `json:"message"`
	IsNewChat bool   `json:"isNewChat"`
	ChatID    string `json:"chatId,omitempty"`
}

func (r *ChatRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Message) == "" {
		errors["message"] = "Message is required"
	}

	return errors
}

type ChatResponse struct {
	Messages []ChatMessage `json:"messages"`
	ChatID   string        `json:"chatId"`
}

type AllHistoryResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
	Messages      []TaggedMessage       `json:"messages"`
}

// DailyVerse is the cached verse-of-the-day payload.
type DailyVerse struct {
	Verse     string `json:"verse"`
	Reference string `json:"reference"`
	Occasion  string `json:"occasion"`
}
