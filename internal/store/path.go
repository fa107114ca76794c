package store

import (
	"strings"
)

// Document paths are built through these two types instead of ad-hoc string
// concatenation, so every traversal the backend performs is declared once
// below and a malformed segment surfaces as ErrInvalidPath instead of a
// silent miss against the wrong document.

type CollectionPath struct {
	segments []string
	invalid  bool
}

type DocPath struct {
	segments []string
	invalid  bool
}

func validSegment(s string) bool {
	return s != "" && !strings.Contains(s, "/")
}

// NewCollection starts a path at a top-level collection.
func NewCollection(name string) CollectionPath {
	return CollectionPath{segments: []string{name}, invalid: !validSegment(name)}
}

func (c CollectionPath) Doc(id string) DocPath {
	segs := make([]string, 0, len(c.segments)+1)
	segs = append(segs, c.segments...)
	segs = append(segs, id)
	return DocPath{segments: segs, invalid: c.invalid || !validSegment(id)}
}

func (d DocPath) Collection(name string) CollectionPath {
	segs := make([]string, 0, len(d.segments)+1)
	segs = append(segs, d.segments...)
	segs = append(segs, name)
	return CollectionPath{segments: segs, invalid: d.invalid || !validSegment(name)}
}

func (c CollectionPath) String() string { return strings.Join(c.segments, "/") }
func (d DocPath) String() string        { return strings.Join(d.segments, "/") }

func (c CollectionPath) Invalid() bool { return c.invalid }
func (d DocPath) Invalid() bool        { return d.invalid }

// ID returns the final segment, the document key.
func (d DocPath) ID() string {
	if len(d.segments) == 0 {
		return ""
	}
	return d.segments[len(d.segments)-1]
}

// The complete document layout used by the backend.
//
//	users/{uid}
//	users/{uid}/chat-history/{chatId}
//	users/{uid}/chat-history/{chatId}/messages/{messageId}
//	refresh_tokens/{token}
//	history/{docId}            prompt configuration
//	daily-verses/{date}
const (
	usersCollection         = "users"
	chatHistoryCollection   = "chat-history"
	messagesCollection      = "messages"
	refreshTokensCollection = "refresh_tokens"
	promptConfigCollection  = "history"
	dailyVersesCollection   = "daily-verses"
)

func Users() CollectionPath { return NewCollection(usersCollection) }

func UserDoc(uid string) DocPath { return Users().Doc(uid) }

func ChatHistory(uid string) CollectionPath {
	return UserDoc(uid).Collection(chatHistoryCollection)
}

func ConversationDoc(uid, chatID string) DocPath {
	return ChatHistory(uid).Doc(chatID)
}

func Messages(uid, chatID string) CollectionPath {
	return ConversationDoc(uid, chatID).Collection(messagesCollection)
}

func RefreshTokens() CollectionPath { return NewCollection(refreshTokensCollection) }

func RefreshTokenDoc(token string) DocPath { return RefreshTokens().Doc(token) }

func PromptConfigDoc(docID string) DocPath {
	return NewCollection(promptConfigCollection).Doc(docID)
}

func DailyVerseDoc(date string) DocPath {
	return NewCollection(dailyVersesCollection).Doc(date)
}
