package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/middleware"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/models"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/services"
	pkglog "github.com/nipun-marak/Firebase-CRUD-with-NestJS/pkg/log"
)

type ChatHandler struct {
	conversations *services.ConversationService
	verses        *services.VerseService
	logger        pkglog.Logger
}

func NewChatHandler(conversations *services.ConversationService, verses *services.VerseService, logger pkglog.Logger) *ChatHandler {
	return &ChatHandler{conversations: conversations, verses: verses, logger: logger}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	uid := middleware.GetUserID(r.Context())
	if uid == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(http.StatusBadRequest, "Invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	resp, err := h.conversations.PostMessage(r.Context(), uid, &req)
	if err != nil {
		h.logger.Error().Err(err).Str("uid", uid).Msg("chat turn failed")
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Chat message processed successfully", resp)
}

func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	uid := middleware.GetUserID(r.Context())
	if uid == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	messages, err := h.conversations.GetHistory(r.Context(), uid, chi.URLParam(r, "chatId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Chat history retrieved successfully", messages)
}

func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	uid := middleware.GetUserID(r.Context())
	if uid == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	conversations, err := h.conversations.ListConversations(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Conversations retrieved successfully", conversations)
}

func (h *ChatHandler) GetAllHistory(w http.ResponseWriter, r *http.Request) {
	uid := middleware.GetUserID(r.Context())
	if uid == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	history, err := h.conversations.GetAllHistory(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Chat history retrieved successfully", history)
}

func (h *ChatHandler) DailyVerse(w http.ResponseWriter, r *http.Request) {
	uid := middleware.GetUserID(r.Context())
	if uid == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	verse, err := h.verses.GetDailyVerse(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Daily verse retrieved successfully", verse)
}
