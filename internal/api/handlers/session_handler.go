package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	appMiddleware "github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/api/middlewares"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/services"
)

type SessionHandler struct {
	chat     *services.ChatService
	sessions *services.SessionService
}

func NewSessionHandler(chat *services.ChatService, sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{chat: chat, sessions: sessions}
}

type messageRequest struct {
	Question string `json:"question"`
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	session, err := h.chat.StartSession(r.Context(), userID)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":    true,
		"message":   "Chat session started",
		"sessionId": session.ID,
		"startedAt": session.StartedAt,
	})
}

func (h *SessionHandler) Message(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, count, err := h.chat.AppendMessage(r.Context(), chi.URLParam(r, "sessionId"), userID, req.Question)
	if err != nil {
		h.serviceError(w, err, "Failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       true,
		"message":      "Message processed",
		"response":     reply,
		"messageCount": count,
	})
}

func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.sessions.EndSession(r.Context(), chi.URLParam(r, "sessionId"), userID)
	if err != nil {
		h.serviceError(w, err, "Failed to end session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Session ended and analyzed",
		"analysis": map[string]any{
			"summary":        result.Analysis.Summary,
			"severityRating": result.Analysis.SeverityRating,
		},
		"escalationTriggered": result.EscalationTriggered,
		"endedAt":             result.EndedAt,
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	session, err := h.chat.GetSession(r.Context(), chi.URLParam(r, "sessionId"), userID)
	if err != nil {
		h.serviceError(w, err, "Failed to retrieve session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"session": session,
	})
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sessions, err := h.chat.ListSessions(r.Context(), userID)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Failed to retrieve sessions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   true,
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// serviceError maps service sentinel errors onto the HTTP taxonomy.
func (h *SessionHandler) serviceError(w http.ResponseWriter, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		fail(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, core.ErrForbidden):
		fail(w, http.StatusForbidden, "Unauthorized access to this session")
	case errors.Is(err, core.ErrSessionEnded):
		fail(w, http.StatusBadRequest, "This session has ended. Start a new session to continue.")
	case errors.Is(err, core.ErrEmptyMessage):
		fail(w, http.StatusBadRequest, "Message content is required")
	case errors.Is(err, core.ErrMessageTooLong):
		fail(w, http.StatusBadRequest, "Message content exceeds the 5000 character limit")
	default:
		fail(w, http.StatusInternalServerError, fallbackMsg)
	}
}
