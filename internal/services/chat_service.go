package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/models"
)

// ChatService implements the conversational exchange: append a user message
// to an active session and obtain one model-generated reply.
type ChatService struct {
	db  core.DbClient
	llm core.LLMProvider
}

func NewChatService(db core.DbClient, llm core.LLMProvider) *ChatService {
	return &ChatService{db: db, llm: llm}
}

// StartSession creates a new empty active session owned by userID.
func (s *ChatService) StartSession(ctx context.Context, userID string) (*models.ChatSession, error) {
	session := &models.ChatSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Messages:  []models.Message{},
		Status:    models.SessionActive,
		StartedAt: time.Now().UTC(),
	}
	if err := s.db.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// AppendMessage appends the user's message, asks the model for a reply with
// the full conversation context, and appends the assistant turn. The model
// is best-effort: once the user message is durably stored the exchange
// succeeds even if the model does not, via a fixed fallback reply.
func (s *ChatService) AppendMessage(ctx context.Context, sessionID, userID, text string) (reply string, messageCount int, err error) {
	if strings.TrimSpace(text) == "" {
		return "", 0, core.ErrEmptyMessage
	}
	if len(text) > MaxMessageLength {
		return "", 0, core.ErrMessageTooLong
	}

	session, err := s.db.GetSessionByID(ctx, sessionID)
	if err != nil {
		return "", 0, err
	}
	if session == nil {
		return "", 0, core.ErrNotFound
	}
	if session.UserID != userID {
		return "", 0, core.ErrForbidden
	}
	if session.Status != models.SessionActive {
		return "", 0, core.ErrSessionEnded
	}

	userMsg := models.Message{
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: time.Now().UTC(),
	}
	count, err := s.db.AppendMessages(ctx, sessionID, []models.Message{userMsg})
	if err != nil {
		return "", 0, err
	}

	history := append(session.Messages, userMsg)
	answer, llmErr := s.llm.Chat(ctx, supportSystemPrompt, history)
	if llmErr != nil || strings.TrimSpace(answer) == "" {
		slog.Warn("chat reply fallback",
			"session_id", sessionID, "error", llmErr)
		answer = FallbackReply
	}

	assistantMsg := models.Message{
		Role:      models.RoleAssistant,
		Content:   answer,
		Timestamp: time.Now().UTC(),
	}
	if n, err := s.db.AppendMessages(ctx, sessionID, []models.Message{assistantMsg}); err != nil {
		// The user message is already durable and the reply is in hand;
		// losing the assistant copy is not worth failing the exchange.
		slog.Warn("assistant message append failed",
			"session_id", sessionID, "error", err)
		count++
	} else {
		count = n
	}

	return answer, count, nil
}

// GetSession returns the full session, owner only.
func (s *ChatService) GetSession(ctx context.Context, sessionID, userID string) (*models.ChatSession, error) {
	session, err := s.db.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, core.ErrNotFound
	}
	if session.UserID != userID {
		return nil, core.ErrForbidden
	}
	return session, nil
}

// ListSessions returns the user's sessions, newest first, messages omitted.
func (s *ChatService) ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	return s.db.ListSessionsByUser(ctx, userID)
}

// Ask is the legacy single-shot exchange without session management. A small
// crisis-phrase check short-circuits to fixed resource text before the model
// is consulted; everything else goes through the same safety prompt.
func (s *ChatService) Ask(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", core.ErrEmptyMessage
	}

	if ContainsCrisisLanguage(question) {
		return CrisisResourceReply, nil
	}

	answer, err := s.llm.Generate(ctx, supportSystemPrompt, question)
	if err != nil || strings.TrimSpace(answer) == "" {
		slog.Warn("ask reply fallback", "error", err)
		return FallbackReply, nil
	}
	return answer, nil
}
