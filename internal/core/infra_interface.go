package core

import (
	"context"

	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) (err error)
	GetUserByEmail(ctx context.Context, email string) (user *models.User, err error)
	GetUserByID(ctx context.Context, id string) (user *models.User, err error)

	CreateSession(ctx context.Context, session *models.ChatSession) error
	GetSessionByID(ctx context.Context, id string) (*models.ChatSession, error)
	ListSessionsByUser(ctx context.Context, userID string) ([]models.ChatSession, error)

	// AppendMessages atomically appends messages to a session's log, but only
	// while the session is still active. Returns the new message count, or
	// ErrSessionEnded if the session ended under us.
	AppendMessages(ctx context.Context, sessionID string, msgs []models.Message) (int, error)

	// CloseSession performs the active -> ended transition, writing the
	// analysis fields exactly once. Returns ErrSessionEnded if the session
	// is already ended.
	CloseSession(ctx context.Context, sessionID, summary string, severityRating int) error

	MarkEscalationTriggered(ctx context.Context, sessionID string) error

	CreateEscalationLog(ctx context.Context, entry *models.EscalationLog) error
	SettleEscalationLog(ctx context.Context, id, result, callSid, errorMessage string) error

	Close() error
}

// LLMProvider abstracts the generative-language API: text in, text out.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)

	// Chat generates the next assistant turn given the full conversation so
	// far. The last element of history must be the user message to answer.
	Chat(ctx context.Context, systemPrompt string, history []models.Message) (string, error)
}

// CallPlacer abstracts the telephony API: phone number + script URL in,
// call attempt out.
type CallPlacer interface {
	// Configured reports whether real telephony credentials are present.
	// When false, escalation runs in simulated mode.
	Configured() bool

	// PlaceCall dials the number and reads the voice script served at
	// scriptURL. Returns the provider's call identifier.
	PlaceCall(ctx context.Context, to string, scriptURL string) (callSid string, err error)
}
