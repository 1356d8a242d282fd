package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	appMiddleware "github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/api/middlewares"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/auth"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/models"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/services"
)

// memDB is a small in-memory core.DbClient for handler tests.
type memDB struct {
	users       map[string]*models.User
	sessions    map[string]*models.ChatSession
	escalations []*models.EscalationLog
}

func newMemDB() *memDB {
	return &memDB{
		users:    map[string]*models.User{},
		sessions: map[string]*models.ChatSession{},
	}
}

func (m *memDB) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return core.ErrDuplicateEmail
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDB) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memDB) CreateSession(_ context.Context, session *models.ChatSession) error {
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

func (m *memDB) GetSessionByID(_ context.Context, id string) (*models.ChatSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	cp.Messages = append([]models.Message(nil), s.Messages...)
	return &cp, nil
}

func (m *memDB) ListSessionsByUser(_ context.Context, userID string) ([]models.ChatSession, error) {
	var out []models.ChatSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			cp := *s
			cp.Messages = nil
			out = append(out, cp)
		}
	}
	return out, nil
}

func (m *memDB) AppendMessages(_ context.Context, sessionID string, msgs []models.Message) (int, error) {
	s, ok := m.sessions[sessionID]
	if !ok || s.Status != models.SessionActive {
		return 0, core.ErrSessionEnded
	}
	s.Messages = append(s.Messages, msgs...)
	return len(s.Messages), nil
}

func (m *memDB) CloseSession(_ context.Context, sessionID, summary string, severityRating int) error {
	s, ok := m.sessions[sessionID]
	if !ok || s.Status != models.SessionActive {
		return core.ErrSessionEnded
	}
	s.Status = models.SessionEnded
	s.Summary = summary
	s.SeverityRating = severityRating
	now := time.Now().UTC()
	s.EndedAt = &now
	return nil
}

func (m *memDB) MarkEscalationTriggered(_ context.Context, sessionID string) error {
	s, ok := m.sessions[sessionID]
	if !ok {
		return errors.New("session not found")
	}
	s.EscalationTriggered = true
	return nil
}

func (m *memDB) CreateEscalationLog(_ context.Context, entry *models.EscalationLog) error {
	cp := *entry
	m.escalations = append(m.escalations, &cp)
	return nil
}

func (m *memDB) SettleEscalationLog(_ context.Context, id, result, callSid, errorMessage string) error {
	for _, e := range m.escalations {
		if e.ID == id {
			e.Result = result
			e.CallSid = callSid
			e.ErrorMessage = errorMessage
			return nil
		}
	}
	return errors.New("escalation log not found")
}

func (m *memDB) Close() error { return nil }

var _ core.DbClient = (*memDB)(nil)

// scriptedLLM serves canned replies.
type scriptedLLM struct {
	reply string
	err   error
	calls int
}

func (s *scriptedLLM) Generate(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *scriptedLLM) Chat(_ context.Context, _ string, _ []models.Message) (string, error) {
	s.calls++
	return s.reply, s.err
}

var _ core.LLMProvider = (*scriptedLLM)(nil)

// stubCaller never dials; handler tests run escalation in simulated mode.
type stubCaller struct{}

func (stubCaller) Configured() bool { return false }
func (stubCaller) PlaceCall(_ context.Context, _, _ string) (string, error) {
	return "", errors.New("not configured")
}

var _ core.CallPlacer = stubCaller{}

// newTestRouter wires the real handlers, services and JWT middleware over
// in-memory fakes, mirroring the production route layout.
func newTestRouter(db *memDB, llm *scriptedLLM) (http.Handler, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret")
	chat := services.NewChatService(db, llm)
	escalator := services.NewEscalationService(db, stubCaller{}, "https://api.example.com")
	sessionSvc := services.NewSessionService(db, llm, escalator, 4)

	authHandler := NewAuthHandler(db, tokens)
	sessionHandler := NewSessionHandler(chat, sessionSvc)
	askHandler := NewAskHandler(chat)

	r := chi.NewRouter()
	r.Post("/auth/signup", authHandler.Signup)
	r.Post("/auth/login", authHandler.Login)
	r.Post("/ask", askHandler.Ask)
	r.Get("/twiml/emergency-call", askHandler.EmergencyCallScript)
	r.Group(func(protected chi.Router) {
		protected.Use(appMiddleware.JWT(tokens))
		protected.Post("/sessions/start", sessionHandler.Start)
		protected.Post("/sessions/{sessionId}/message", sessionHandler.Message)
		protected.Post("/sessions/{sessionId}/end", sessionHandler.End)
		protected.Get("/sessions/{sessionId}", sessionHandler.Get)
		protected.Get("/sessions", sessionHandler.List)
	})
	return r, tokens
}
