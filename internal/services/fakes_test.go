package services

import (
	"context"
	"errors"
	"time"

	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/models"
)

// fakeDB is an in-memory core.DbClient honoring the conditional-update
// semantics the real client gets from Postgres.
type fakeDB struct {
	users       map[string]*models.User
	sessions    map[string]*models.ChatSession
	escalations []*models.EscalationLog

	appendErr error
	closeErr  error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:    map[string]*models.User{},
		sessions: map[string]*models.ChatSession{},
	}
}

func (f *fakeDB) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return core.ErrDuplicateEmail
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeDB) CreateSession(_ context.Context, session *models.ChatSession) error {
	cp := *session
	cp.Messages = append([]models.Message(nil), session.Messages...)
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeDB) GetSessionByID(_ context.Context, id string) (*models.ChatSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	cp.Messages = append([]models.Message(nil), s.Messages...)
	return &cp, nil
}

func (f *fakeDB) ListSessionsByUser(_ context.Context, userID string) ([]models.ChatSession, error) {
	var out []models.ChatSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			cp := *s
			cp.Messages = nil
			out = append(out, cp)
		}
	}
	return out, nil
}

func (f *fakeDB) AppendMessages(_ context.Context, sessionID string, msgs []models.Message) (int, error) {
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	s, ok := f.sessions[sessionID]
	if !ok || s.Status != models.SessionActive {
		return 0, core.ErrSessionEnded
	}
	s.Messages = append(s.Messages, msgs...)
	return len(s.Messages), nil
}

func (f *fakeDB) CloseSession(_ context.Context, sessionID, summary string, severityRating int) error {
	if f.closeErr != nil {
		return f.closeErr
	}
	s, ok := f.sessions[sessionID]
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

func (f *fakeDB) MarkEscalationTriggered(_ context.Context, sessionID string) error {
	s, ok := f.sessions[sessionID]
	if !ok {
		return errors.New("session not found")
	}
	s.EscalationTriggered = true
	return nil
}

func (f *fakeDB) CreateEscalationLog(_ context.Context, entry *models.EscalationLog) error {
	cp := *entry
	f.escalations = append(f.escalations, &cp)
	return nil
}

func (f *fakeDB) SettleEscalationLog(_ context.Context, id, result, callSid, errorMessage string) error {
	for _, e := range f.escalations {
		if e.ID == id {
			if e.Result != models.EscalationPending {
				return errors.New("escalation log not pending")
			}
			e.Result = result
			e.CallSid = callSid
			e.ErrorMessage = errorMessage
			return nil
		}
	}
	return errors.New("escalation log not found")
}

func (f *fakeDB) Close() error { return nil }

var _ core.DbClient = (*fakeDB)(nil)

// fakeLLM returns scripted replies and records what it was asked.
type fakeLLM struct {
	generateReply string
	generateErr   error
	chatReply     string
	chatErr       error

	generateCalls int
	chatCalls     int
	lastSystem    string
	lastPrompt    string
	lastHistory   []models.Message
}

func (f *fakeLLM) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.generateCalls++
	f.lastSystem = systemPrompt
	f.lastPrompt = userPrompt
	return f.generateReply, f.generateErr
}

func (f *fakeLLM) Chat(_ context.Context, systemPrompt string, history []models.Message) (string, error) {
	f.chatCalls++
	f.lastSystem = systemPrompt
	f.lastHistory = append([]models.Message(nil), history...)
	return f.chatReply, f.chatErr
}

var _ core.LLMProvider = (*fakeLLM)(nil)

// fakeCaller records placed calls.
type fakeCaller struct {
	configured bool
	sid        string
	err        error

	calls   int
	lastTo  string
	lastURL string
}

func (f *fakeCaller) Configured() bool { return f.configured }

func (f *fakeCaller) PlaceCall(_ context.Context, to, scriptURL string) (string, error) {
	f.calls++
	f.lastTo = to
	f.lastURL = scriptURL
	return f.sid, f.err
}

var _ core.CallPlacer = (*fakeCaller)(nil)
