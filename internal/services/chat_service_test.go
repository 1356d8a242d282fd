package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/models"
)

func seedSession(t *testing.T, db *fakeDB, userID, status string, msgs ...models.Message) *models.ChatSession {
	t.Helper()
	s := &models.ChatSession{
		ID:       "sess-1",
		UserID:   userID,
		Messages: msgs,
		Status:   status,
	}
	require.NoError(t, db.CreateSession(context.Background(), s))
	return s
}

func TestStartSession(t *testing.T) {
	db := newFakeDB()
	svc := NewChatService(db, &fakeLLM{})

	s, err := svc.StartSession(context.Background(), "user-1")
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, models.SessionActive, s.Status)
	assert.Empty(t, s.Messages)
	assert.False(t, s.StartedAt.IsZero())
}

func TestAppendMessageHappyPath(t *testing.T) {
	db := newFakeDB()
	llm := &fakeLLM{chatReply: "That sounds hard. Tell me more."}
	svc := NewChatService(db, llm)
	seedSession(t, db, "user-1", models.SessionActive)

	reply, count, err := svc.AppendMessage(context.Background(), "sess-1", "user-1", "I had a rough day")
	require.NoError(t, err)

	assert.Equal(t, "That sounds hard. Tell me more.", reply)
	assert.Equal(t, 2, count)

	stored, _ := db.GetSessionByID(context.Background(), "sess-1")
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, models.RoleUser, stored.Messages[0].Role)
	assert.Equal(t, "I had a rough day", stored.Messages[0].Content)
	assert.Equal(t, models.RoleAssistant, stored.Messages[1].Role)

	// Model gets the safety instruction and the full conversation.
	assert.Contains(t, llm.lastSystem, "mental health support assistant")
	require.Len(t, llm.lastHistory, 1)
	assert.Equal(t, "I had a rough day", llm.lastHistory[0].Content)
}

func TestAppendMessageValidation(t *testing.T) {
	db := newFakeDB()
	svc := NewChatService(db, &fakeLLM{})
	seedSession(t, db, "user-1", models.SessionActive)

	_, _, err := svc.AppendMessage(context.Background(), "sess-1", "user-1", "   ")
	assert.ErrorIs(t, err, core.ErrEmptyMessage)

	_, _, err = svc.AppendMessage(context.Background(), "sess-1", "user-1", strings.Repeat("a", MaxMessageLength+1))
	assert.ErrorIs(t, err, core.ErrMessageTooLong)
}

func TestAppendMessageSessionChecks(t *testing.T) {
	db := newFakeDB()
	svc := NewChatService(db, &fakeLLM{chatReply: "ok"})
	seedSession(t, db, "user-1", models.SessionEnded)

	_, _, err := svc.AppendMessage(context.Background(), "missing", "user-1", "hi")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, _, err = svc.AppendMessage(context.Background(), "sess-1", "someone-else", "hi")
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, _, err = svc.AppendMessage(context.Background(), "sess-1", "user-1", "hi")
	assert.ErrorIs(t, err, core.ErrSessionEnded)

	// The ended session's log must be untouched.
	stored, _ := db.GetSessionByID(context.Background(), "sess-1")
	assert.Empty(t, stored.Messages)
}

func TestAppendMessageModelFailureFallsBack(t *testing.T) {
	db := newFakeDB()
	svc := NewChatService(db, &fakeLLM{chatErr: errors.New("quota exceeded")})
	seedSession(t, db, "user-1", models.SessionActive)

	reply, count, err := svc.AppendMessage(context.Background(), "sess-1", "user-1", "anyone there?")
	require.NoError(t, err, "exchange must succeed once the user message is stored")

	assert.Equal(t, FallbackReply, reply)
	assert.Equal(t, 2, count)

	stored, _ := db.GetSessionByID(context.Background(), "sess-1")
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, FallbackReply, stored.Messages[1].Content)
}

func TestAppendMessageEmptyModelReplyFallsBack(t *testing.T) {
	db := newFakeDB()
	svc := NewChatService(db, &fakeLLM{chatReply: "  "})
	seedSession(t, db, "user-1", models.SessionActive)

	reply, _, err := svc.AppendMessage(context.Background(), "sess-1", "user-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply)
}

func TestGetSessionOwnership(t *testing.T) {
	db := newFakeDB()
	svc := NewChatService(db, &fakeLLM{})
	seedSession(t, db, "user-1", models.SessionActive,
		models.Message{Role: models.RoleUser, Content: "private"})

	_, err := svc.GetSession(context.Background(), "sess-1", "intruder")
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.GetSession(context.Background(), "nope", "user-1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	got, err := svc.GetSession(context.Background(), "sess-1", "user-1")
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
}

func TestAskCrisisShortCircuit(t *testing.T) {
	llm := &fakeLLM{generateReply: "model reply"}
	svc := NewChatService(newFakeDB(), llm)

	got, err := svc.Ask(context.Background(), "sometimes I want to KILL MYSELF")
	require.NoError(t, err)

	assert.Equal(t, CrisisResourceReply, got)
	assert.Zero(t, llm.generateCalls, "crisis phrases must not reach the model")
}

func TestAskNormalQuestion(t *testing.T) {
	llm := &fakeLLM{generateReply: "Take a slow breath with me."}
	svc := NewChatService(newFakeDB(), llm)

	got, err := svc.Ask(context.Background(), "how do I calm down before a talk?")
	require.NoError(t, err)
	assert.Equal(t, "Take a slow breath with me.", got)
	assert.Contains(t, llm.lastSystem, "mental health support assistant")
}

func TestAskFailuresFallBack(t *testing.T) {
	svc := NewChatService(newFakeDB(), &fakeLLM{generateErr: errors.New("boom")})

	got, err := svc.Ask(context.Background(), "hello?")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, got)

	_, err = svc.Ask(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrEmptyMessage)
}

func TestContainsCrisisLanguage(t *testing.T) {
	assert.True(t, ContainsCrisisLanguage("I think about suicide"))
	assert.True(t, ContainsCrisisLanguage("I want to hurt myself"))
	assert.False(t, ContainsCrisisLanguage("I feel okay today"))
}
