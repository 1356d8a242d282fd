package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/models"
)

// EndSessionResult is what the caller gets back from a successful closure.
type EndSessionResult struct {
	Analysis            SessionAnalysis
	EscalationTriggered bool
	EndedAt             time.Time
}

// SessionService drives the active -> ended transition: analyze the
// transcript, persist the terminal fields once, and decide escalation.
type SessionService struct {
	db        core.DbClient
	llm       core.LLMProvider
	escalator *EscalationService
	threshold int
}

func NewSessionService(db core.DbClient, llm core.LLMProvider, escalator *EscalationService, threshold int) *SessionService {
	if threshold < 1 || threshold > 5 {
		threshold = 4
	}
	return &SessionService{db: db, llm: llm, escalator: escalator, threshold: threshold}
}

// ShouldEscalate applies the inclusive threshold comparison: a rating equal
// to the threshold triggers.
func (s *SessionService) ShouldEscalate(severityRating int) bool {
	return severityRating >= s.threshold
}

// EndSession closes a session exactly once. Analysis is best-effort: once
// the caller is validated, closure always succeeds even when the model does
// not. Escalation failures are audited, never surfaced to the caller.
func (s *SessionService) EndSession(ctx context.Context, sessionID, userID string) (*EndSessionResult, error) {
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
	if session.Status != models.SessionActive {
		return nil, core.ErrSessionEnded
	}

	analysis := AnalyzeTranscript(ctx, s.llm, session.Messages)

	// Conditional update: if a concurrent end won the race, this returns
	// ErrSessionEnded and the first closure's analysis stands.
	if err := s.db.CloseSession(ctx, sessionID, analysis.Summary, analysis.SeverityRating); err != nil {
		return nil, err
	}
	endedAt := time.Now().UTC()

	result := &EndSessionResult{Analysis: analysis, EndedAt: endedAt}

	if s.ShouldEscalate(analysis.SeverityRating) {
		user, err := s.db.GetUserByID(ctx, userID)
		if err != nil {
			slog.Error("escalation user lookup failed",
				"session_id", sessionID, "error", err)
			return result, nil
		}
		if user != nil && user.EmergencyContact.PhoneNumber != "" {
			s.escalator.Notify(ctx, NotifyRequest{
				UserID:         userID,
				UserName:       user.Name,
				PhoneNumber:    user.EmergencyContact.PhoneNumber,
				SessionID:      sessionID,
				SeverityRating: analysis.SeverityRating,
			})

			result.EscalationTriggered = true
			if err := s.db.MarkEscalationTriggered(ctx, sessionID); err != nil {
				slog.Error("failed to flag session escalation",
					"session_id", sessionID, "error", err)
			}

			slog.Info("escalation triggered",
				"session_id", sessionID,
				"severity", analysis.SeverityRating,
				"threshold", s.threshold)
		}
	}

	return result, nil
}
