package services

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/models"
)

// NotifyRequest carries everything needed to reach an emergency contact.
type NotifyRequest struct {
	UserID         string
	UserName       string
	PhoneNumber    string
	SessionID      string
	SeverityRating int
}

// NotifyOutcome reports how the attempt settled.
type NotifyOutcome struct {
	Result  string // success | failed
	CallSid string // empty in simulated mode and on failure
}

// EscalationService places the emergency call and writes exactly one audit
// log entry per attempt. Attempts are best-effort: failures are recorded,
// never propagated, and never retried synchronously.
type EscalationService struct {
	db      core.DbClient
	caller  core.CallPlacer
	baseURL string
}

func NewEscalationService(db core.DbClient, caller core.CallPlacer, publicBaseURL string) *EscalationService {
	return &EscalationService{db: db, caller: caller, baseURL: publicBaseURL}
}

// Notify triggers one escalation attempt and audits its outcome.
func (s *EscalationService) Notify(ctx context.Context, req NotifyRequest) NotifyOutcome {
	entry := &models.EscalationLog{
		ID:                uuid.NewString(),
		UserID:            req.UserID,
		SessionID:         req.SessionID,
		SeverityRating:    req.SeverityRating,
		PhoneNumberCalled: req.PhoneNumber,
		Result:            models.EscalationPending,
		UserName:          req.UserName,
		TriggeredAt:       time.Now().UTC(),
	}
	if err := s.db.CreateEscalationLog(ctx, entry); err != nil {
		slog.Error("escalation log create failed",
			"session_id", req.SessionID, "error", err)
	}

	outcome := NotifyOutcome{Result: models.EscalationSuccess}
	var errDetail string

	if !s.caller.Configured() {
		// Simulated mode: no telephony credentials configured.
		slog.Warn("escalation simulated, telephony not configured",
			"to", req.PhoneNumber,
			"user", req.UserName,
			"severity", req.SeverityRating)
	} else {
		sid, err := s.caller.PlaceCall(ctx, req.PhoneNumber, s.voiceScriptURL(req.UserName, req.SeverityRating))
		if err != nil {
			outcome.Result = models.EscalationFailed
			errDetail = err.Error()
			slog.Error("escalation call failed",
				"to", req.PhoneNumber, "error", err)
		} else {
			outcome.CallSid = sid
			slog.Info("escalation call placed",
				"to", req.PhoneNumber, "call_sid", sid)
		}
	}

	if err := s.db.SettleEscalationLog(ctx, entry.ID, outcome.Result, outcome.CallSid, errDetail); err != nil {
		slog.Error("escalation log settle failed",
			"escalation_id", entry.ID, "error", err)
	}

	return outcome
}

// voiceScriptURL points the telephony provider at our TwiML endpoint, which
// renders the spoken alert for this user and severity.
func (s *EscalationService) voiceScriptURL(userName string, severity int) string {
	q := url.Values{}
	q.Set("userName", userName)
	q.Set("severity", strconv.Itoa(severity))
	return s.baseURL + "/twiml/emergency-call?" + q.Encode()
}
