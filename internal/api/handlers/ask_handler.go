package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/twilio/twilio-go/twiml"

	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/services"
)

// AskHandler serves the legacy single-shot chat route and the TwiML voice
// script the telephony provider fetches during an escalation call.
type AskHandler struct {
	chat *services.ChatService
}

func NewAskHandler(chat *services.ChatService) *AskHandler {
	return &AskHandler{chat: chat}
}

type askRequest struct {
	Question string `json:"question"`
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	answer, err := h.chat.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, core.ErrEmptyMessage) {
			fail(w, http.StatusBadRequest, "question is required")
			return
		}
		fail(w, http.StatusInternalServerError, "Something went wrong on the server")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    true,
		"finalData": answer,
	})
}

// EmergencyCallScript renders the TwiML document Twilio reads aloud to the
// emergency contact.
func (h *AskHandler) EmergencyCallScript(w http.ResponseWriter, r *http.Request) {
	userName := r.URL.Query().Get("userName")
	if userName == "" {
		userName = "one of our users"
	}
	severity := r.URL.Query().Get("severity")
	if severity == "" {
		severity = "high"
	}

	message := fmt.Sprintf(
		"Hello, this is an automated safety alert from Soul Sync. "+
			"We have detected that %s may be in emotional distress during a recent session, "+
			"with a severity of %s out of 5. "+
			"If you are their emergency contact and they have consented to this call, "+
			"please reach out to them immediately. Thank you.",
		userName, severity,
	)

	doc, err := twiml.Voice([]twiml.Element{
		&twiml.VoiceSay{Message: message, Voice: "alice"},
	})
	if err != nil {
		fail(w, http.StatusInternalServerError, "Failed to render call script")
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}
