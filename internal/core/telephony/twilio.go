package telephony

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core"
)

// TwilioCaller places outbound voice calls through the Twilio REST API.
// When credentials are absent it stays unconfigured and the escalation
// workflow falls back to simulated mode.
type TwilioCaller struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioCaller(accountSID, authToken, fromNumber string) *TwilioCaller {
	if accountSID == "" || authToken == "" || fromNumber == "" {
		return &TwilioCaller{}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioCaller{client: client, from: fromNumber}
}

func (t *TwilioCaller) Configured() bool {
	return t.client != nil
}

// PlaceCall dials the number; Twilio fetches the voice script from scriptURL
// when the call connects. The twilio-go client manages its own HTTP timeouts,
// so ctx is accepted for interface symmetry but not threaded further.
func (t *TwilioCaller) PlaceCall(_ context.Context, to string, scriptURL string) (string, error) {
	if t.client == nil {
		return "", errors.New("twilio client not configured")
	}

	params := &twilioapi.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetUrl(scriptURL)

	call, err := t.client.Api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("twilio create call: %w", err)
	}
	if call.Sid == nil {
		return "", errors.New("twilio returned no call sid")
	}
	return *call.Sid, nil
}

var _ core.CallPlacer = (*TwilioCaller)(nil)
