// Package telephony dials external phone numbers and patches them into a
// room via the PSTN provider. The bridge is optional and independent of
// the transfer coordinator's correctness.
package telephony

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/twilio/twilio-go/twiml"
	"go.uber.org/zap"

	"github.com/relayline/warm-transfer/pkg/logger"
	"github.com/relayline/warm-transfer/pkg/metrics"
)

// callRetention bounds how long finished call records linger before a
// sweep reaps them.
const callRetention = time.Hour

// CallSession describes one outbound dial and its room binding.
type CallSession struct {
	CallSID     string    `json:"call_sid"`
	PhoneNumber string    `json:"phone_number"`
	RoomName    string    `json:"room_name"`
	AgentName   string    `json:"agent_name,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Bridge wraps the Twilio REST client and tracks active call sessions.
type Bridge struct {
	client    *twilio.RestClient
	fromPhone string
	publicURL string
	logger    *logger.Logger

	mu    sync.Mutex
	calls map[string]*CallSession
}

// NewBridge creates a telephony bridge. publicURL is the externally
// reachable base URL used for TwiML callbacks.
func NewBridge(accountSID, authToken, fromPhone, publicURL string, log *logger.Logger) *Bridge {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &Bridge{
		client:    client,
		fromPhone: fromPhone,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    log,
		calls:     make(map[string]*CallSession),
	}
}

// Dial places an outbound call that will be connected into the room via
// the TwiML webhook.
func (b *Bridge) Dial(phoneNumber, roomName, agentName string) (*CallSession, error) {
	params := &twilioapi.CreateCallParams{}
	params.SetTo(phoneNumber)
	params.SetFrom(b.fromPhone)
	params.SetUrl(fmt.Sprintf("%s/api/twilio/twiml/%s", b.publicURL, roomName))
	params.SetMethod("POST")

	call, err := b.client.Api.CreateCall(params)
	if err != nil {
		metrics.DialsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to create call to %s: %w", phoneNumber, err)
	}

	session := &CallSession{
		CallSID:     deref(call.Sid),
		PhoneNumber: phoneNumber,
		RoomName:    roomName,
		AgentName:   agentName,
		Status:      deref(call.Status),
		CreatedAt:   time.Now(),
	}

	b.mu.Lock()
	b.calls[session.CallSID] = session
	b.mu.Unlock()

	metrics.DialsTotal.WithLabelValues("created").Inc()
	b.logger.Info("outbound call created",
		zap.String("call_sid", session.CallSID),
		zap.String("room", roomName),
	)

	return session, nil
}

// CallStatus fetches the live status of a call from the provider.
func (b *Bridge) CallStatus(callSID string) (*CallSession, error) {
	call, err := b.client.Api.FetchCall(callSID, &twilioapi.FetchCallParams{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch call %s: %w", callSID, err)
	}

	b.mu.Lock()
	session, ok := b.calls[callSID]
	if ok {
		session.Status = deref(call.Status)
	} else {
		session = &CallSession{
			CallSID:     callSID,
			PhoneNumber: deref(call.To),
			Status:      deref(call.Status),
			CreatedAt:   time.Now(),
		}
	}
	b.mu.Unlock()

	return session, nil
}

// Hangup ends a call by marking it completed with the provider.
func (b *Bridge) Hangup(callSID string) error {
	params := &twilioapi.UpdateCallParams{}
	params.SetStatus("completed")

	if _, err := b.client.Api.UpdateCall(callSID, params); err != nil {
		return fmt.Errorf("failed to hang up call %s: %w", callSID, err)
	}

	b.logger.Info("call hung up", zap.String("call_sid", callSID))
	return nil
}

// ConnectTwiML renders the call-control document for patching a dialed
// party into the room: an optional transfer summary readout followed by a
// connect message.
func (b *Bridge) ConnectTwiML(roomName, summary string) (string, error) {
	var verbs []twiml.Element

	if summary != "" {
		verbs = append(verbs,
			twiml.VoiceSay{Message: "Warm transfer summary: " + summary},
			twiml.VoicePause{Length: "1"},
		)
	}

	verbs = append(verbs,
		twiml.VoiceSay{Message: "Connecting you to the next available agent."},
		twiml.VoicePause{Length: "2"},
	)

	doc, err := twiml.Voice(verbs)
	if err != nil {
		return "", fmt.Errorf("failed to render TwiML for %s: %w", roomName, err)
	}
	return doc, nil
}

// CleanupOldCalls reaps call records older than the retention window.
// Invoked by the external housekeeping sweeper.
func (b *Bridge) CleanupOldCalls() int {
	cutoff := time.Now().Add(-callRetention)

	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for sid, session := range b.calls {
		if session.CreatedAt.Before(cutoff) {
			delete(b.calls, sid)
			removed++
		}
	}
	return removed
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
