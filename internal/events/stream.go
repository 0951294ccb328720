package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/relayline/warm-transfer/internal/model"
)

const (
	// StreamName is the name of the transfers stream.
	StreamName = "TRANSFERS"

	// SubjectPrefix is the prefix for all transfer subjects.
	SubjectPrefix = "xfer"
)

// TransferEvent is the payload published on every lifecycle transition.
type TransferEvent struct {
	TransferID string    `json:"transfer_id"`
	Event      string    `json:"event"`
	FromRoom   string    `json:"from_room"`
	ToRoom     string    `json:"to_room"`
	FromAgent  string    `json:"from_agent"`
	ToAgent    string    `json:"to_agent"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher writes transfer events to the TRANSFERS stream. A nil
// Publisher, or one built over a nil client, discards events.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher over the given client. client may be
// nil, in which case publishing is disabled.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Enabled reports whether events actually reach a broker.
func (p *Publisher) Enabled() bool {
	return p != nil && p.client != nil
}

// EnsureStream ensures the transfers stream exists.
func (p *Publisher) EnsureStream(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}

	js := p.client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Warm transfer lifecycle events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// Subject returns the subject for one transfer event.
func Subject(fromRoom, event string) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, fromRoom, event)
}

// Publish writes one event. Errors are returned for the caller to log;
// they must not fail the transfer flow.
func (p *Publisher) Publish(ctx context.Context, t *model.Transfer, event string) error {
	if !p.Enabled() {
		return nil
	}

	payload := TransferEvent{
		TransferID: t.ID,
		Event:      event,
		FromRoom:   t.FromRoom,
		ToRoom:     t.ToRoom,
		FromAgent:  t.FromAgent,
		ToAgent:    t.ToAgent,
		OccurredAt: time.Now(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal transfer event: %w", err)
	}

	if _, err := p.client.JetStream().Publish(ctx, Subject(t.FromRoom, event), data); err != nil {
		return fmt.Errorf("failed to publish transfer event: %w", err)
	}
	return nil
}
