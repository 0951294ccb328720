package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/relayline/warm-transfer/internal/model"
	"github.com/relayline/warm-transfer/internal/ws"
	"github.com/relayline/warm-transfer/pkg/logger"
)

// publishTimeout bounds how long a best-effort publish may block the
// notifying goroutine.
const publishTimeout = 5 * time.Second

// TransferNotifier fans transfer notifications out to the source room's
// WebSocket listeners and mirrors lifecycle transitions onto the event
// bus. All delivery is best-effort: failures are logged, never returned.
type TransferNotifier struct {
	hub       *ws.Hub
	publisher *Publisher
	logger    *logger.Logger
}

// NewTransferNotifier creates a notifier. hub and publisher may each be
// nil to disable that channel.
func NewTransferNotifier(hub *ws.Hub, publisher *Publisher, log *logger.Logger) *TransferNotifier {
	return &TransferNotifier{hub: hub, publisher: publisher, logger: log}
}

// TransferInitiated notifies the source room's listeners that the caller
// has a new destination, and publishes the initiation event.
func (n *TransferNotifier) TransferInitiated(t *model.Transfer) {
	if n.hub != nil {
		frame := ws.TransferFrame(t.CallerToken, t.DestinationRoom, t.ID)
		n.hub.Broadcast(t.FromRoom, []byte(frame))
	}

	n.publish(t, "initiated")
}

// TransferEvent mirrors a lifecycle transition onto the event bus.
func (n *TransferNotifier) TransferEvent(t *model.Transfer, event string) {
	n.publish(t, event)
}

func (n *TransferNotifier) publish(t *model.Transfer, event string) {
	if !n.publisher.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := n.publisher.Publish(ctx, t, event); err != nil {
		n.logger.Warn("transfer event publish failed",
			zap.String("transfer_id", t.ID),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}
