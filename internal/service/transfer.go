package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relayline/warm-transfer/internal/model"
	"github.com/relayline/warm-transfer/pkg/logger"
	"github.com/relayline/warm-transfer/pkg/metrics"
)

// Notifier receives best-effort transfer lifecycle notifications. A
// failing notifier must never fail the transfer flow; implementations
// swallow and log their own errors.
type Notifier interface {
	// TransferInitiated fans out to listeners of the source room.
	TransferInitiated(t *model.Transfer)

	// TransferEvent publishes a lifecycle transition (completed,
	// cancelled, failed) to the event bus.
	TransferEvent(t *model.Transfer, event string)
}

// TransferCoordinator orchestrates the warm handoff: snapshot the
// conversation, summarize it, provision the destination room, migrate the
// caller and the transcript, and later release the source agent. It owns
// the transfer records and their state machine.
type TransferCoordinator struct {
	registry  *RoomRegistry
	summaries *SummaryEngine
	notifier  Notifier
	logger    *logger.Logger
	retention time.Duration

	mu        sync.RWMutex
	transfers map[string]*model.Transfer
}

// NewTransferCoordinator creates a coordinator. notifier may be nil.
func NewTransferCoordinator(registry *RoomRegistry, summaries *SummaryEngine, notifier Notifier, retention time.Duration, log *logger.Logger) *TransferCoordinator {
	if retention <= 0 {
		retention = time.Hour
	}
	return &TransferCoordinator{
		registry:  registry,
		summaries: summaries,
		notifier:  notifier,
		logger:    log,
		retention: retention,
		transfers: make(map[string]*model.Transfer),
	}
}

// Initiate runs the warm transfer sequence. The room migrations are not
// transactional: an error at any step propagates to the caller with the
// record left in whatever status it last reached, and no rollback of
// partially completed migrations is attempted.
func (c *TransferCoordinator) Initiate(ctx context.Context, req *model.TransferRequest) (*model.Transfer, error) {
	transferID := uuid.New().String()

	history := c.registry.History(req.FromRoom)

	summary := c.summaries.Summarize(ctx, history,
		fmt.Sprintf("Transfer from %s to %s", req.FromAgent, req.ToAgent))

	t := &model.Transfer{
		ID:         transferID,
		FromRoom:   req.FromRoom,
		ToRoom:     req.ToRoom,
		FromAgent:  req.FromAgent,
		ToAgent:    req.ToAgent,
		CallerName: req.CallerName,
		Summary:    summary,
		Status:     model.StatusInitiated,
		CreatedAt:  time.Now(),
	}

	c.mu.Lock()
	c.transfers[transferID] = t
	c.mu.Unlock()
	metrics.TransfersTotal.WithLabelValues(string(model.StatusInitiated)).Inc()
	metrics.TransfersActive.Inc()

	if err := c.setupDestinationRoom(ctx, req.ToRoom, req.ToAgent); err != nil {
		return nil, fmt.Errorf("setting up destination room %s: %w", req.ToRoom, err)
	}

	callerToken, err := c.migrateCaller(ctx, req.FromRoom, req.ToRoom, req.CallerName)
	if err != nil {
		return nil, fmt.Errorf("moving caller %s to %s: %w", req.CallerName, req.ToRoom, err)
	}

	transferMessage := c.summaries.ComposeTransferMessage(summary, req.ToAgent)

	c.mu.Lock()
	t.CallerToken = callerToken
	t.DestinationRoom = req.ToRoom
	t.TransferMessage = transferMessage
	t.Status = model.StatusInProgress
	snapshot := *t
	c.mu.Unlock()
	metrics.TransfersTotal.WithLabelValues(string(model.StatusInProgress)).Inc()

	c.logger.Info("transfer initiated",
		zap.String("transfer_id", transferID),
		zap.String("from_room", req.FromRoom),
		zap.String("to_room", req.ToRoom),
	)

	if c.notifier != nil {
		c.notifier.TransferInitiated(&snapshot)
	}

	return &snapshot, nil
}

// setupDestinationRoom gets the receiving agent into the destination room:
// join if the room is already live, otherwise create it. Join failures of
// any kind fall back to create, which is idempotent on the provider side.
func (c *TransferCoordinator) setupDestinationRoom(ctx context.Context, roomName, agentName string) error {
	if _, err := c.registry.JoinRoom(ctx, roomName, agentName, true); err == nil {
		return nil
	}

	_, err := c.registry.CreateRoom(ctx, roomName, agentName, true)
	return err
}

// migrateCaller moves the caller out of the source room, joins them into
// the destination as a non-agent, and copies the source transcript over by
// re-appending every message. A destination room with prior history ends
// up with the union of both transcripts.
func (c *TransferCoordinator) migrateCaller(ctx context.Context, fromRoom, toRoom, callerName string) (string, error) {
	if err := c.registry.RemoveParticipant(ctx, fromRoom, callerName); err != nil {
		return "", err
	}

	handle, err := c.registry.JoinRoom(ctx, toRoom, callerName, false)
	if err != nil {
		return "", err
	}

	for _, msg := range c.registry.History(fromRoom) {
		c.registry.AppendMessage(toRoom, msg.Speaker, msg.Text)
	}

	return handle.Token, nil
}

// Complete releases the source agent and marks the transfer completed.
// The supplied room names must match the record. A removal failure marks
// the record failed before the error propagates.
func (c *TransferCoordinator) Complete(ctx context.Context, transferID, fromRoom, toRoom string) (*model.TransferReceipt, error) {
	c.mu.Lock()
	t, ok := c.transfers[transferID]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrTransferNotFound, transferID)
	}
	if t.FromRoom != fromRoom || t.ToRoom != toRoom {
		c.mu.Unlock()
		return nil, ErrRoomMismatch
	}
	if !t.Status.Active() {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot complete transfer in status %s", ErrInvalidTransferState, t.Status)
	}
	fromAgent := t.FromAgent
	summary := t.Summary
	c.mu.Unlock()

	if err := c.registry.RemoveParticipant(ctx, fromRoom, fromAgent); err != nil {
		c.setStatus(t, model.StatusFailed)
		return nil, fmt.Errorf("releasing agent %s from %s: %w", fromAgent, fromRoom, err)
	}

	c.setStatus(t, model.StatusCompleted)

	c.logger.Info("transfer completed", zap.String("transfer_id", transferID))

	return &model.TransferReceipt{
		TransferID:  transferID,
		Status:      string(model.StatusCompleted),
		FromRoom:    fromRoom,
		ToRoom:      toRoom,
		CompletedAt: time.Now().Format(time.RFC3339),
		Summary:     summary,
	}, nil
}

// Cancel transitions an active transfer to cancelled. Terminal records
// fail with ErrInvalidTransferState.
func (c *TransferCoordinator) Cancel(transferID string) (*model.Transfer, error) {
	c.mu.Lock()
	t, ok := c.transfers[transferID]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrTransferNotFound, transferID)
	}
	if !t.Status.Active() {
		status := t.Status
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot cancel transfer in status %s", ErrInvalidTransferState, status)
	}
	c.mu.Unlock()

	snapshot := c.setStatus(t, model.StatusCancelled)

	c.logger.Info("transfer cancelled", zap.String("transfer_id", transferID))
	return &snapshot, nil
}

// Transfer returns a copy of the record for the given id. Records are
// mutated under the coordinator's lock, so callers never get the stored
// pointer.
func (c *TransferCoordinator) Transfer(transferID string) (*model.Transfer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.transfers[transferID]
	if !ok {
		return nil, false
	}
	snapshot := *t
	return &snapshot, true
}

// Summary returns the stored summary for a transfer, empty if unknown.
func (c *TransferCoordinator) Summary(transferID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t, ok := c.transfers[transferID]; ok {
		return t.Summary
	}
	return ""
}

// ActiveTransfers returns copies of all records still in an active state.
func (c *TransferCoordinator) ActiveTransfers() []*model.Transfer {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var active []*model.Transfer
	for _, t := range c.transfers {
		if t.Status.Active() {
			snapshot := *t
			active = append(active, &snapshot)
		}
	}
	return active
}

// CleanupCompleted removes terminal records older than the retention
// window. It is invoked by an external scheduler, never self-scheduled.
func (c *TransferCoordinator) CleanupCompleted() int {
	cutoff := time.Now().Add(-c.retention)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, t := range c.transfers {
		if t.Status.Terminal() && t.CreatedAt.Before(cutoff) {
			delete(c.transfers, id)
			removed++
		}
	}

	if removed > 0 {
		c.logger.Info("cleaned up old transfers", zap.Int("removed", removed))
	}
	return removed
}

// Statistics counts records by status. The success rate is the completed
// percentage of all retained records, zero when there are none.
func (c *TransferCoordinator) Statistics() model.TransferStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := model.TransferStats{Total: len(c.transfers)}
	for _, t := range c.transfers {
		switch {
		case t.Status.Active():
			stats.Active++
		case t.Status == model.StatusCompleted:
			stats.Completed++
		case t.Status == model.StatusFailed:
			stats.Failed++
		}
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(stats.Total) * 100
	}
	return stats
}

func (c *TransferCoordinator) setStatus(t *model.Transfer, status model.TransferStatus) model.Transfer {
	c.mu.Lock()
	wasActive := t.Status.Active()
	t.Status = status
	snapshot := *t
	c.mu.Unlock()

	metrics.TransfersTotal.WithLabelValues(string(status)).Inc()
	if wasActive && status.Terminal() {
		metrics.TransfersActive.Dec()
	}

	if c.notifier != nil && status.Terminal() {
		c.notifier.TransferEvent(&snapshot, string(status))
	}
	return snapshot
}
