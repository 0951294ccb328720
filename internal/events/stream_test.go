package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayline/warm-transfer/internal/model"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "xfer.support-1.initiated", Subject("support-1", "initiated"))
	assert.Equal(t, "xfer.support-2.completed", Subject("support-2", "completed"))
}

func TestPublisherDisabledWithoutClient(t *testing.T) {
	var p *Publisher
	assert.False(t, p.Enabled())

	p = NewPublisher(nil)
	assert.False(t, p.Enabled())

	// Publishing through a disabled publisher is a silent no-op.
	err := p.Publish(context.Background(), &model.Transfer{ID: "t-1", FromRoom: "support-1"}, "initiated")
	require.NoError(t, err)
}
