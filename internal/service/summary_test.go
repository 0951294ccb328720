package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayline/warm-transfer/internal/model"
	"github.com/relayline/warm-transfer/pkg/logger"
)

func newTestSummaryEngine() *SummaryEngine {
	return NewSummaryEngine(nil, logger.NewNop())
}

func TestSummarizeFallbackEmptyHistory(t *testing.T) {
	engine := newTestSummaryEngine()

	summary := engine.Summarize(context.Background(), nil, "")
	assert.Equal(t, "No conversation history available.", summary)
}

func TestSummarizeFallbackFormat(t *testing.T) {
	engine := newTestSummaryEngine()

	history := []model.Message{
		{Speaker: "alice", Text: "My payment failed twice"},
		{Speaker: "agent", Text: "Let me look into that"},
		{Speaker: "alice", Text: "Thanks"},
		{Speaker: "Agent", Text: "I have escalated your case"},
	}

	summary := engine.Summarize(context.Background(), history, "")

	assert.Contains(t, summary, "Caller's main concern: My payment failed twice...")
	assert.Contains(t, summary, "Agent's last response: I have escalated your case...")
	assert.Contains(t, summary, "Total messages exchanged: 4")
	assert.Equal(t, 3, len(strings.Split(summary, " | ")))
}

func TestSummarizeFallbackTruncatesLongMessages(t *testing.T) {
	engine := newTestSummaryEngine()

	long := strings.Repeat("a", 250)
	history := []model.Message{{Speaker: "alice", Text: long}}

	summary := engine.Summarize(context.Background(), history, "")
	assert.Contains(t, summary, "Caller's main concern: "+long[:100]+"...")
	assert.NotContains(t, summary, long[:101])
}

func TestSummarizeFallbackTruncatesOnRuneBoundary(t *testing.T) {
	engine := newTestSummaryEngine()

	// A multi-byte rune straddling the cutoff must not be split.
	text := strings.Repeat("a", 99) + "église"
	history := []model.Message{{Speaker: "alice", Text: text}}

	summary := engine.Summarize(context.Background(), history, "")
	assert.True(t, utf8.ValidString(summary))
	assert.Contains(t, summary, strings.Repeat("a", 99)+"é...")
}

func TestSummarizeFallbackAgentOnlyHistory(t *testing.T) {
	engine := newTestSummaryEngine()

	history := []model.Message{{Speaker: "agent", Text: "Are you still there?"}}
	summary := engine.Summarize(context.Background(), history, "")

	assert.NotContains(t, summary, "Caller's main concern")
	assert.Contains(t, summary, "Agent's last response: Are you still there?...")
	assert.Contains(t, summary, "Total messages exchanged: 1")
}

func TestComposeTransferMessage(t *testing.T) {
	engine := newTestSummaryEngine()

	msg := engine.ComposeTransferMessage("caller needs a refund", "Bob")
	assert.Contains(t, msg, "Warm Transfer Summary for Bob:")
	assert.Contains(t, msg, "caller needs a refund")
	assert.Contains(t, msg, "smooth handoff")
}

func TestSynthesizeSpeechWithoutClient(t *testing.T) {
	engine := newTestSummaryEngine()

	assert.Nil(t, engine.SynthesizeSpeech(context.Background(), "hello", ""))
	assert.False(t, engine.Generative())
}

func TestClassifySentiment(t *testing.T) {
	engine := newTestSummaryEngine()

	assert.Equal(t, "neutral", engine.ClassifySentiment(nil))

	positive := []model.Message{{Speaker: "alice", Text: "Thank you, this is great"}}
	assert.Equal(t, "positive", engine.ClassifySentiment(positive))

	negative := []model.Message{{Speaker: "alice", Text: "I am frustrated with this problem"}}
	assert.Equal(t, "negative", engine.ClassifySentiment(negative))

	mixed := []model.Message{{Speaker: "alice", Text: "great but terrible"}}
	assert.Equal(t, "neutral", engine.ClassifySentiment(mixed))
}

func TestExtractKeyPoints(t *testing.T) {
	engine := newTestSummaryEngine()

	history := []model.Message{
		{Speaker: "alice", Text: "I have an issue with my order"},
		{Speaker: "agent", Text: "Let me check"},
		{Speaker: "alice", Text: "The payment went through twice"},
		{Speaker: "alice", Text: "I would like a refund"},
	}

	points := engine.ExtractKeyPoints(history, 5)
	require.Len(t, points, 3)
	assert.Equal(t, "alice: I have an issue with my order...", points[0])
	assert.Equal(t, "alice: The payment went through twice...", points[1])
	assert.Equal(t, "alice: I would like a refund...", points[2])
}

func TestExtractKeyPointsHonorsLimit(t *testing.T) {
	engine := newTestSummaryEngine()

	var history []model.Message
	for i := 0; i < 10; i++ {
		history = append(history, model.Message{Speaker: "alice", Text: "another account question"})
	}

	assert.Len(t, engine.ExtractKeyPoints(history, 2), 2)
	assert.Len(t, engine.ExtractKeyPoints(history, 0), 5)
}
