package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/relayline/warm-transfer/internal/llm"
	"github.com/relayline/warm-transfer/internal/model"
	"github.com/relayline/warm-transfer/pkg/logger"
	"github.com/relayline/warm-transfer/pkg/metrics"
)

const (
	summarySystemPrompt = "You are a helpful assistant that creates concise call summaries for customer service transfers."

	// snippetLen bounds per-message excerpts in fallback summaries and
	// key points.
	snippetLen = 100
)

var (
	positiveKeywords = []string{"thank", "great", "excellent", "happy", "satisfied", "good", "perfect"}
	negativeKeywords = []string{"angry", "frustrated", "disappointed", "terrible", "awful", "bad", "problem"}
	topicKeywords    = []string{"account", "order", "payment", "refund", "issue", "problem"}
)

// SummaryEngine turns a conversation transcript into a handoff summary.
// When no generation client is configured, or the provider fails, it falls
// back to a deterministic extractive summary. The strategy is fixed at
// construction: a nil client means extractive-only.
type SummaryEngine struct {
	client llm.Client
	logger *logger.Logger
}

// NewSummaryEngine creates a summary engine. client may be nil.
func NewSummaryEngine(client llm.Client, log *logger.Logger) *SummaryEngine {
	return &SummaryEngine{client: client, logger: log}
}

// Generative reports whether a generation provider is configured.
func (e *SummaryEngine) Generative() bool {
	return e.client != nil
}

// Summarize produces a short natural-language summary of the transcript.
// contextNote is optional free text folded into the prompt.
func (e *SummaryEngine) Summarize(ctx context.Context, history []model.Message, contextNote string) string {
	if e.client == nil {
		metrics.RecordSummary("fallback", "", 0)
		return fallbackSummary(history)
	}

	start := time.Now()
	resp, err := e.client.Complete(ctx, &llm.CompletionRequest{
		Messages: []llm.ChatMessage{
			{Role: "system", Content: summarySystemPrompt},
			{Role: "user", Content: summaryPrompt(history, contextNote)},
		},
		MaxTokens:   300,
		Temperature: 0.3,
	})
	if err != nil {
		e.logger.Warn("summary generation failed, using fallback", zap.Error(err))
		metrics.RecordSummary("fallback", "", 0)
		return fallbackSummary(history)
	}

	metrics.RecordSummary("llm", e.client.Name(), time.Since(start).Seconds())
	return strings.TrimSpace(resp.Content)
}

// ComposeTransferMessage renders the deterministic handoff message spoken
// to the receiving agent. It never fails.
func (e *SummaryEngine) ComposeTransferMessage(summary, toAgent string) string {
	return fmt.Sprintf(`Warm Transfer Summary for %s:

%s

Please continue assisting the caller with this information. The previous agent has provided this context to ensure a smooth handoff.`, toAgent, summary)
}

// SynthesizeSpeech converts text to audio via the provider's TTS. A nil
// return (no error) tells the caller to skip audio playback.
func (e *SummaryEngine) SynthesizeSpeech(ctx context.Context, text, voice string) []byte {
	if e.client == nil {
		e.logger.Warn("no generation client available for speech synthesis")
		metrics.SpeechRequestsTotal.WithLabelValues("unavailable").Inc()
		return nil
	}

	audio, err := e.client.Speech(ctx, &llm.SpeechRequest{Text: text, Voice: voice})
	if err != nil {
		e.logger.Warn("speech synthesis failed", zap.Error(err))
		metrics.SpeechRequestsTotal.WithLabelValues("error").Inc()
		return nil
	}

	metrics.SpeechRequestsTotal.WithLabelValues("success").Inc()
	return audio
}

// ClassifySentiment runs a keyword-count heuristic over the transcript.
// Ties and empty history resolve to neutral.
func (e *SummaryEngine) ClassifySentiment(history []model.Message) string {
	if len(history) == 0 {
		return "neutral"
	}

	var b strings.Builder
	for _, msg := range history {
		b.WriteString(strings.ToLower(msg.Text))
		b.WriteString(" ")
	}
	text := b.String()

	var positive, negative int
	for _, word := range positiveKeywords {
		if strings.Contains(text, word) {
			positive++
		}
	}
	for _, word := range negativeKeywords {
		if strings.Contains(text, word) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return "positive"
	case negative > positive:
		return "negative"
	default:
		return "neutral"
	}
}

// ExtractKeyPoints picks out messages touching a fixed topic-keyword set,
// truncated per message and capped at limit.
func (e *SummaryEngine) ExtractKeyPoints(history []model.Message, limit int) []string {
	if limit <= 0 {
		limit = 5
	}

	var points []string
	for _, msg := range history {
		lower := strings.ToLower(msg.Text)
		for _, keyword := range topicKeywords {
			if strings.Contains(lower, keyword) {
				points = append(points, fmt.Sprintf("%s: %s", msg.Speaker, snippet(msg.Text)))
				break
			}
		}
		if len(points) == limit {
			break
		}
	}
	return points
}

// summaryPrompt builds the structured prompt sent to the generation
// provider.
func summaryPrompt(history []model.Message, contextNote string) string {
	var lines []string
	for _, msg := range history {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", msg.Timestamp, msg.Speaker, msg.Text))
	}

	prompt := fmt.Sprintf(`You are an AI assistant that creates concise call summaries for warm transfers between customer service agents.

Please analyze the following conversation and create a professional summary that includes:
1. The caller's main issue or request
2. Key information discussed
3. Current status/resolution progress
4. Any important details the receiving agent should know

Conversation:
%s
`, strings.Join(lines, "\n"))

	if contextNote != "" {
		prompt += fmt.Sprintf("\nAdditional Context: %s\n", contextNote)
	}

	prompt += "\nPlease provide a clear, concise summary (2-3 sentences) that will help the receiving agent understand the situation and continue the conversation effectively.\n"
	return prompt
}

// fallbackSummary builds the deterministic extractive summary: first
// caller message, last agent message, and the exchange count. The
// caller/agent split compares the speaker field against "agent"
// case-insensitively.
func fallbackSummary(history []model.Message) string {
	if len(history) == 0 {
		return "No conversation history available."
	}

	var firstCaller, lastAgent string
	haveCaller := false
	for _, msg := range history {
		if strings.EqualFold(msg.Speaker, "agent") {
			lastAgent = msg.Text
		} else if !haveCaller {
			firstCaller = msg.Text
			haveCaller = true
		}
	}

	var parts []string
	if haveCaller {
		parts = append(parts, "Caller's main concern: "+snippet(firstCaller))
	}
	if lastAgent != "" {
		parts = append(parts, "Agent's last response: "+snippet(lastAgent))
	}
	parts = append(parts, fmt.Sprintf("Total messages exchanged: %d", len(history)))

	return strings.Join(parts, " | ")
}

// snippet truncates on rune boundaries so multi-byte text stays valid
// UTF-8 after the cut.
func snippet(text string) string {
	if runes := []rune(text); len(runes) > snippetLen {
		text = string(runes[:snippetLen])
	}
	return text + "..."
}
