package llm

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSystemMessages(t *testing.T) {
	system, messages := splitSystemMessages([]ChatMessage{
		{Role: "system", Content: "You summarize calls."},
		{Role: "user", Content: "Summarize this conversation."},
		{Role: "assistant", Content: "Here is the summary."},
	})

	require.Len(t, system, 1)
	assert.Equal(t, "You summarize calls.", system[0].Text.Value)

	require.Len(t, messages, 2)
	assert.Equal(t, anthropic.MessageParamRole("user"), messages[0].Role.Value)
	assert.Equal(t, anthropic.MessageParamRole("assistant"), messages[1].Role.Value)
}

func TestSplitSystemMessagesWithoutSystem(t *testing.T) {
	system, messages := splitSystemMessages([]ChatMessage{
		{Role: "user", Content: "Hello"},
	})

	assert.Empty(t, system)
	require.Len(t, messages, 1)
	assert.Equal(t, anthropic.MessageParamRole("user"), messages[0].Role.Value)
}
