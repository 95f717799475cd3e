package workflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestParseCategory(t *testing.T) {
	category, err := ParseCategory("retriever")
	require.NoError(t, err)
	assert.Equal(t, CategoryRetriever, category)

	category, err = ParseCategory("general")
	require.NoError(t, err)
	assert.Equal(t, CategoryGeneral, category)

	for _, invalid := range []string{"", "vectorstore", "Retriever", "GENERAL"} {
		_, err := ParseCategory(invalid)
		assert.Error(t, err, "category %q should be rejected", invalid)
	}
}

func TestNewConversationState(t *testing.T) {
	state := NewConversationState("what is DSPy?")

	require.Len(t, state.Messages, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, state.Messages[0].Role)
	assert.Equal(t, "what is DSPy?", state.Messages[0].Content)
	assert.Empty(t, state.Category)
	assert.Empty(t, state.RelevantDocs)
}

func TestConversationState_LastQuestion(t *testing.T) {
	var state ConversationState
	assert.Equal(t, "", state.LastQuestion())

	state.AddHumanMessage("first")
	state.AddAIMessage("reply")
	state.AddHumanMessage("second")

	assert.Equal(t, "second", state.LastQuestion())
}

func TestConversationState_History(t *testing.T) {
	var state ConversationState
	for _, content := range []string{"m1", "m2", "m3", "m4", "m5", "m6"} {
		state.AddHumanMessage(content)
	}

	history := state.History(4)
	require.Len(t, history, 4)
	assert.Equal(t, "m3", history[0].Content)
	assert.Equal(t, "m6", history[3].Content)

	assert.Len(t, state.History(10), 6)
	assert.Empty(t, state.History(0))
}

func TestConversationState_AddMessages(t *testing.T) {
	var state ConversationState

	state.AddHumanMessage("hello")
	state.AddAIMessage("hi there")

	require.Len(t, state.Messages, 2)
	assert.Equal(t, llms.ChatMessageTypeHuman, state.Messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, state.Messages[1].Role)
}

func TestConversationState_JSONRoundTrip(t *testing.T) {
	state := ConversationState{
		Messages: []Message{
			{Role: llms.ChatMessageTypeHuman, Content: "how do I use Predict?"},
			{Role: llms.ChatMessageTypeAI, Content: "Predict is a DSPy module."},
		},
		Category:     CategoryRetriever,
		RelevantDocs: "passage one\n\npassage two",
	}

	data, err := json.Marshal(state)
	require.NoError(t, err)

	var restored ConversationState
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, state, restored)
}
