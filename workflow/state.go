// Package workflow implements the conversational question answering
// pipeline: a router classifies each question as chit-chat or a
// documentation query, chit-chat is answered from conversation context,
// and documentation queries go through retrieval before a grounded
// answer is generated.
package workflow

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/docschat/memory"
)

// Message is one conversation turn, JSON-serializable for
// checkpointing.
type Message struct {
	Role    llms.ChatMessageType `json:"role"`
	Content string               `json:"content"`
}

// Category is the routing decision for a question.
type Category string

const (
	// CategoryRetriever marks questions needing document retrieval.
	CategoryRetriever Category = "retriever"
	// CategoryGeneral marks chit-chat answerable without retrieval.
	CategoryGeneral Category = "general"
)

// ParseCategory validates a routing decision. Anything outside the two
// known categories is an error, never silently defaulted.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryRetriever:
		return CategoryRetriever, nil
	case CategoryGeneral:
		return CategoryGeneral, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// historyWindow is how many trailing messages the prompts include.
const historyWindow = 4

// ConversationState is the state threaded through the workflow graph.
type ConversationState struct {
	// Messages is the ordered conversation transcript.
	Messages []Message `json:"messages"`
	// Category is the routing decision for the current turn. A value
	// left over from a previous turn carries no meaning.
	Category Category `json:"category,omitempty"`
	// RelevantDocs holds the concatenated retrieval context for the
	// current turn. Empty for general turns.
	RelevantDocs string `json:"relevant_docs,omitempty"`
}

// NewConversationState starts a conversation with a single question.
func NewConversationState(question string) ConversationState {
	var state ConversationState
	state.AddHumanMessage(question)
	return state
}

// LastQuestion returns the content of the most recent message, or ""
// for an empty conversation.
func (s ConversationState) LastQuestion() string {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[len(s.Messages)-1].Content
}

// History returns the last n messages, or all of them when fewer exist.
func (s ConversationState) History(n int) []Message {
	return memory.LastN(s.Messages, n)
}

// AddHumanMessage appends a user message.
func (s *ConversationState) AddHumanMessage(content string) {
	s.Messages = append(s.Messages, Message{
		Role:    llms.ChatMessageTypeHuman,
		Content: content,
	})
}

// AddAIMessage appends an assistant message.
func (s *ConversationState) AddAIMessage(content string) {
	s.Messages = append(s.Messages, Message{
		Role:    llms.ChatMessageTypeAI,
		Content: content,
	})
}
