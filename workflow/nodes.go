package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/docschat/log"
	"github.com/smallnest/docschat/rag"
)

var (
	// ErrEmptyResponse is returned when the LLM produces no choices.
	ErrEmptyResponse = errors.New("llm returned an empty response")
	// ErrNoRouteDecision is returned when the router response carries no
	// route_query tool call.
	ErrNoRouteDecision = errors.New("model response contains no route_query tool call")
)

const routeToolName = "route_query"

// routeTool is the single function the router model is forced to call.
// Its schema constrains the category to the two known values.
var routeTool = llms.Tool{
	Type: "function",
	Function: &llms.FunctionDefinition{
		Name:        routeToolName,
		Description: "Route the query to general or vectorstore.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"category": map[string]any{
					"type":        "string",
					"enum":        []string{string(CategoryRetriever), string(CategoryGeneral)},
					"description": "Route the query to general or vectorstore.",
				},
			},
			"required": []string{"category"},
		},
	},
}

var routeToolChoice = llms.ToolChoice{
	Type:     "function",
	Function: &llms.FunctionReference{Name: routeToolName},
}

// DocumentFilter removes unwanted results between retrieval and
// reranking.
type DocumentFilter interface {
	Filter(ctx context.Context, results []rag.DocumentSearchResult) ([]rag.DocumentSearchResult, error)
}

// Dependencies carries everything the workflow nodes need. All fields
// except Logger are required.
type Dependencies struct {
	LLM       llms.Model
	Retriever rag.Retriever
	Filter    DocumentFilter
	Reranker  rag.Reranker
	Logger    log.Logger
}

// Nodes implements the four workflow nodes over the injected
// dependencies.
type Nodes struct {
	llm       llms.Model
	retriever rag.Retriever
	filter    DocumentFilter
	reranker  rag.Reranker
	logger    log.Logger
}

// NewNodes wires the node implementations. A nil Logger falls back to
// the no-op logger.
func NewNodes(deps Dependencies) *Nodes {
	logger := deps.Logger
	if logger == nil {
		logger = &log.NoOpLogger{}
	}

	return &Nodes{
		llm:       deps.LLM,
		retriever: deps.Retriever,
		filter:    deps.Filter,
		reranker:  deps.Reranker,
		logger:    logger,
	}
}

// Router classifies the question as retriever or general through a
// forced route_query tool call and stores the category on the state.
func (n *Nodes) Router(ctx context.Context, state ConversationState) (ConversationState, error) {
	history := formatHistory(state.History(historyWindow))

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, fmt.Sprintf(routerSystemPrompt, history)),
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(humanQuestionTemplate, state.LastQuestion())),
	}

	response, err := n.llm.GenerateContent(ctx, messages,
		llms.WithTools([]llms.Tool{routeTool}),
		llms.WithToolChoice(routeToolChoice),
		llms.WithTemperature(0),
	)
	if err != nil {
		return state, fmt.Errorf("failed to route question: %w", err)
	}

	category, err := parseRouteDecision(response)
	if err != nil {
		return state, err
	}

	state.Category = category
	n.logger.Info("routed to category: %s", category)

	return state, nil
}

// GeneralAnswer responds to chit-chat from conversation context and
// appends the reply as a new assistant message.
func (n *Nodes) GeneralAnswer(ctx context.Context, state ConversationState) (ConversationState, error) {
	n.logger.Info("processing general knowledge query")

	question := state.LastQuestion()
	history := formatHistory(state.History(historyWindow))

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, fmt.Sprintf(generalSystemPrompt, question, history)),
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(humanQuestionTemplate, question)),
	}

	response, err := n.llm.GenerateContent(ctx, messages)
	if err != nil {
		return state, fmt.Errorf("failed to generate general answer: %w", err)
	}

	content, err := firstChoiceContent(response)
	if err != nil {
		return state, err
	}

	state.AddAIMessage(content)
	n.logger.Info("generated general knowledge response")

	return state, nil
}

// RelevantDocs runs the retrieval pipeline for the current question:
// multi-query retrieval, redundancy filtering, reranking, then joins
// the passages into the state's retrieval context. Zero passages leave
// the context empty and the node succeeds.
func (n *Nodes) RelevantDocs(ctx context.Context, state ConversationState) (ConversationState, error) {
	n.logger.Info("retrieving relevant documents")

	question := state.LastQuestion()

	results, err := n.retriever.Retrieve(ctx, question)
	if err != nil {
		return state, fmt.Errorf("failed to retrieve documents: %w", err)
	}

	results, err = n.filter.Filter(ctx, results)
	if err != nil {
		return state, fmt.Errorf("failed to filter documents: %w", err)
	}

	results, err = n.reranker.Rerank(ctx, question, results)
	if err != nil {
		return state, fmt.Errorf("failed to rerank documents: %w", err)
	}

	contents := make([]string, len(results))
	for i, result := range results {
		contents[i] = result.Document.Content
	}
	state.RelevantDocs = strings.Join(contents, "\n\n")

	n.logger.Info("retrieved %d relevant documents", len(results))

	return state, nil
}

// AnswerGeneration answers the question from the retrieved context and
// appends the reply as a new assistant message. An empty context still
// calls the LLM; the prompt makes it refuse.
func (n *Nodes) AnswerGeneration(ctx context.Context, state ConversationState) (ConversationState, error) {
	n.logger.Info("generating answer from documents")

	question := state.LastQuestion()
	history := formatHistory(state.History(historyWindow))

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, fmt.Sprintf(answerSystemPrompt, state.RelevantDocs, history, question)),
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(humanQuestionTemplate, question)),
	}

	response, err := n.llm.GenerateContent(ctx, messages)
	if err != nil {
		return state, fmt.Errorf("failed to generate answer: %w", err)
	}

	content, err := firstChoiceContent(response)
	if err != nil {
		return state, err
	}

	state.AddAIMessage(content)

	return state, nil
}

// parseRouteDecision extracts and validates the category from the
// forced tool call.
func parseRouteDecision(response *llms.ContentResponse) (Category, error) {
	if response == nil || len(response.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	for _, call := range response.Choices[0].ToolCalls {
		if call.FunctionCall == nil || call.FunctionCall.Name != routeToolName {
			continue
		}

		var decision struct {
			Category string `json:"category"`
		}
		if err := json.Unmarshal([]byte(call.FunctionCall.Arguments), &decision); err != nil {
			return "", fmt.Errorf("failed to parse %s arguments: %w", routeToolName, err)
		}

		return ParseCategory(decision.Category)
	}

	return "", ErrNoRouteDecision
}

func firstChoiceContent(response *llms.ContentResponse) (string, error) {
	if response == nil || len(response.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return response.Choices[0].Content, nil
}

// formatHistory renders messages as "role: content" lines for prompt
// interpolation.
func formatHistory(messages []Message) string {
	var b strings.Builder

	for i, m := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
	}

	return b.String()
}
