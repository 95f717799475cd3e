package workflow

import (
	"errors"

	"github.com/smallnest/docschat/graph"
)

// Workflow node names.
const (
	NodeRouter           = "router_node"
	NodeGeneralAnswer    = "general_answer_node"
	NodeRelevantDocs     = "relevant_docs_node"
	NodeAnswerGeneration = "answer_generation_node"
)

// New builds and compiles the conversation graph:
//
//	router_node ──(general)──> general_answer_node ──> END
//	     └──(retriever)──> relevant_docs_node ──> answer_generation_node ──> END
func New(deps Dependencies) (*graph.Runnable[ConversationState], error) {
	switch {
	case deps.LLM == nil:
		return nil, errors.New("workflow: LLM is required")
	case deps.Retriever == nil:
		return nil, errors.New("workflow: retriever is required")
	case deps.Filter == nil:
		return nil, errors.New("workflow: document filter is required")
	case deps.Reranker == nil:
		return nil, errors.New("workflow: reranker is required")
	}

	nodes := NewNodes(deps)

	g := graph.NewStateGraph[ConversationState]()
	g.AddNode(NodeRouter, "Classify the question as retriever or general", nodes.Router)
	g.AddNode(NodeGeneralAnswer, "Answer chit-chat from conversation context", nodes.GeneralAnswer)
	g.AddNode(NodeRelevantDocs, "Retrieve documentation relevant to the question", nodes.RelevantDocs)
	g.AddNode(NodeAnswerGeneration, "Answer the question from the retrieved context", nodes.AnswerGeneration)

	g.SetEntryPoint(NodeRouter)

	g.AddConditionalEdge(NodeRouter, RouteQuestion)
	g.AddEdge(NodeRelevantDocs, NodeAnswerGeneration)
	g.AddEdge(NodeAnswerGeneration, graph.END)
	g.AddEdge(NodeGeneralAnswer, graph.END)

	return g.Compile()
}
