// Package graph implements the typed state graph that drives docschat's
// conversation pipeline.
//
// A StateGraph[S] is built from named nodes (functions from state to state),
// static edges, and conditional edges whose target is computed from the
// state at runtime. Compile validates the wiring and produces a Runnable;
// Invoke walks the graph from the entry point until END, threading the
// state through every node.
//
//	g := graph.NewStateGraph[ConversationState]()
//	g.AddNode("router_node", "Classify the query", nodes.Router)
//	g.AddNode("general_answer_node", "Chit-chat reply", nodes.GeneralAnswer)
//	g.AddConditionalEdge("router_node", edges.RouteQuestion)
//	g.AddEdge("general_answer_node", graph.END)
//	g.SetEntryPoint("router_node")
//	runnable, err := g.Compile()
//
// Execution is sequential and makes no reliability decisions of its own:
// node errors are wrapped with the node name and returned, panics become
// errors, and cancellation is whatever the caller's context says.
//
// Checkpointing is layered on top with WithCheckpointing, persisting state
// snapshots per thread through a store.CheckpointStore so conversations
// survive restarts. Tracers and listeners observe execution without
// altering it.
package graph
