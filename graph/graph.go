package graph

import (
	"context"
	"fmt"
)

// END is the terminal pseudo-node. Routing to END stops execution.
const END = "END"

// Node is a named unit of work over the state type S.
type Node[S any] struct {
	Name        string
	Description string
	Function    func(ctx context.Context, state S) (S, error)
}

// Edge connects two nodes by name.
type Edge struct {
	From string
	To   string
}

// StateGraph is a directed graph of nodes operating on a shared state of
// type S. Build it with AddNode/AddEdge/AddConditionalEdge, set an entry
// point, then Compile it into a Runnable.
//
// Example:
//
//	type CounterState struct{ Count int }
//
//	g := graph.NewStateGraph[CounterState]()
//	g.AddNode("increment", "Increment counter", func(ctx context.Context, s CounterState) (CounterState, error) {
//		s.Count++
//		return s, nil
//	})
//	g.AddEdge("increment", graph.END)
//	g.SetEntryPoint("increment")
//	runnable, err := g.Compile()
type StateGraph[S any] struct {
	nodes            map[string]Node[S]
	edges            []Edge
	conditionalEdges map[string]func(ctx context.Context, state S) string
	entryPoint       string
}

// NewStateGraph creates an empty graph for the state type S.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]Node[S]),
		conditionalEdges: make(map[string]func(ctx context.Context, state S) string),
	}
}

// AddNode registers a node under the given name. Adding a name twice
// replaces the previous node.
func (g *StateGraph[S]) AddNode(name, description string, fn func(ctx context.Context, state S) (S, error)) {
	g.nodes[name] = Node[S]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds a static edge between the "from" and "to" nodes.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{From: from, To: to})
}

// AddConditionalEdge routes from a node to the node name returned by
// condition at runtime. A conditional edge takes precedence over static
// edges from the same node.
func (g *StateGraph[S]) AddConditionalEdge(from string, condition func(ctx context.Context, state S) string) {
	g.conditionalEdges[from] = condition
}

// SetEntryPoint sets the node execution starts from.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// Compile validates the graph and returns a Runnable. The entry point must
// be set and must name a registered node; static edges must start at
// registered nodes and end at registered nodes or END.
func (g *StateGraph[S]) Compile() (*Runnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: entry point %s", ErrNodeNotFound, g.entryPoint)
	}
	for _, edge := range g.edges {
		if _, ok := g.nodes[edge.From]; !ok {
			return nil, fmt.Errorf("%w: edge source %s", ErrNodeNotFound, edge.From)
		}
		if edge.To == END {
			continue
		}
		if _, ok := g.nodes[edge.To]; !ok {
			return nil, fmt.Errorf("%w: edge target %s", ErrNodeNotFound, edge.To)
		}
	}

	return &Runnable[S]{graph: g, tracer: NoopTracer{}}, nil
}

// Config carries per-invocation options.
type Config struct {
	// ThreadID identifies the conversation for checkpoint persistence
	// and resumption.
	ThreadID string
}

// WithThreadID builds a Config carrying the given thread ID.
//
// Example:
//
//	result, err := runnable.Invoke(ctx, state, graph.WithThreadID("conversation-1"))
func WithThreadID(threadID string) *Config {
	return &Config{ThreadID: threadID}
}

func threadIDFrom(configs []*Config) string {
	for _, cfg := range configs {
		if cfg != nil && cfg.ThreadID != "" {
			return cfg.ThreadID
		}
	}
	return ""
}

// Runnable is a compiled StateGraph ready for execution.
type Runnable[S any] struct {
	graph     *StateGraph[S]
	listeners []Listener[S]
	tracer    Tracer
}

// AddListener attaches a listener notified around every node execution.
func (r *Runnable[S]) AddListener(l Listener[S]) {
	r.listeners = append(r.listeners, l)
}

// SetTracer sets the tracer used for graph and node spans.
func (r *Runnable[S]) SetTracer(t Tracer) {
	if t == nil {
		t = NoopTracer{}
	}
	r.tracer = t
}

// withListeners returns a shallow copy with extra listeners attached,
// leaving the receiver untouched. Used for per-invocation hooks.
func (r *Runnable[S]) withListeners(ls ...Listener[S]) *Runnable[S] {
	clone := &Runnable[S]{graph: r.graph, tracer: r.tracer}
	clone.listeners = append(clone.listeners, r.listeners...)
	clone.listeners = append(clone.listeners, ls...)
	return clone
}

// Invoke executes the graph from the entry point until END and returns the
// final state. Node errors stop execution and are wrapped with the node
// name. Nodes receive the caller's ctx; there are no retries and no
// per-node timeouts.
func (r *Runnable[S]) Invoke(ctx context.Context, initialState S, configs ...*Config) (S, error) {
	var zero S

	state := initialState
	current := r.graph.entryPoint

	graphSpan := r.tracer.StartSpan(ctx, "graph")
	for current != END {
		node, ok := r.graph.nodes[current]
		if !ok {
			err := fmt.Errorf("%w: %s", ErrNodeNotFound, current)
			r.tracer.EndSpan(ctx, graphSpan, err)
			return zero, err
		}

		for _, l := range r.listeners {
			l.OnNodeStart(ctx, current, state)
		}

		result, err := r.runNode(ctx, node, state)

		for _, l := range r.listeners {
			l.OnNodeEnd(ctx, current, result, err)
		}

		if err != nil {
			wrapped := fmt.Errorf("error in node %s: %w", current, err)
			r.tracer.EndSpan(ctx, graphSpan, wrapped)
			return zero, wrapped
		}
		state = result

		next, err := r.nextNode(ctx, current, state)
		if err != nil {
			r.tracer.EndSpan(ctx, graphSpan, err)
			return zero, err
		}
		current = next
	}

	for _, l := range r.listeners {
		l.OnGraphEnd(ctx, state)
	}
	r.tracer.EndSpan(ctx, graphSpan, nil)

	return state, nil
}

// runNode executes a single node, converting panics into errors so a
// misbehaving node cannot take down the caller.
func (r *Runnable[S]) runNode(ctx context.Context, node Node[S], state S) (result S, err error) {
	span := r.tracer.StartSpan(ctx, "node:"+node.Name)
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
		r.tracer.EndSpan(ctx, span, err)
	}()

	return node.Function(ctx, state)
}

// nextNode resolves the follow-up node. Conditional edges win over static
// ones; a node with neither is an error.
func (r *Runnable[S]) nextNode(ctx context.Context, current string, state S) (string, error) {
	if condition, ok := r.graph.conditionalEdges[current]; ok {
		next := condition(ctx, state)
		if next == "" {
			return "", fmt.Errorf("%w: from %s", ErrEmptyRouteResult, current)
		}
		return next, nil
	}

	for _, edge := range r.graph.edges {
		if edge.From == current {
			return edge.To, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, current)
}
