package graph

import "errors"

var (
	// ErrEntryPointNotSet is returned by Compile when no entry point was set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when execution reaches a node name that
	// was never added to the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when a node finishes and neither a
	// static nor a conditional edge leads anywhere.
	ErrNoOutgoingEdge = errors.New("no outgoing edge")

	// ErrEmptyRouteResult is returned when a conditional edge yields an
	// empty node name.
	ErrEmptyRouteResult = errors.New("conditional edge returned empty next node")
)
