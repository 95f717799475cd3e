package graph

import (
	"context"

	"github.com/smallnest/docschat/log"
)

// Listener receives hooks around node execution and graph completion.
// Listeners must not mutate the state they are handed.
type Listener[S any] interface {
	OnNodeStart(ctx context.Context, nodeName string, state S)
	OnNodeEnd(ctx context.Context, nodeName string, state S, err error)
	OnGraphEnd(ctx context.Context, state S)
}

// LoggingListener logs node transitions through the injected logger.
type LoggingListener[S any] struct {
	Logger log.Logger
}

// NewLoggingListener creates a listener that logs each step. A nil logger
// falls back to the package-level default.
func NewLoggingListener[S any](logger log.Logger) *LoggingListener[S] {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &LoggingListener[S]{Logger: logger}
}

// OnNodeStart logs the node about to run.
func (l *LoggingListener[S]) OnNodeStart(ctx context.Context, nodeName string, state S) {
	l.Logger.Debug("entering node %s", nodeName)
}

// OnNodeEnd logs the node outcome.
func (l *LoggingListener[S]) OnNodeEnd(ctx context.Context, nodeName string, state S, err error) {
	if err != nil {
		l.Logger.Error("node %s failed: %v", nodeName, err)
		return
	}
	l.Logger.Debug("node %s completed", nodeName)
}

// OnGraphEnd logs graph completion.
func (l *LoggingListener[S]) OnGraphEnd(ctx context.Context, state S) {
	l.Logger.Debug("graph completed")
}
