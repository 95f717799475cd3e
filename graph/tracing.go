package graph

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/docschat/log"
)

// Span is a single traced unit of work.
type Span struct {
	ID    string
	Name  string
	Start time.Time
}

// Tracer receives spans for graph and node execution. Implementations must
// be safe for concurrent use.
type Tracer interface {
	StartSpan(ctx context.Context, name string) *Span
	EndSpan(ctx context.Context, span *Span, err error)
}

// NoopTracer discards all spans.
type NoopTracer struct{}

// StartSpan returns an empty span.
func (NoopTracer) StartSpan(ctx context.Context, name string) *Span { return &Span{Name: name} }

// EndSpan does nothing.
func (NoopTracer) EndSpan(ctx context.Context, span *Span, err error) {}

// LogTracer writes spans to a Logger. It stands in for a remote trace
// exporter: spans carry the configured project name so log aggregation can
// group runs, but nothing leaves the process.
type LogTracer struct {
	Logger  log.Logger
	Project string
}

// NewLogTracer creates a tracer logging under the given project name.
func NewLogTracer(logger log.Logger, project string) *LogTracer {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &LogTracer{Logger: logger, Project: project}
}

// StartSpan records the span start.
func (t *LogTracer) StartSpan(ctx context.Context, name string) *Span {
	span := &Span{
		ID:    uuid.New().String(),
		Name:  name,
		Start: time.Now(),
	}
	t.Logger.Debug("trace[%s] start %s id=%s", t.Project, span.Name, span.ID)
	return span
}

// EndSpan records the span end with its duration and outcome.
func (t *LogTracer) EndSpan(ctx context.Context, span *Span, err error) {
	if span == nil {
		return
	}
	elapsed := time.Since(span.Start)
	if err != nil {
		t.Logger.Warn("trace[%s] end %s id=%s duration=%s error=%v", t.Project, span.Name, span.ID, elapsed, err)
		return
	}
	t.Logger.Debug("trace[%s] end %s id=%s duration=%s", t.Project, span.Name, span.ID, elapsed)
}
