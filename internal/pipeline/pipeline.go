// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one research query end to end: the agent produces a
// raw answer, the normalizer types it, and the finalizer applies the image
// fallback and the food-content policy.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/agent"
	"github.com/pdiddy/research-assistant/internal/imagegen"
	"github.com/pdiddy/research-assistant/internal/normalize"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var (
	// ErrEmptyQuery is returned for a query that is blank after trimming.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrUpstream wraps failures of the agent executor.
	ErrUpstream = errors.New("agent did not produce a valid output")
)

// Recorder persists served responses. Failures are logged, not returned
// to the caller.
type Recorder interface {
	Record(ctx context.Context, query string, resp types.ResponseRecord) (types.HistoryEntry, error)
}

// Pipeline holds the collaborators shared by every request. It is built
// once at startup and is safe for concurrent use as long as its
// collaborators are.
type Pipeline struct {
	executor  agent.Executor
	finalizer *Finalizer
	recorder  Recorder
	logger    *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder stores every successful response.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithLogger sets the logger; the default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New returns a Pipeline using executor for answers and images for the
// fallback image.
func New(executor agent.Executor, images imagegen.Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		executor: executor,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.finalizer = &Finalizer{Images: images, Logger: p.logger}
	return p
}

// Handle answers query. It returns ErrEmptyQuery before doing any work for
// a blank query, an error wrapping ErrUpstream when the executor fails, and
// the normalizer's errors unchanged when the answer cannot be typed.
func (p *Pipeline) Handle(ctx context.Context, query string) (types.ResponseRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return types.ResponseRecord{}, ErrEmptyQuery
	}

	log := p.logger.With(zap.String("query", query))

	raw, err := p.executor.Execute(ctx, query)
	if err != nil {
		log.Error("agent execution failed", zap.Error(err))
		return types.ResponseRecord{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	log.Debug("agent answered", zap.Int("bytes", len(raw)))

	record, err := normalize.Normalize(raw)
	if err != nil {
		log.Error("normalizing agent output", zap.Error(err))
		return types.ResponseRecord{}, err
	}

	resp := p.finalizer.Finalize(ctx, record, query)

	if p.recorder != nil {
		// A produced answer is recorded even if the caller has gone away.
		if entry, err := p.recorder.Record(context.WithoutCancel(ctx), query, resp); err != nil {
			log.Warn("recording history", zap.Error(err))
		} else {
			log.Debug("recorded history", zap.String("id", entry.ID))
		}
	}

	return resp, nil
}
