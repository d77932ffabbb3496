// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/agent"
	"github.com/pdiddy/research-assistant/internal/cache"
	"github.com/pdiddy/research-assistant/internal/history"
	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/internal/imagegen"
	"github.com/pdiddy/research-assistant/internal/logging"
	"github.com/pdiddy/research-assistant/internal/pipeline"
	"github.com/pdiddy/research-assistant/internal/tools"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// cachedTools are pure lookups whose outputs may be reused across queries.
var cachedTools = map[string]bool{
	tools.NameWikipedia: true,
	tools.NameRecipe:    true,
}

// wrapCached decorates the tools listed in cachedTools with store and
// returns the others unchanged.
func wrapCached(toolset []agent.Tool, store cache.Store, ttl time.Duration, logger *zap.Logger) []agent.Tool {
	out := make([]agent.Tool, len(toolset))
	for i, t := range toolset {
		if cachedTools[t.Name()] {
			out[i] = cache.Wrap(t, store, ttl, logger)
			continue
		}
		out[i] = t
	}
	return out
}

// app holds the long-lived collaborators built once per process.
type app struct {
	cfg      types.Config
	logger   *zap.Logger
	pipeline *pipeline.Pipeline
	history  *history.Store

	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("closing resource", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// newApp wires the pipeline from cfg.
func newApp(ctx context.Context, cfg types.Config) (*app, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	if cfg.Agent.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (.secrets/openai-api-key or OPENAI_API_KEY)")
	}

	httpClient := httputil.NewClient(cfg.HTTP)
	oaCfg := openai.DefaultConfig(cfg.Agent.APIKey)
	oaCfg.HTTPClient = httpClient
	oaClient := openai.NewClientWithConfig(oaCfg)

	images := imagegen.NewDallE(oaClient, cfg.Image)

	toolset, err := tools.Build(cfg.Agent.Tools, tools.Deps{
		HTTP:   httpClient,
		Images: images,
		Config: cfg.Tools,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Cache.RedisURL != "" {
		store, err := cache.NewRedisStore(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		toolset = wrapCached(toolset, store, cfg.Cache.TTL, logger)
		logger.Info("tool cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	}

	executor, err := agent.NewOpenAIExecutor(oaClient, cfg.Agent, toolset, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if cfg.History.Enabled {
		store, err := history.NewStore(cfg.History)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.history = store
		a.closers = append(a.closers, store.Close)
		opts = append(opts, pipeline.WithRecorder(store))
		fmt.Fprintf(os.Stderr, "Recording history in %s\n", cfg.History.Path)
	}

	a.pipeline = pipeline.New(executor, images, opts...)
	return a, nil
}
