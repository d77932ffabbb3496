// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/secrets"
	"github.com/pdiddy/research-assistant/pkg/types"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.read_timeout", 10*time.Second)

	v.SetDefault("agent.model", "gpt-4o-mini")
	v.SetDefault("agent.max_iterations", 25)
	v.SetDefault("agent.max_execution_time", 20*time.Second)
	v.SetDefault("agent.tools", []string{"wikipedia", "save_text_to_file", "fetch_recipe"})

	v.SetDefault("image.model", "dall-e-3")
	v.SetDefault("image.size", "1024x1024")

	v.SetDefault("tools.wikipedia.top_k", 1)
	v.SetDefault("tools.wikipedia.max_chars", 200)
	v.SetDefault("tools.save.path", "research_output.txt")

	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", "research-assistant/"+version)

	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", time.Hour)

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", "data/history.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// loadConfig decodes v into a Config and attaches API keys from the loaded
// secrets or the environment.
func loadConfig(v *viper.Viper, loaded map[string]string) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Agent.APIKey = secrets.Lookup(loaded, secrets.OpenAIKey)
	cfg.Tools.SpoonacularAPIKey = secrets.Lookup(loaded, secrets.SpoonacularKey)
	return cfg, nil
}
