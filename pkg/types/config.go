package types

import "time"

// HTTPConfig holds shared settings for outbound HTTP calls (Wikipedia,
// Spoonacular, OpenAI).
type HTTPConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent with every outbound request. Wikipedia rejects
	// anonymous clients, so this should identify the deployment.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ServerConfig holds the HTTP endpoint settings.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// CORSOrigins lists allowed browser origins; "*" allows all.
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" mapstructure:"cors_origins"`

	// ReadTimeout bounds reading the request body.
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
}

// AgentConfig holds settings for the tool-calling agent.
type AgentConfig struct {
	// Model is the chat model identifier (default "gpt-4o-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the OpenAI API key. Loaded from secrets, never from YAML.
	APIKey string `json:"-" yaml:"-" mapstructure:"-"`

	// MaxIterations caps model round trips per query (default 25).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations" mapstructure:"max_iterations"`

	// MaxExecutionTime caps the wall-clock time of one query (default 20s).
	MaxExecutionTime time.Duration `json:"max_execution_time" yaml:"max_execution_time" mapstructure:"max_execution_time"`

	// Tools names the tools offered to the model.
	Tools []string `json:"tools" yaml:"tools" mapstructure:"tools"`
}

// ImageConfig holds settings for DALL·E image generation.
type ImageConfig struct {
	Model string `json:"model" yaml:"model" mapstructure:"model"`
	Size  string `json:"size" yaml:"size" mapstructure:"size"`
}

// WikipediaConfig holds settings for the wikipedia tool.
type WikipediaConfig struct {
	// TopK is the number of pages summarized per lookup (default 1).
	TopK int `json:"top_k" yaml:"top_k" mapstructure:"top_k"`

	// MaxChars truncates the tool output (default 200).
	MaxChars int `json:"max_chars" yaml:"max_chars" mapstructure:"max_chars"`
}

// SaveConfig holds settings for the save_text_to_file tool.
type SaveConfig struct {
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ToolsConfig groups per-tool settings.
type ToolsConfig struct {
	Wikipedia WikipediaConfig `json:"wikipedia" yaml:"wikipedia" mapstructure:"wikipedia"`
	Save      SaveConfig      `json:"save" yaml:"save" mapstructure:"save"`

	// SpoonacularAPIKey is loaded from secrets.
	SpoonacularAPIKey string `json:"-" yaml:"-" mapstructure:"-"`
}

// CacheConfig enables the Redis tool cache when RedisURL is set.
type CacheConfig struct {
	RedisURL string        `json:"redis_url" yaml:"redis_url" mapstructure:"redis_url"`
	TTL      time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// HistoryConfig enables the SQLite response history.
type HistoryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig selects the zap logger flavor.
type LogConfig struct {
	Level       string `json:"level" yaml:"level" mapstructure:"level"`
	Development bool   `json:"development" yaml:"development" mapstructure:"development"`
}

// Config is the full configuration tree.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Agent   AgentConfig   `json:"agent" yaml:"agent" mapstructure:"agent"`
	Image   ImageConfig   `json:"image" yaml:"image" mapstructure:"image"`
	Tools   ToolsConfig   `json:"tools" yaml:"tools" mapstructure:"tools"`
	HTTP    HTTPConfig    `json:"http" yaml:"http" mapstructure:"http"`
	Cache   CacheConfig   `json:"cache" yaml:"cache" mapstructure:"cache"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}
