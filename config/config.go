// Package config loads the service configuration from a YAML file with
// environment-variable overrides for secrets and deploy-time settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/promptlane/agentd/agent"
	"github.com/promptlane/agentd/llm"
)

// Config is the root of the service configuration.
type Config struct {
	Server    Server    `yaml:"server"`
	LLM       LLM       `yaml:"llm"`
	Agent     Agent     `yaml:"agent"`
	Retrieval Retrieval `yaml:"retrieval"`
	Store     Store     `yaml:"store"`
	Logging   Logging   `yaml:"logging"`
}

// Duration decodes YAML values like "30s" or bare seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(time.Duration(n) * time.Second)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Server holds the HTTP listener settings.
type Server struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// LLM selects and configures the model backend.
type LLM struct {
	// Backend is "openai" for the native chat-completions client or
	// "gollm" for the multi-provider adapter.
	Backend     string  `yaml:"backend"`
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// Agent holds the loop policy knobs.
type Agent struct {
	MaxSteps            int    `yaml:"max_steps"`
	MaxToolCalls        int    `yaml:"max_tool_calls"`
	ToolChoice          string `yaml:"tool_choice"`
	ToolsAllowlist      string `yaml:"tools_allowlist"`
	DebugTraceDefault   bool   `yaml:"debug_trace_default"`
	ContinueOnToolError bool   `yaml:"continue_on_tool_error"`
}

// Retrieval holds chunking and search settings.
type Retrieval struct {
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	TopK         int    `yaml:"top_k"`
	MaxTopK      int    `yaml:"max_top_k"`
	SnippetChars int    `yaml:"snippet_chars"`
	EmbeddingDim int    `yaml:"embedding_dim"`
	Namespace    string `yaml:"namespace"`
}

// Store selects the document store backend.
type Store struct {
	// Backend is "memory" or "redis".
	Backend   string `yaml:"backend"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
	RedisPass string `yaml:"redis_password"`
}

// Logging configures the structured logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(120 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		LLM: LLM{
			Backend:     "openai",
			Provider:    "openai",
			Model:       "gpt-4.1-mini",
			MaxTokens:   1024,
			Temperature: 0.2,
			TimeoutSecs: 60,
		},
		Agent: Agent{
			MaxSteps:     6,
			MaxToolCalls: 10,
			ToolChoice:   "auto",
		},
		Retrieval: Retrieval{
			ChunkSize:    1000,
			ChunkOverlap: 150,
			TopK:         5,
			MaxTopK:      20,
			SnippetChars: 500,
			EmbeddingDim: 512,
			Namespace:    "default",
		},
		Store: Store{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the config file at path, layered over Default, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values from the environment. Secrets are only
// ever read from here in production deployments.
func (c *Config) applyEnv() {
	setString(&c.Server.Addr, "AGENTD_ADDR")
	setString(&c.LLM.Backend, "AGENTD_LLM_BACKEND")
	setString(&c.LLM.Provider, "AGENTD_LLM_PROVIDER")
	setString(&c.LLM.Model, "AGENTD_LLM_MODEL")
	setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	setString(&c.LLM.APIKey, "AGENTD_LLM_API_KEY")
	setString(&c.LLM.BaseURL, "AGENTD_LLM_BASE_URL")
	setInt(&c.Agent.MaxSteps, "AGENTD_MAX_STEPS")
	setInt(&c.Agent.MaxToolCalls, "AGENTD_MAX_TOOL_CALLS")
	setString(&c.Agent.ToolsAllowlist, "AGENTD_TOOLS_ALLOWLIST")
	setBool(&c.Agent.DebugTraceDefault, "AGENTD_DEBUG_TRACE")
	setBool(&c.Agent.ContinueOnToolError, "AGENTD_CONTINUE_ON_TOOL_ERROR")
	setString(&c.Store.Backend, "AGENTD_STORE_BACKEND")
	setString(&c.Store.RedisAddr, "AGENTD_REDIS_ADDR")
	setString(&c.Store.RedisPass, "AGENTD_REDIS_PASSWORD")
	setString(&c.Logging.Level, "AGENTD_LOG_LEVEL")
	setString(&c.Logging.Format, "AGENTD_LOG_FORMAT")
}

// AllowlistList splits the comma-separated allowlist, dropping blanks.
func (a Agent) AllowlistList() []string {
	if strings.TrimSpace(a.ToolsAllowlist) == "" {
		return nil
	}
	parts := strings.Split(a.ToolsAllowlist, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Policies converts the agent section into loop policies.
func (a Agent) Policies() agent.Policies {
	return agent.Policies{
		MaxSteps:            a.MaxSteps,
		MaxToolCalls:        a.MaxToolCalls,
		ToolChoice:          llm.ToolChoice(a.ToolChoice),
		Allowlist:           a.AllowlistList(),
		DebugTraceDefault:   a.DebugTraceDefault,
		ContinueOnToolError: a.ContinueOnToolError,
	}.Clamp()
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
