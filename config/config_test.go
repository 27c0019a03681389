package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlane/agentd/llm"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "openai", cfg.LLM.Backend)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 6, cfg.Agent.MaxSteps)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9999"
  read_timeout: 15s
llm:
  backend: gollm
  provider: anthropic
  model: claude-sonnet-4-20250514
agent:
  max_steps: 3
  max_tool_calls: 2
  tools_allowlist: "search_docs, health"
  continue_on_tool_error: true
store:
  backend: redis
  redis_addr: "redis:6379"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout.Std())
	assert.Equal(t, "gollm", cfg.LLM.Backend)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.Agent.MaxSteps)
	assert.True(t, cfg.Agent.ContinueOnToolError)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.RedisAddr)

	// Unset sections keep their defaults.
	assert.Equal(t, 1000, cfg.Retrieval.ChunkSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
llm:
  model: file-model
`)
	t.Setenv("AGENTD_LLM_MODEL", "env-model")
	t.Setenv("AGENTD_LLM_API_KEY", "sk-env")
	t.Setenv("AGENTD_MAX_STEPS", "9")
	t.Setenv("AGENTD_DEBUG_TRACE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-model", cfg.LLM.Model)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, 9, cfg.Agent.MaxSteps)
	assert.True(t, cfg.Agent.DebugTraceDefault)
}

func TestAllowlistList(t *testing.T) {
	assert.Nil(t, Agent{}.AllowlistList())
	assert.Nil(t, Agent{ToolsAllowlist: "  "}.AllowlistList())
	assert.Equal(t,
		[]string{"search_docs", "health"},
		Agent{ToolsAllowlist: " search_docs , health ,, "}.AllowlistList())
}

func TestPolicies(t *testing.T) {
	a := Agent{MaxSteps: -1, MaxToolCalls: -4, ToolChoice: "", ToolsAllowlist: "health"}
	p := a.Policies()
	assert.Equal(t, 1, p.MaxSteps)
	assert.Equal(t, 0, p.MaxToolCalls)
	assert.Equal(t, llm.ToolChoiceAuto, p.ToolChoice)
	assert.Equal(t, []string{"health"}, p.Allowlist)
}
