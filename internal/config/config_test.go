package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "LLM_PROVIDER", "LLM_API_KEY", "OPENAI_API_KEY", "NATS_SUBJECT_PREFIX", "GRAVITY_INTERVAL", "BELIEF_DECAY_RATE", "JOB_WORKERS", "RATE_LIMIT_BURST"} {
		t.Setenv(k, "")
	}

	assert.Equal(t, ":8080", ServerAddr())
	assert.Equal(t, "openai", LLMProvider())
	assert.Equal(t, "", LLMAPIKey())
	assert.Equal(t, "ghost", NATSSubjectPrefix())
	assert.Equal(t, 6*time.Hour, GravityInterval())
	assert.Equal(t, 0.01, BeliefDecayRate())
	assert.Equal(t, 4, JobWorkers())
	assert.Equal(t, 20, RateLimitBurst())
}

func TestOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GRAVITY_INTERVAL", "90m")
	t.Setenv("BELIEF_DECAY_RATE", "0.05")
	t.Setenv("JOB_WORKERS", "-2")
	t.Setenv("TENSION_CACHE_TTL", "not-a-duration")

	assert.Equal(t, ":9090", ServerAddr())
	assert.Equal(t, 90*time.Minute, GravityInterval())
	assert.Equal(t, 0.05, BeliefDecayRate())
	assert.Equal(t, 4, JobWorkers())
	assert.Equal(t, 5*time.Minute, TensionCacheTTL())
}

func TestLLMAPIKey_ProviderFallback(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	assert.Equal(t, "ant-key", LLMAPIKey())

	t.Setenv("LLM_API_KEY", "shared")
	assert.Equal(t, "shared", LLMAPIKey())

	t.Setenv("LLM_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "mock")
	assert.Equal(t, "", LLMAPIKey())
}

func TestLoad_ReadsEnvAndSecret(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("NATS_SUBJECT_PREFIX=ghost-test\n"), 0o600))
	require.NoError(t, os.WriteFile(envFile+".secret", []byte("ADMIN_API_KEY=from-secret\n"), 0o600))

	t.Setenv("GHOST_ENV", envFile)
	// Registered so t.Setenv restores the original state after Load sets them.
	t.Setenv("NATS_SUBJECT_PREFIX", "")
	t.Setenv("ADMIN_API_KEY", "")
	require.NoError(t, os.Unsetenv("NATS_SUBJECT_PREFIX"))
	require.NoError(t, os.Unsetenv("ADMIN_API_KEY"))

	require.NoError(t, Load())
	assert.Equal(t, "ghost-test", NATSSubjectPrefix())
	assert.Equal(t, "from-secret", AdminAPIKey())
}

func TestNewLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	logger, err := NewLogger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	t.Setenv("LOG_LEVEL", "loud")
	_, err = NewLogger(false)
	assert.Error(t, err)
}
