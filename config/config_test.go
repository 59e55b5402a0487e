package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_HOST", "MODEL_CALL_TIMEOUT", "MAX_CONCURRENT_CHUNKS", "CRON_ENABLED", "ARTIFACT_RETENTION", "QUESTION_TYPE"} {
		t.Setenv(key, "")
	}

	env, err := Get()
	require.NoError(t, err)
	assert.Equal(t, 8080, env.PORT)
	assert.Equal(t, "localhost", env.DB_HOST)
	assert.Equal(t, 2*time.Minute, env.MODEL_CALL_TIMEOUT)
	assert.Equal(t, 3, env.MAX_CONCURRENT_CHUNKS)
	assert.Equal(t, "MULTIPLECHOICE", env.QUESTION_TYPE)
	assert.True(t, env.CRON_ENABLED)
	assert.Zero(t, env.ARTIFACT_RETENTION)
}

func TestGetOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MODEL_CALL_TIMEOUT", "45s")
	t.Setenv("RATE_LIMIT_COOLDOWN", "2.5")
	t.Setenv("MAX_RETRIES", "not-a-number")
	t.Setenv("CRON_ENABLED", "false")
	t.Setenv("ARTIFACT_RETENTION", "720h")

	env, err := Get()
	require.NoError(t, err)
	assert.Equal(t, 9000, env.PORT)
	assert.Equal(t, 45*time.Second, env.MODEL_CALL_TIMEOUT)
	assert.Equal(t, 2500*time.Millisecond, env.RATE_LIMIT_COOLDOWN)
	assert.Equal(t, 5, env.MAX_RETRIES, "invalid numbers fall back to the default")
	assert.False(t, env.CRON_ENABLED)
	assert.Equal(t, 30*24*time.Hour, env.ARTIFACT_RETENTION)
}
