package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
api:
  environment: test
  port: "9090"
  jwt_signing_key: test-signing-key
  allowed_cors_domains:
    - http://localhost:5173
database:
  driver: postgres
postgres:
  host: db
  user: ctf
  password: ctf
  db: scoring
scoring:
  pepper: 0123456789abcdef-pepper
  cooldown: 15s
workers:
  batch_size: 25
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, conf.API.AllowedCORSDomains)
	assert.Equal(t, "db", conf.Postgres.Host)
	assert.Equal(t, "5432", conf.Postgres.Port)
	assert.Equal(t, 15*time.Second, conf.Scoring.Cooldown)
	assert.Equal(t, 30, conf.Scoring.MaxAttempts)
	assert.Equal(t, 10, conf.Scoring.RateLimitMax)
	assert.Equal(t, time.Minute, conf.Scoring.RateLimitWindow)
	assert.Equal(t, 25, conf.Workers.BatchSize)
	assert.Equal(t, 10, conf.Workers.DLQMaxAttempts)
	assert.Equal(t, 15*time.Second, conf.Redis.TTL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SCORING_SCORING_MAX_ATTEMPTS", "5")
	t.Setenv("SCORING_API_PORT", "7000")

	conf, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 5, conf.Scoring.MaxAttempts)
	assert.Equal(t, "7000", conf.API.Port)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"short pepper", `
api: {port: "1", jwt_signing_key: k}
scoring: {pepper: short}
`},
		{"missing signing key", `
api: {port: "1"}
scoring: {pepper: 0123456789abcdef-pepper}
`},
		{"unknown driver", `
api: {port: "1", jwt_signing_key: k}
database: {driver: oracle}
scoring: {pepper: 0123456789abcdef-pepper}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestWatcherReturnsInitial(t *testing.T) {
	initial := ScoringConfig{MaxAttempts: 3}
	w := NewWatcher(writeConfig(t, sampleYAML), initial)
	assert.Equal(t, initial, w.Scoring())
}

func TestLoadOptionalSectionsAreNeverNil(t *testing.T) {
	conf, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	require.NotNil(t, conf.MySQL)
	require.NotNil(t, conf.Discord)
	require.NotNil(t, conf.Elastic)
	assert.Empty(t, conf.Discord.WebhookID)
	assert.Equal(t, "ctf_solves_v1", conf.Elastic.Index)
}
