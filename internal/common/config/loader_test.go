// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
database:
  postgres:
    host: localhost
    database: jobportal
    user: portal
  redis:
    address: localhost:6379
auth:
  jwt_secret: test-secret
`

// ==========================
// Load Tests
// ==========================

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "job-portal", cfg.App.Name)
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, ":5001", cfg.Server.Addr())
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "jobs", cfg.Database.Elasticsearch.JobsIndex)
	assert.Equal(t, ScreeningBackendPool, cfg.Screening.Backend)
	assert.Equal(t, 4, cfg.Screening.Concurrency)
	assert.Equal(t, 3, cfg.Screening.MaxAttempts)
	assert.Equal(t, 10000, cfg.Screening.WriteTimeout)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "gemini-1.5-flash", cfg.APIs.GenAI.Model)
	assert.Equal(t, 90*24*time.Hour, cfg.Auth.TokenTTL())
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("PORTAL_TEST_JWT", "from-env")

	cfg, err := LoadFromFile(writeConfig(t, `
database:
  postgres:
    host: localhost
    database: jobportal
    user: portal
  redis:
    address: localhost:6379
auth:
  jwt_secret: ${PORTAL_TEST_JWT}
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "missing postgres host",
			body: `
database:
  redis:
    address: localhost:6379
auth:
  jwt_secret: x
`,
			wantErr: "database.postgres.host is required",
		},
		{
			name: "zeebe backend without broker",
			body: minimalConfig + `
screening:
  backend: zeebe
`,
			wantErr: "camunda.broker_address is required",
		},
		{
			name: "unknown backend",
			body: minimalConfig + `
screening:
  backend: kafka
`,
			wantErr: "screening.backend must be",
		},
		{
			name: "stale_after inside a run's lifetime",
			body: minimalConfig + `
screening:
  run_timeout: 120000
  write_timeout: 10000
  stale_after: 90000
`,
			wantErr: "screening.stale_after (90000ms) must exceed run_timeout + write_timeout (130000ms)",
		},
		{
			name: "stale_after equal to a run's lifetime",
			body: minimalConfig + `
screening:
  run_timeout: 60000
  stale_after: 70000
`,
			wantErr: "screening.stale_after",
		},
		{
			name: "s3 without bucket",
			body: minimalConfig + `
integrations:
  aws:
    s3:
      enabled: true
`,
			wantErr: "integrations.aws.s3.bucket is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			t.Setenv("DB_USER", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAuthConfig_TokenTTL(t *testing.T) {
	assert.Equal(t, 2*time.Hour, AuthConfig{ExpiresIn: "2h"}.TokenTTL())
	assert.Equal(t, 7*24*time.Hour, AuthConfig{ExpiresIn: "7d"}.TokenTTL())
	assert.Equal(t, 24*time.Hour, AuthConfig{ExpiresIn: "soon"}.TokenTTL())
}

func TestGetWorkerConfig_FallsBackToDefaults(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"screen-application": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "screen-application"))
	assert.True(t, IsWorkerEnabled(cfg, "send-notification"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "send-notification").MaxJobsActive)
	assert.Equal(t, 2, GetWorkerConfig(cfg, "screen-application").MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
