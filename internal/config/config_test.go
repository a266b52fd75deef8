package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no stray config.yaml or .env is read.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)
	t.Setenv("BOMA_SECURITY_JWTSECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "s3cret", cfg.Security.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.Security.TokenTTL)
	assert.Equal(t, 10, cfg.Security.PasswordCost)
	assert.Equal(t, 15*time.Minute, cfg.Security.LoginWindow)
	assert.Equal(t, "boma:events", cfg.Events.Stream)
	assert.Equal(t, 30*time.Second, cfg.Worker.ClaimInterval)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadRequiresSecret(t *testing.T) {
	inTempDir(t)
	t.Setenv("BOMA_SECURITY_JWTSECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "jwtsecret")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := inTempDir(t)
	yaml := []byte(`
environment: staging
http:
  port: 9000
database:
  driver: memory
security:
  jwtsecret: from-file
  tokenttl: 24h
allowcorsorigins: "https://a.example,https://b.example"
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("BOMA_HTTP_PORT", "9100")
	t.Setenv("BOMA_REDIS_ADDR", "127.0.0.1:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 9100, cfg.HTTP.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "from-file", cfg.Security.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Security.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowCORSOrigins)
	assert.True(t, cfg.RedisEnabled())
}

func TestLoadDotEnv(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BOMA_SECURITY_JWTSECRET=dotenv-secret\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("BOMA_SECURITY_JWTSECRET") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dotenv-secret", cfg.Security.JWTSecret)
}

func TestValidateDriver(t *testing.T) {
	cfg := AppConfig{Security: SecurityConfig{JWTSecret: "x"}, Database: DatabaseConfig{Driver: "sqlite"}}
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = DriverPostgres
	assert.ErrorContains(t, cfg.Validate(), "postgresdsn")

	cfg.Database.PostgresDSN = "postgres://localhost/boma"
	assert.NoError(t, cfg.Validate())
}
