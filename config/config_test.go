package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DWS_JWT_SECRET", "s3cret")
	t.Setenv("DWS_PORT", "9090")
	t.Setenv("DWS_DEDUPE_WINDOW", "5s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Dedupe.Window)
	assert.Equal(t, 15*time.Minute, cfg.Auth.UserTokenTTL)
	assert.Equal(t, 60*time.Minute, cfg.Auth.AdminTokenTTL)
	assert.Equal(t, "memory", cfg.Dedupe.Backend)
}

func TestLoadYAMLThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "dws.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "7000"
auth:
  jwt_secret: from-yaml
dedupe:
  backend: redis
  window: 2s
`), 0o600))
	t.Setenv("DWS_PORT", "7001")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7001", cfg.Server.Port)
	assert.Equal(t, "from-yaml", cfg.Auth.JWTSecret)
	assert.Equal(t, "redis", cfg.Dedupe.Backend)
	assert.Equal(t, 2*time.Second, cfg.Dedupe.Window)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DWS_JWT_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DWS_JWT_SECRET")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"unknown backend", func(c *Config) { c.Dedupe.Backend = "memcached" }, false},
		{"zero window", func(c *Config) { c.Dedupe.Window = 0 }, false},
		{"zero ttl", func(c *Config) { c.Auth.UserTokenTTL = 0 }, false},
		{"zero upload", func(c *Config) { c.Images.MaxUploadBytes = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			c.Auth.JWTSecret = "x"
			tc.mutate(c)
			err := c.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("DWS_TEST_INT", "abc")
	assert.Equal(t, 7, getInt("DWS_TEST_INT", 7))
	t.Setenv("DWS_TEST_DUR", "soon")
	assert.Equal(t, time.Second, getDuration("DWS_TEST_DUR", time.Second))
}
