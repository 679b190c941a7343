package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stmtfetch "github.com/porticus-lab/go-statement-fetch"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LOGIN_USERNAME", "")
	t.Setenv("LOGIN_PASSWORD", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, stmtfetch.DefaultPortalURL, cfg.PortalURL)
	assert.Equal(t, stmtfetch.DefaultOutputRoot, cfg.OutputDir)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
	assert.Equal(t, 5*time.Second, cfg.SettleDelay)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingCredentials)
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("LOGIN_USERNAME", "")
	t.Setenv("LOGIN_PASSWORD", "")
	path := writeEnv(t, `LOGIN_USERNAME=alice
LOGIN_PASSWORD=hunter2
HEADLESS=true
SETTLE_DELAY=2s
S3_BUCKET=statements
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.Username)
	assert.Equal(t, "hunter2", cfg.Password)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 2*time.Second, cfg.SettleDelay)
	assert.Equal(t, "statements", cfg.S3Bucket)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, stmtfetch.Credentials{Username: "alice", Password: "hunter2"}, cfg.Credentials())
}

func TestLoad_EnvironmentWins(t *testing.T) {
	path := writeEnv(t, "LOGIN_USERNAME=alice\nLOGIN_PASSWORD=hunter2\n")
	t.Setenv("LOGIN_USERNAME", "bob")
	t.Setenv("LOGIN_PASSWORD", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.Username)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"complete", Config{Username: "u", Password: "p"}, false},
		{"no username", Config{Password: "p"}, true},
		{"no password", Config{Username: "u"}, true},
		{"negative timeout", Config{Username: "u", Password: "p", Timeout: -time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSessionOptions(t *testing.T) {
	base := Config{Timeout: time.Minute, SettleDelay: time.Second}
	assert.Len(t, base.SessionOptions(), 3)

	full := base
	full.PortalURL = "http://127.0.0.1:8080/"
	full.ChromePath = "/usr/bin/chromium"
	full.AutoDownloadBrowser = true
	full.NoSandbox = true
	assert.Len(t, full.SessionOptions(), 7)
}
