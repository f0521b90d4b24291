package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/obsctl"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader("", zerolog.Nop()).Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, "en-US", cfg.Locale)
	assert.Equal(t, obsctl.OutputTypeRTMP, cfg.Output.Type)
	assert.Empty(t, cfg.Ingest.Listen)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, "obsctl.yaml", `
locale: de-DE
modules:
  dir: /opt/obs/obs-plugins
service:
  name: YouTube
  server: rtmp://a.rtmp.youtube.com/live2
  key: file-key
http:
  listen: 0.0.0.0:9000
ingest:
  listen: 127.0.0.1:1935
preflight: true
`)
	cfg, err := NewLoader(path, zerolog.Nop()).Load()
	require.NoError(t, err)
	assert.Equal(t, "de-DE", cfg.Locale)
	assert.Equal(t, "/opt/obs/obs-plugins", cfg.Modules.Dir)
	assert.Equal(t, "YouTube", cfg.Service.Name)
	assert.Equal(t, "file-key", cfg.Service.Key)
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTP.Listen)
	assert.Equal(t, "127.0.0.1:1935", cfg.Ingest.Listen)
	assert.Equal(t, "live", cfg.Ingest.App, "unset fields keep defaults")
	assert.True(t, cfg.Preflight)
	assert.Equal(t, obsctl.DefaultOutputName, cfg.Output.Name)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "obsctl.yml", "service:\n  key: file-key\nlocale: fr-FR\n")
	t.Setenv(EnvStreamKey, "env-key")
	t.Setenv(EnvPreflight, "true")
	t.Setenv(EnvLocale, "")

	cfg, err := NewLoader(path, zerolog.Nop()).Load()
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Service.Key)
	assert.True(t, cfg.Preflight)
	assert.Equal(t, "fr-FR", cfg.Locale, "empty env keeps the file value")
}

func TestLoadInvalidBoolEnv(t *testing.T) {
	t.Setenv(EnvLogConsole, "sometimes")
	cfg, err := NewLoader("", zerolog.Nop()).Load()
	require.NoError(t, err)
	assert.False(t, cfg.Log.Console)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, "obsctl.yaml", "service:\n  stream_key: abc\n")
	_, err := NewLoader(path, zerolog.Nop()).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownConfigField)
}

func TestLoadRejectsNonYAML(t *testing.T) {
	path := writeConfig(t, "obsctl.json", "{}")
	_, err := NewLoader(path, zerolog.Nop()).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoadRejectsMultipleDocuments(t *testing.T) {
	path := writeConfig(t, "obsctl.yaml", "locale: en-US\n---\nlocale: de-DE\n")
	_, err := NewLoader(path, zerolog.Nop()).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeConfig(t, "obsctl.yaml", "")
	cfg, err := NewLoader(path, zerolog.Nop()).Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"no locale", func(c *Config) { c.Locale = "" }, "locale is required"},
		{"relative modules dir", func(c *Config) { c.Modules.Dir = "plugins" }, "must be absolute"},
		{"no output type", func(c *Config) { c.Output.Type = " " }, "output.type is required"},
		{"bad level", func(c *Config) { c.Log.Level = "chatty" }, "log.level"},
		{"bad listen", func(c *Config) { c.HTTP.Listen = "8080" }, "http.listen"},
		{"ingest without app", func(c *Config) {
			c.Ingest.Listen = "127.0.0.1:1935"
			c.Ingest.App = "/"
		}, "ingest.app is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSessionOptions(t *testing.T) {
	cfg := Defaults()
	opts := cfg.SessionOptions(zerolog.Nop())
	assert.Nil(t, opts.Locator, "symbol lookup is the default")
	assert.Equal(t, obsctl.DefaultLayout, opts.Layout)

	cfg.Modules = ModulesConfig{Dir: "/opt/obs/obs-plugins", Binary: "/opt/obs/obs-outputs.so"}
	cfg.Preflight = true
	opts = cfg.SessionOptions(zerolog.Nop())
	assert.Equal(t, obsctl.StaticLocator("/opt/obs/obs-plugins"), opts.Locator)
	assert.Equal(t, "/opt/obs/obs-outputs.so", opts.Layout.Module.BinaryPath)
	assert.Equal(t, obsctl.DefaultLayout.Module.DataPath, opts.Layout.Module.DataPath)
	assert.True(t, opts.Preflight)
}

func TestConfigLogMasksKey(t *testing.T) {
	cfg := Defaults()
	cfg.Service.Key = "live_very_secret"

	var buf bytes.Buffer
	lg := zerolog.New(&buf)
	lg.Info().Object("config", cfg).Send()
	assert.NotContains(t, buf.String(), "live_very_secret")
	assert.Contains(t, buf.String(), `"key":"***"`)
	assert.Equal(t, "live_very_secret", cfg.Credentials().Key)
}
