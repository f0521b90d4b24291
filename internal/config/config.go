// Package config loads obsctl configuration from defaults, an optional YAML
// file and OBSCTL_* environment variables, in increasing precedence.
package config

import (
	"github.com/rs/zerolog"

	"github.com/thesyncim/obsctl"
)

// Config is the resolved process configuration.
type Config struct {
	Locale    string        `yaml:"locale"`
	Modules   ModulesConfig `yaml:"modules"`
	Output    OutputConfig  `yaml:"output"`
	Service   ServiceConfig `yaml:"service"`
	Log       LogConfig     `yaml:"log"`
	HTTP      HTTPConfig    `yaml:"http"`
	Ingest    IngestConfig  `yaml:"ingest"`
	Preflight bool          `yaml:"preflight"`
}

// ModulesConfig overrides module discovery. Empty fields keep the platform
// layout.
type ModulesConfig struct {
	Dir    string `yaml:"dir"`    // fixed modules directory; skips symbol lookup
	Binary string `yaml:"binary"` // module binary, relative to Dir unless absolute
	Data   string `yaml:"data"`   // module data dir, relative to Dir unless absolute
}

type OutputConfig struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

// ServiceConfig holds the ingest credentials. Key is a secret.
type ServiceConfig struct {
	Name   string `yaml:"name"`
	Server string `yaml:"server"`
	Key    string `yaml:"key"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// IngestConfig enables a local RTMP ingest that accepts the output's push.
// Empty Listen disables it.
type IngestConfig struct {
	Listen string `yaml:"listen"`
	App    string `yaml:"app"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Locale: obsctl.DefaultLocale,
		Output: OutputConfig{
			Type: obsctl.OutputTypeRTMP,
			Name: obsctl.DefaultOutputName,
		},
		Service: ServiceConfig{
			Name:   "Twitch",
			Server: "rtmp://live.twitch.tv/app",
		},
		Log:    LogConfig{Level: "info"},
		HTTP:   HTTPConfig{Listen: "127.0.0.1:8080"},
		Ingest: IngestConfig{App: "live"},
	}
}

// Layout returns the platform layout with configured module paths applied.
func (c Config) Layout() obsctl.Layout {
	layout := obsctl.DefaultLayout
	if c.Modules.Binary != "" {
		layout.Module.BinaryPath = c.Modules.Binary
	}
	if c.Modules.Data != "" {
		layout.Module.DataPath = c.Modules.Data
	}
	return layout
}

// SessionOptions converts c to session options logging through logger.
func (c Config) SessionOptions(logger zerolog.Logger) obsctl.Options {
	opts := obsctl.Options{
		Locale:     c.Locale,
		Layout:     c.Layout(),
		OutputType: c.Output.Type,
		OutputName: c.Output.Name,
		Logger:     logger,
		Preflight:  c.Preflight,
	}
	if c.Modules.Dir != "" {
		opts.Locator = obsctl.StaticLocator(c.Modules.Dir)
	}
	return opts
}

// Credentials returns the configured ingest credentials.
func (c Config) Credentials() obsctl.ServiceCredentials {
	return obsctl.ServiceCredentials{
		Service: c.Service.Name,
		Server:  c.Service.Server,
		Key:     c.Service.Key,
	}
}

// MarshalZerologObject logs the configuration with the stream key masked.
func (c Config) MarshalZerologObject(e *zerolog.Event) {
	e.Str("locale", c.Locale).
		Str("modules_dir", c.Modules.Dir).
		Str("output_type", c.Output.Type).
		Object("service", c.Credentials()).
		Str("log_level", c.Log.Level).
		Str("http_listen", c.HTTP.Listen).
		Str("ingest_listen", c.Ingest.Listen).
		Bool("preflight", c.Preflight)
}
