package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Loader resolves configuration with precedence ENV > file > defaults.
type Loader struct {
	path   string
	logger zerolog.Logger
}

// NewLoader creates a loader for the YAML file at path. An empty path skips
// the file.
func NewLoader(path string, logger zerolog.Logger) *Loader {
	return &Loader{path: path, logger: logger.With().Str("component", "config").Logger()}
}

// Load returns the validated configuration.
func (l *Loader) Load() (Config, error) {
	cfg := Defaults()

	if l.path != "" {
		if err := l.loadFile(&cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	l.mergeEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadFile decodes the YAML file over cfg. Unknown fields are rejected.
func (l *Loader) loadFile(cfg *Config) error {
	path := filepath.Clean(l.path)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- the path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "not found in type") {
			return fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("config file contains multiple documents or trailing content")
	}

	l.logger.Debug().Str("path", path).Msg("loaded config file")
	return nil
}

func (l *Loader) mergeEnv(cfg *Config) {
	lg := l.logger
	cfg.Locale = parseString(lg, EnvLocale, cfg.Locale)
	cfg.Modules.Dir = parseString(lg, EnvModulesDir, cfg.Modules.Dir)
	cfg.Modules.Binary = parseString(lg, EnvModuleBinary, cfg.Modules.Binary)
	cfg.Modules.Data = parseString(lg, EnvModuleData, cfg.Modules.Data)
	cfg.Output.Type = parseString(lg, EnvOutputType, cfg.Output.Type)
	cfg.Output.Name = parseString(lg, EnvOutputName, cfg.Output.Name)
	cfg.Service.Name = parseString(lg, EnvService, cfg.Service.Name)
	cfg.Service.Server = parseString(lg, EnvServer, cfg.Service.Server)
	cfg.Service.Key = parseString(lg, EnvStreamKey, cfg.Service.Key)
	cfg.Log.Level = parseString(lg, EnvLogLevel, cfg.Log.Level)
	cfg.Log.Console = parseBool(lg, EnvLogConsole, cfg.Log.Console)
	cfg.HTTP.Listen = parseString(lg, EnvHTTPListen, cfg.HTTP.Listen)
	cfg.Ingest.Listen = parseString(lg, EnvIngestListen, cfg.Ingest.Listen)
	cfg.Ingest.App = parseString(lg, EnvIngestApp, cfg.Ingest.App)
	cfg.Preflight = parseBool(lg, EnvPreflight, cfg.Preflight)
}
