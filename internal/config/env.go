package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Environment keys, highest precedence.
const (
	EnvLocale       = "OBSCTL_LOCALE"
	EnvModulesDir   = "OBSCTL_MODULES_DIR"
	EnvModuleBinary = "OBSCTL_MODULE_BINARY"
	EnvModuleData   = "OBSCTL_MODULE_DATA"
	EnvOutputType   = "OBSCTL_OUTPUT_TYPE"
	EnvOutputName   = "OBSCTL_OUTPUT_NAME"
	EnvService      = "OBSCTL_SERVICE"
	EnvServer       = "OBSCTL_SERVER"
	EnvStreamKey    = "OBSCTL_STREAM_KEY"
	EnvLogLevel     = "OBSCTL_LOG_LEVEL"
	EnvLogConsole   = "OBSCTL_LOG_CONSOLE"
	EnvHTTPListen   = "OBSCTL_HTTP_LISTEN"
	EnvIngestListen = "OBSCTL_INGEST_LISTEN"
	EnvIngestApp    = "OBSCTL_INGEST_APP"
	EnvPreflight    = "OBSCTL_PREFLIGHT"
)

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "key") || strings.Contains(k, "secret") || strings.Contains(k, "token")
}

// parseString reads key from the environment or returns defaultValue. An
// empty variable counts as unset.
func parseString(logger zerolog.Logger, key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if isSensitive(key) {
		ev.Bool("sensitive", true).Msg("using environment variable")
	} else {
		ev.Str("value", value).Msg("using environment variable")
	}
	return value
}

func parseBool(logger zerolog.Logger, key string, defaultValue bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", value).
			Bool("default", defaultValue).
			Msg("invalid boolean in environment, using default")
		return defaultValue
	}
	return b
}
