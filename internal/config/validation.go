package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Validate checks cfg. The stream key is not required here: a missing key
// surfaces as a configure failure when the output is created.
func Validate(cfg Config) error {
	var errs []error
	if strings.TrimSpace(cfg.Locale) == "" {
		errs = append(errs, errors.New("locale is required"))
	}
	if cfg.Modules.Dir != "" && !filepath.IsAbs(cfg.Modules.Dir) {
		errs = append(errs, fmt.Errorf("modules.dir must be absolute: %q", cfg.Modules.Dir))
	}
	if strings.TrimSpace(cfg.Output.Type) == "" {
		errs = append(errs, errors.New("output.type is required"))
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if err := validateListen("http.listen", cfg.HTTP.Listen); err != nil {
		errs = append(errs, err)
	}
	if cfg.Ingest.Listen != "" {
		if err := validateListen("ingest.listen", cfg.Ingest.Listen); err != nil {
			errs = append(errs, err)
		}
		if strings.Trim(cfg.Ingest.App, "/") == "" {
			errs = append(errs, errors.New("ingest.app is required when ingest.listen is set"))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func validateListen(field, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", field)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}
