package obsctl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// Settings keys understood by the engine's RTMP output.
const (
	SettingService = "service"
	SettingServer  = "server"
	SettingKey     = "key"
)

// PlaceholderKey is the non-functional stream key some templates ship with.
const PlaceholderKey = "CHANGEME"

// ServiceCredentials bind an output to a remote ingest service.
type ServiceCredentials struct {
	Service string // provider name, e.g. "Twitch"
	Server  string // ingest URI, e.g. "rtmp://live.twitch.tv/app"
	Key     string // stream key; never logged
}

// Validate checks the credentials are usable.
func (c ServiceCredentials) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Service) == "" {
		errs = append(errs, errors.New("service is required"))
	}
	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err)
	}
	switch strings.TrimSpace(c.Key) {
	case "":
		errs = append(errs, errors.New("stream key is required"))
	case PlaceholderKey:
		errs = append(errs, errors.New("stream key is the placeholder value"))
	}
	return errors.Join(errs...)
}

func validateServer(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("server is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	switch u.Scheme {
	case "rtmp", "rtmps":
	default:
		return fmt.Errorf("server: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("server: missing host")
	}
	return nil
}

// String renders the credentials with the key masked.
func (c ServiceCredentials) String() string {
	return fmt.Sprintf("%s %s key=%s", c.Service, c.Server, maskKey(c.Key))
}

// MarshalZerologObject logs the credentials with the key masked.
func (c ServiceCredentials) MarshalZerologObject(e *zerolog.Event) {
	e.Str("service", c.Service).
		Str("server", c.Server).
		Str("key", maskKey(c.Key))
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	return "***"
}
