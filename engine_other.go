//go:build !darwin && !linux

package obsctl

// IsLibobsAvailable reports false: no binding exists for this platform.
func IsLibobsAvailable() bool { return false }

// LibobsVersion returns "".
func LibobsVersion() string { return "" }

// LibobsPath returns "".
func LibobsPath() string { return "" }

// NewEngine returns ErrUnsupportedPlatform.
func NewEngine() (Engine, error) {
	return nil, ErrUnsupportedPlatform
}
