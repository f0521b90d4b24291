package obsctl

import (
	"errors"
	"fmt"
)

// Engine is the process-wide media engine (libobs) as seen by a Session.
//
// Implementations are provided by the purego binding (default), the cgo
// binding (built with CGO_ENABLED=1), and test fakes in obstest. All calls
// are synchronous; the Session serializes them.
type Engine interface {
	// SetLogHandler routes every engine log record to emit.
	SetLogHandler(emit func(level LogLevel, message string))

	// Startup initializes the engine with a locale and module config path.
	Startup(locale, modulesDir string) error

	// Shutdown releases the engine. Safe to call after a failed Startup.
	Shutdown()

	// SignalHandler returns the engine's global signal handler.
	SignalHandler() SignalHandlerRef

	// SymbolImage returns the path of the image that exports the engine's
	// startup symbol, or an error when symbol introspection is unavailable.
	SymbolImage() (string, error)

	// OpenModule opens a module binary. Failures carry a *ModuleError.
	OpenModule(binaryPath, dataPath string) (ModuleHandle, error)

	// InitModule runs the module's load entry point.
	InitModule(m ModuleHandle) error

	// LogLoadedModules asks the engine to log every loaded module.
	LogLoadedModules()

	// OutputTypes enumerates the registered output type ids.
	OutputTypes() []string

	// NewSettings allocates an empty settings object.
	NewSettings() (Settings, error)

	// CreateOutput creates a named output of typeID bound to settings.
	CreateOutput(typeID, name string, settings Settings) (Output, error)
}

// SignalHandlerRef is a weak, non-owning reference to the engine's signal
// handler. It is never dereferenced by this package.
type SignalHandlerRef uintptr

// ModuleHandle is an opaque engine module pointer.
type ModuleHandle uintptr

// Settings is an engine-owned key/value object used to build outputs.
type Settings interface {
	SetString(key, value string)
	Release()
}

// Output is one configured destination.
type Output interface {
	// Start begins streaming. The error carries the engine's last error text.
	Start() error
	Stop()
	Release()
}

// Module open codes reported by libobs (obs_open_module).
const (
	ModuleSuccess         = 0
	ModuleErrorGeneric    = -1
	ModuleFileNotFound    = -2
	ModuleMissingExports  = -3
	ModuleIncompatibleVer = -4
	ModuleHardcodedSkip   = -5
)

// ModuleError reports a failed module operation with the engine's numeric code.
type ModuleError struct {
	Op   string // "open" or "init"
	Path string
	Code int
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("module %s %s: %s (code %d)", e.Op, e.Path, moduleCodeText(e.Code), e.Code)
}

func moduleCodeText(code int) string {
	switch code {
	case ModuleSuccess:
		return "success"
	case ModuleErrorGeneric:
		return "generic error"
	case ModuleFileNotFound:
		return "file not found"
	case ModuleMissingExports:
		return "missing exports"
	case ModuleIncompatibleVer:
		return "incompatible version"
	case ModuleHardcodedSkip:
		return "skipped"
	default:
		return "unknown module error"
	}
}

// ModuleCode extracts the engine code from err, or ModuleErrorGeneric.
func ModuleCode(err error) int {
	var me *ModuleError
	if errors.As(err, &me) {
		return me.Code
	}
	return ModuleErrorGeneric
}

// ErrUnsupportedPlatform is returned by engine bindings that cannot load
// libobs on the running platform.
var ErrUnsupportedPlatform = errors.New("obsctl: platform not supported")
