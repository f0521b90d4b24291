package obsctl

import (
	"errors"
	"fmt"
)

// Kind classifies a session failure.
type Kind int

const (
	KindNone Kind = iota
	KindAlreadyInitialized
	KindNotInitialized
	KindNotConfigured
	KindEngineStartup
	KindModuleOpen
	KindModuleInit
	KindConfigure
	KindStart
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAlreadyInitialized:
		return "already_initialized"
	case KindNotInitialized:
		return "not_initialized"
	case KindNotConfigured:
		return "not_configured"
	case KindEngineStartup:
		return "engine_startup"
	case KindModuleOpen:
		return "module_open"
	case KindModuleInit:
		return "module_init"
	case KindConfigure:
		return "configure"
	case KindStart:
		return "start"
	default:
		return "unknown"
	}
}

// Fatal reports whether a failure of kind k ends the session. Fatal failures
// require a fresh session; the others can be retried.
func (k Kind) Fatal() bool {
	switch k {
	case KindEngineStartup, KindModuleOpen, KindModuleInit:
		return true
	}
	return false
}

// Sentinel errors, one per Kind. Use errors.Is against a *SessionError.
var (
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("not initialized")
	ErrNotConfigured      = errors.New("not configured")
	ErrEngineStartup      = errors.New("engine failed to start")
	ErrModuleOpen         = errors.New("failed to open output module")
	ErrModuleInit         = errors.New("failed to initialize output module")
	ErrConfigure          = errors.New("failed to configure output")
	ErrStart              = errors.New("output failed to start")
)

var kindSentinels = map[Kind]error{
	KindAlreadyInitialized: ErrAlreadyInitialized,
	KindNotInitialized:     ErrNotInitialized,
	KindNotConfigured:      ErrNotConfigured,
	KindEngineStartup:      ErrEngineStartup,
	KindModuleOpen:         ErrModuleOpen,
	KindModuleInit:         ErrModuleInit,
	KindConfigure:          ErrConfigure,
	KindStart:              ErrStart,
}

// SessionError is returned by every failing Session operation.
type SessionError struct {
	Op   string
	Kind Kind
	Code int // engine code, 0 when the engine did not report one
	Err  error
}

func (e *SessionError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, kindSentinels[e.Kind])
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the kind sentinel and the underlying cause.
func (e *SessionError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := kindSentinels[e.Kind]; ok {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the Kind of err, or KindNone if err is not a *SessionError.
func KindOf(err error) Kind {
	var se *SessionError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindNone
}

func sessionErr(op string, kind Kind, code int, err error) *SessionError {
	return &SessionError{Op: op, Kind: kind, Code: code, Err: err}
}
