package obsctl

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ResultKind enumerates Controller outcomes.
type ResultKind int

const (
	ResultInitialized ResultKind = iota
	ResultAlreadyInitialized
	ResultInitFailed
	ResultConfigured
	ResultConfigureFailed
	ResultNotInitialized
	ResultStarted
	ResultStartFailed
	ResultStopped
	ResultCleared
	ResultNotConfigured
)

var resultText = map[ResultKind]string{
	ResultInitialized:        "successfully initialized engine",
	ResultAlreadyInitialized: "engine already initialized",
	ResultInitFailed:         "failed to init engine",
	ResultConfigured:         "output configured",
	ResultConfigureFailed:    "failed to configure stream",
	ResultNotInitialized:     "engine context isn't initialized",
	ResultStarted:            "stream started",
	ResultStartFailed:        "stream failed to start",
	ResultStopped:            "stream stopped",
	ResultCleared:            "engine context cleared",
	ResultNotConfigured:      "output not configured",
}

func (k ResultKind) String() string {
	if s, ok := resultText[k]; ok {
		return s
	}
	return "unknown result"
}

// Result is the typed outcome of a Controller operation.
type Result struct {
	OK     bool       `json:"ok"`
	Kind   ResultKind `json:"-"`
	Status string     `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// String renders the human-readable status, with detail when present.
func (r Result) String() string {
	if r.Detail == "" {
		return r.Kind.String()
	}
	return r.Kind.String() + ": " + r.Detail
}

func result(ok bool, kind ResultKind, err error) Result {
	r := Result{OK: ok, Kind: kind, Status: kind.String()}
	if err != nil {
		r.Detail = err.Error()
	}
	return r
}

// EngineFactory opens the engine binding for a new session.
type EngineFactory func() (Engine, error)

// Controller is the host-facing surface: init, start, stop and cleanup of a
// single session. It owns at most one Session and never panics on misuse.
type Controller struct {
	newEngine EngineFactory
	opts      Options
	creds     ServiceCredentials
	logger    zerolog.Logger

	mu      sync.Mutex
	session *Session
}

// NewController returns a Controller that configures sessions with creds.
func NewController(newEngine EngineFactory, creds ServiceCredentials, opts Options) *Controller {
	return &Controller{
		newEngine: newEngine,
		opts:      opts,
		creds:     creds,
		logger:    opts.Logger.With().Str("component", "controller").Logger(),
	}
}

// Init brings the engine up and configures the output.
func (c *Controller) Init(ctx context.Context) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return c.report(result(false, ResultAlreadyInitialized, nil))
	}

	engine, err := c.newEngine()
	if err != nil {
		return c.report(result(false, ResultInitFailed, err))
	}
	s, err := NewSession(engine, c.opts)
	if err != nil {
		if errors.Is(err, ErrAlreadyInitialized) {
			return c.report(result(false, ResultAlreadyInitialized, nil))
		}
		return c.report(result(false, ResultInitFailed, err))
	}
	if err := s.BringUp(ctx); err != nil {
		s.Teardown(ctx)
		return c.report(result(false, ResultInitFailed, err))
	}
	c.session = s

	if err := s.ConfigureOutput(ctx, c.creds); err != nil {
		return c.report(result(false, ResultConfigureFailed, err))
	}
	return c.report(result(true, ResultInitialized, nil))
}

// Configure replaces the output's credentials on an initialized engine.
func (c *Controller) Configure(ctx context.Context, creds ServiceCredentials) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return c.report(result(false, ResultNotInitialized, nil))
	}
	if err := c.session.ConfigureOutput(ctx, creds); err != nil {
		return c.report(result(false, ResultConfigureFailed, err))
	}
	c.creds = creds
	return c.report(result(true, ResultConfigured, nil))
}

// Start starts the stream.
func (c *Controller) Start(ctx context.Context) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return c.report(result(false, ResultNotInitialized, nil))
	}
	if err := c.session.Start(ctx); err != nil {
		switch KindOf(err) {
		case KindNotInitialized:
			return c.report(result(false, ResultNotInitialized, err))
		case KindNotConfigured:
			return c.report(result(false, ResultNotConfigured, err))
		}
		return c.report(result(false, ResultStartFailed, err))
	}
	return c.report(result(true, ResultStarted, nil))
}

// Stop stops the stream.
func (c *Controller) Stop(ctx context.Context) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return c.report(result(false, ResultNotInitialized, nil))
	}
	c.session.Stop(ctx)
	return c.report(result(true, ResultStopped, nil))
}

// Cleanup tears the session down and drops it.
func (c *Controller) Cleanup(ctx context.Context) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.session.Teardown(ctx)
		c.session = nil
	}
	return c.report(result(true, ResultCleared, nil))
}

// Snapshot returns the session view, or false when there is no session.
func (c *Controller) Snapshot() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Snapshot{}, false
	}
	return c.session.Snapshot(), true
}

func (c *Controller) report(r Result) Result {
	ev := c.logger.Info()
	if !r.OK {
		ev = c.logger.Warn()
	}
	ev.Str("event", "controller.result").
		Bool("ok", r.OK).
		Str("detail", r.Detail).
		Msg(r.Kind.String())
	return r
}
