package obsctl

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultLocale     = "en-US"
	DefaultOutputName = "RTMP Stream"
)

// Options configure a Session.
type Options struct {
	Locale     string
	Locator    Locator // nil: SymbolLocator over the session's engine
	Layout     Layout  // zero: DefaultLayout
	OutputType string
	OutputName string

	// Sink receives engine log records. nil: ZerologSink(Logger).
	Sink   LogSink
	Logger zerolog.Logger

	// Preflight dials the ingest server before creating the output.
	Preflight bool
	// Probe replaces ProbeServer for preflight checks.
	Probe func(ctx context.Context, server string) error
}

func (o Options) withDefaults(engine Engine) Options {
	if o.Locale == "" {
		o.Locale = DefaultLocale
	}
	if o.Layout == (Layout{}) {
		o.Layout = DefaultLayout
	}
	if o.Locator == nil {
		o.Locator = SymbolLocator{Engine: engine, Layout: o.Layout}
	}
	if o.OutputType == "" {
		o.OutputType = OutputTypeRTMP
	}
	if o.OutputName == "" {
		o.OutputName = DefaultOutputName
	}
	if o.Sink == nil {
		o.Sink = ZerologSink(o.Logger)
	}
	if o.Probe == nil {
		o.Probe = ProbeServer
	}
	return o
}

// Session owns the process-wide engine and its single output.
//
// All methods are safe for concurrent use; calls are serialized. Stop and
// Teardown never fail.
type Session struct {
	id     string
	opts   Options
	engine Engine
	logger zerolog.Logger

	mu         sync.Mutex
	state      State
	engineUp   bool
	modulesDir string
	module     ModuleDescriptor
	signals    SignalHandlerRef
	output     Output
	creds      ServiceCredentials
	holdsSlot  bool
}

var (
	liveMu sync.Mutex
	live   *Session
)

// NewSession creates the process's session over engine. Only one session may
// be live at a time: a second call before the first is torn down (or has
// failed bring-up) returns ErrAlreadyInitialized.
func NewSession(engine Engine, opts Options) (*Session, error) {
	if engine == nil {
		return nil, errors.New("obsctl: nil engine")
	}

	id := uuid.NewString()
	opts = opts.withDefaults(engine)
	s := &Session{
		id:     id,
		opts:   opts,
		engine: engine,
		logger: opts.Logger.With().Str("session_id", id).Logger(),
		state:  StateUninitialized,
	}

	liveMu.Lock()
	defer liveMu.Unlock()
	if live != nil {
		return nil, sessionErr("new_session", KindAlreadyInitialized, 0, nil)
	}
	live = s
	s.holdsSlot = true
	setStateGauge(StateUninitialized)
	return s, nil
}

// releaseSlot frees the process-wide session slot. Caller holds s.mu.
func (s *Session) releaseSlot() {
	if !s.holdsSlot {
		return
	}
	liveMu.Lock()
	if live == s {
		live = nil
	}
	liveMu.Unlock()
	s.holdsSlot = false
}

// ID returns the session id used in logs.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HasOutput reports whether an output object is held.
func (s *Session) HasOutput() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output != nil
}

// Snapshot is a point-in-time view of a session. The stream key is never
// included.
type Snapshot struct {
	ID         string `json:"id"`
	State      State  `json:"state"`
	ModulesDir string `json:"modules_dir"`
	Module     string `json:"module,omitempty"`
	OutputType string `json:"output_type"`
	Service    string `json:"service,omitempty"`
	Server     string `json:"server,omitempty"`
	HasOutput  bool   `json:"has_output"`
}

// Snapshot returns the current session view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:         s.id,
		State:      s.state,
		ModulesDir: s.modulesDir,
		Module:     s.module.Name,
		OutputType: s.opts.OutputType,
		Service:    s.creds.Service,
		Server:     s.creds.Server,
		HasOutput:  s.output != nil,
	}
}

// setState moves the machine to `to`. An illegal edge is a bug in this file.
func (s *Session) setState(to State) {
	from := s.state
	if !canTransition(from, to) {
		panic(&transitionError{from: from, to: to})
	}
	s.state = to
	recordTransition(from, to)
	s.logger.Debug().
		Str("event", "session.transition").
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("session state changed")
}

func (s *Session) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		ll := l.With().Str("session_id", s.id).Logger()
		return &ll
	}
	return &s.logger
}

// BringUp starts the engine and loads the output module, in order: locate
// modules, install the log bridge, engine startup, capture the signal
// handler, open and init the module. Any failure after startup shuts the
// engine down and leaves the session Failed.
func (s *Session) BringUp(ctx context.Context) error {
	const op = "bring_up"
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := s.log(ctx)

	if s.state != StateUninitialized {
		return sessionErr(op, KindAlreadyInitialized, 0, nil)
	}
	s.setState(StateBringingUp)

	s.modulesDir = s.opts.Locator.Locate()
	if s.modulesDir == Unsupported {
		logger.Warn().
			Str("event", "modules.unsupported").
			Msg("modules directory cannot be located on this platform; continuing without it")
	} else {
		logger.Info().
			Str("event", "modules.located").
			Str("modules_dir", s.modulesDir).
			Msg("loading modules")
	}

	InstallLogSink(s.opts.Sink)
	s.engine.SetLogHandler(emit)

	if err := s.engine.Startup(s.opts.Locale, s.modulesDir); err != nil {
		logger.Error().Err(err).
			Str("event", "engine.startup_failed").
			Str("locale", s.opts.Locale).
			Msg("engine failed to start")
		s.fail()
		return sessionErr(op, KindEngineStartup, 0, err)
	}
	s.engineUp = true
	s.signals = s.engine.SignalHandler()

	s.module = s.opts.Layout.Module.Resolve(s.modulesDir)
	handle, err := s.engine.OpenModule(s.module.BinaryPath, s.module.DataPath)
	if err != nil {
		code := ModuleCode(err)
		logger.Error().Err(err).
			Str("event", "module.open_failed").
			Str("module", s.module.Name).
			Str("path", s.module.BinaryPath).
			Int("code", code).
			Msg("failed to load output module")
		s.fail()
		return sessionErr(op, KindModuleOpen, code, err)
	}
	if err := s.engine.InitModule(handle); err != nil {
		code := ModuleCode(err)
		logger.Error().Err(err).
			Str("event", "module.init_failed").
			Str("module", s.module.Name).
			Int("code", code).
			Msg("failed to init output module")
		s.fail()
		return sessionErr(op, KindModuleInit, code, err)
	}
	setModuleLoaded(s.module.Name, true)

	s.engine.LogLoadedModules()
	types := s.engine.OutputTypes()
	logger.Debug().
		Str("event", "engine.output_types").
		Strs("types", types).
		Msg("registered output types")

	s.setState(StateReady)
	logger.Info().
		Str("event", "engine.ready").
		Str("module", s.module.Name).
		Msg("engine ready")
	return nil
}

// fail unwinds a bring-up: the engine is shut down if it started, and the
// process slot is released so a fresh session can retry. Caller holds s.mu.
func (s *Session) fail() {
	if s.engineUp {
		setModuleLoaded(s.module.Name, false)
		s.engine.Shutdown()
		s.engineUp = false
	}
	s.signals = 0
	s.setState(StateFailed)
	s.releaseSlot()
}

// ConfigureOutput creates the output bound to creds. It is allowed from
// Ready, Configured, Stopped and Failed. The new output is created first; only
// then is the previous one stopped and released. On failure the session keeps
// its previous output and state; with no usable output it becomes Failed.
func (s *Session) ConfigureOutput(ctx context.Context, creds ServiceCredentials) error {
	const op = "configure_output"
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := s.log(ctx)

	switch {
	case !s.engineUp:
		return sessionErr(op, KindNotInitialized, 0, nil)
	case s.state == StateStreaming:
		return sessionErr(op, KindConfigure, 0, errors.New("output is streaming; stop it first"))
	}

	if err := creds.Validate(); err != nil {
		logger.Warn().Err(err).
			Str("event", "output.invalid_credentials").
			Object("credentials", creds).
			Msg("rejecting output configuration")
		s.configureFailed()
		return sessionErr(op, KindConfigure, 0, err)
	}
	if s.opts.Preflight {
		if err := s.opts.Probe(ctx, creds.Server); err != nil {
			logger.Warn().Err(err).
				Str("event", "output.preflight_failed").
				Str("server", creds.Server).
				Msg("ingest server unreachable")
			s.configureFailed()
			return sessionErr(op, KindConfigure, 0, err)
		}
	}

	prev := s.state
	s.setState(StateConfiguring)

	out, err := s.createOutput(creds)
	if err != nil {
		logger.Error().Err(err).
			Str("event", "output.create_failed").
			Str("type", s.opts.OutputType).
			Object("credentials", creds).
			Msg("failed to configure output")
		if s.output != nil {
			s.setState(prev)
		}
		s.configureFailed()
		return sessionErr(op, KindConfigure, 0, err)
	}

	s.releaseOutput()
	s.output = out
	s.creds = creds
	s.setState(StateConfigured)
	logger.Info().
		Str("event", "output.configured").
		Str("type", s.opts.OutputType).
		Object("credentials", creds).
		Msg("output configured")
	return nil
}

// configureFailed marks the session Failed when a configure attempt left it
// without an output. Caller holds s.mu.
func (s *Session) configureFailed() {
	if s.output == nil && s.state != StateFailed {
		s.setState(StateFailed)
	}
}

// createOutput builds the settings, creates the output and releases the
// settings on every path.
func (s *Session) createOutput(creds ServiceCredentials) (Output, error) {
	settings, err := s.engine.NewSettings()
	if err != nil {
		return nil, err
	}
	defer settings.Release()

	settings.SetString(SettingService, creds.Service)
	settings.SetString(SettingServer, creds.Server)
	settings.SetString(SettingKey, creds.Key)

	return s.engine.CreateOutput(s.opts.OutputType, s.opts.OutputName, settings)
}

// Start begins streaming. Starting a streaming session is a no-op. A failed
// start leaves the session configured and can be retried.
func (s *Session) Start(ctx context.Context) error {
	const op = "start"
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := s.log(ctx)

	switch {
	case s.state == StateStreaming:
		return nil
	case !s.engineUp:
		return sessionErr(op, KindNotInitialized, 0, nil)
	case !s.state.HasOutput() || s.output == nil:
		return sessionErr(op, KindNotConfigured, 0, nil)
	}

	logger.Info().Str("event", "output.starting").Msg("attempting to start the stream")
	if err := s.output.Start(); err != nil {
		outputStartFailures.Inc()
		logger.Error().Err(err).
			Str("event", "output.start_failed").
			Object("credentials", s.creds).
			Msg("stream failed to start")
		return sessionErr(op, KindStart, 0, err)
	}
	s.setState(StateStreaming)
	logger.Info().Str("event", "output.started").Msg("stream started")
	return nil
}

// Stop stops a streaming output. It is a no-op in every other state.
func (s *Session) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop(s.log(ctx))
}

func (s *Session) stop(logger *zerolog.Logger) {
	if s.state != StateStreaming {
		return
	}
	s.output.Stop()
	s.setState(StateStopped)
	logger.Info().Str("event", "output.stopped").Msg("stream stopped")
}

// releaseOutput stops and releases the held output, if any.
func (s *Session) releaseOutput() {
	if s.output == nil {
		return
	}
	if s.state == StateStreaming {
		s.output.Stop()
	}
	s.output.Release()
	s.output = nil
}

// Teardown stops the stream, releases the output, shuts the engine down and
// frees the process slot. It is idempotent.
func (s *Session) Teardown(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateTornDown {
		return
	}
	logger := s.log(ctx)

	s.stop(logger)
	s.releaseOutput()
	if s.engineUp {
		setModuleLoaded(s.module.Name, false)
		s.engine.Shutdown()
		s.engineUp = false
	}
	s.signals = 0
	s.creds = ServiceCredentials{}
	s.setState(StateTornDown)
	s.releaseSlot()
	logger.Info().Str("event", "session.torn_down").Msg("session torn down")
}
