// Package obstest provides an in-memory obsctl.Engine for tests.
package obstest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/thesyncim/obsctl"
)

// Engine is a scriptable fake of the libobs engine. Set the error fields
// before use; every call is appended to Calls in order.
type Engine struct {
	Image       string // returned by SymbolImage; "" means unsupported
	StartupErr  error
	OpenCode    int // non-zero fails OpenModule with this code
	InitErr     error
	SettingsErr error
	CreateErr   error
	StartErr    error
	Types       []string

	mu            sync.Mutex
	calls         []string
	logFn         func(obsctl.LogLevel, string)
	up            bool
	liveSettings  int
	settingsSeen  []map[string]string
	outputs       []*Output
	shutdowns     int
	openedBinary  string
	openedData    string
	startupLocale string
	startupDir    string
}

// NewEngine returns a fake whose module loads and outputs start.
func NewEngine() *Engine {
	return &Engine{
		Image: "/opt/obs/lib/libobs.so.0",
		Types: []string{obsctl.OutputTypeRTMP, "flv_output"},
	}
}

// Factory adapts e to obsctl.EngineFactory.
func (e *Engine) Factory() obsctl.EngineFactory {
	return func() (obsctl.Engine, error) { return e, nil }
}

func (e *Engine) record(call string) {
	e.calls = append(e.calls, call)
}

// Calls returns the recorded call sequence.
func (e *Engine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// LiveSettings returns settings objects created and not yet released.
func (e *Engine) LiveSettings() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.liveSettings
}

// SettingsSeen returns the contents of every settings object at the time an
// output was created from it.
func (e *Engine) SettingsSeen() []map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]map[string]string(nil), e.settingsSeen...)
}

// Outputs returns every output created so far.
func (e *Engine) Outputs() []*Output {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Output(nil), e.outputs...)
}

// Shutdowns returns how many times Shutdown ran on a live engine.
func (e *Engine) Shutdowns() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shutdowns
}

// Up reports whether the fake engine is started.
func (e *Engine) Up() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.up
}

// StartupArgs returns the locale and modules dir passed to Startup.
func (e *Engine) StartupArgs() (locale, modulesDir string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startupLocale, e.startupDir
}

// OpenedModule returns the paths passed to OpenModule.
func (e *Engine) OpenedModule() (binary, data string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.openedBinary, e.openedData
}

// Log emits a record through the installed log handler, as the engine would.
func (e *Engine) Log(level obsctl.LogLevel, msg string) {
	e.mu.Lock()
	fn := e.logFn
	e.mu.Unlock()
	if fn != nil {
		fn(level, msg)
	}
}

func (e *Engine) SetLogHandler(fn func(obsctl.LogLevel, string)) {
	e.mu.Lock()
	e.record("set_log_handler")
	e.logFn = fn
	e.mu.Unlock()
}

func (e *Engine) Startup(locale, modulesDir string) error {
	e.mu.Lock()
	e.record("startup")
	e.startupLocale, e.startupDir = locale, modulesDir
	if e.StartupErr != nil {
		e.mu.Unlock()
		return e.StartupErr
	}
	e.up = true
	e.mu.Unlock()

	e.Log(obsctl.LogInfo, "starting up")
	return nil
}

func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("shutdown")
	if e.up {
		e.up = false
		e.shutdowns++
	}
}

func (e *Engine) SignalHandler() obsctl.SignalHandlerRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("signal_handler")
	return obsctl.SignalHandlerRef(0x5160)
}

func (e *Engine) SymbolImage() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("symbol_image")
	if e.Image == "" {
		return "", obsctl.ErrUnsupportedPlatform
	}
	return e.Image, nil
}

func (e *Engine) OpenModule(binaryPath, dataPath string) (obsctl.ModuleHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("open_module")
	e.openedBinary, e.openedData = binaryPath, dataPath
	if e.OpenCode != 0 {
		return 0, &obsctl.ModuleError{Op: "open", Path: binaryPath, Code: e.OpenCode}
	}
	return obsctl.ModuleHandle(0x1000), nil
}

func (e *Engine) InitModule(m obsctl.ModuleHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("init_module")
	if e.InitErr != nil {
		return e.InitErr
	}
	return nil
}

func (e *Engine) LogLoadedModules() {
	e.mu.Lock()
	e.record("log_loaded_modules")
	e.mu.Unlock()
	e.Log(obsctl.LogInfo, "  obs-outputs")
}

func (e *Engine) OutputTypes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("output_types")
	return append([]string(nil), e.Types...)
}

func (e *Engine) NewSettings() (obsctl.Settings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("settings.create")
	if e.SettingsErr != nil {
		return nil, e.SettingsErr
	}
	e.liveSettings++
	return &Settings{engine: e, values: make(map[string]string)}, nil
}

func (e *Engine) CreateOutput(typeID, name string, settings obsctl.Settings) (obsctl.Output, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("output.create")
	s, ok := settings.(*Settings)
	if !ok || s.released {
		return nil, errors.New("obstest: settings not live")
	}
	if e.CreateErr != nil {
		return nil, e.CreateErr
	}
	values := make(map[string]string, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	e.settingsSeen = append(e.settingsSeen, values)

	out := &Output{engine: e, TypeID: typeID, Name: name, Index: len(e.outputs)}
	e.outputs = append(e.outputs, out)
	return out, nil
}

// Settings is a fake settings object.
type Settings struct {
	engine   *Engine
	values   map[string]string
	released bool
}

func (s *Settings) SetString(key, value string) {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	s.engine.record("settings.set:" + key)
	s.values[key] = value
}

func (s *Settings) Release() {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	s.engine.record("settings.release")
	if !s.released {
		s.released = true
		s.engine.liveSettings--
	}
}

// Output is a fake output object.
type Output struct {
	engine *Engine
	TypeID string
	Name   string
	Index  int

	running  bool
	starts   int
	stops    int
	released bool
}

func (o *Output) Start() error {
	o.engine.mu.Lock()
	defer o.engine.mu.Unlock()
	o.engine.record(fmt.Sprintf("output[%d].start", o.Index))
	o.starts++
	if o.released {
		return errors.New("obstest: output released")
	}
	if o.engine.StartErr != nil {
		return o.engine.StartErr
	}
	o.running = true
	return nil
}

func (o *Output) Stop() {
	o.engine.mu.Lock()
	defer o.engine.mu.Unlock()
	o.engine.record(fmt.Sprintf("output[%d].stop", o.Index))
	o.stops++
	o.running = false
}

func (o *Output) Release() {
	o.engine.mu.Lock()
	defer o.engine.mu.Unlock()
	o.engine.record(fmt.Sprintf("output[%d].release", o.Index))
	o.released = true
}

// Running reports whether the output is started.
func (o *Output) Running() bool {
	o.engine.mu.Lock()
	defer o.engine.mu.Unlock()
	return o.running
}

// Released reports whether the output was released.
func (o *Output) Released() bool {
	o.engine.mu.Lock()
	defer o.engine.mu.Unlock()
	return o.released
}

// Counts returns start and stop call counts.
func (o *Output) Counts() (starts, stops int) {
	o.engine.mu.Lock()
	defer o.engine.mu.Unlock()
	return o.starts, o.stops
}
