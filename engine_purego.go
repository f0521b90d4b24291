//go:build (darwin || linux) && !(cgo && obscgo)

// libobs binding via purego: the library is loaded at runtime with
// dlopen, no cgo toolchain required.

package obsctl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/purego"
)

var (
	libobsOnce    sync.Once
	libobsHandle  uintptr
	libobsInitErr error
	libobsPath    string
)

// libobs function pointers
var (
	obsStartup            func(locale, moduleConfigPath string, store uintptr) bool
	obsShutdown           func()
	obsInitialized        func() bool
	obsGetVersionString   func() uintptr
	obsGetSignalHandler   func() uintptr
	obsOpenModule         func(module *uintptr, path, dataPath string) int32
	obsInitModule         func(module uintptr) bool
	obsLogLoadedModules   func()
	obsEnumOutputTypes    func(idx uintptr, id *uintptr) bool
	obsDataCreate         func() uintptr
	obsDataSetString      func(data uintptr, name, val string)
	obsDataRelease        func(data uintptr)
	obsOutputCreate       func(id, name string, settings, hotkeyData uintptr) uintptr
	obsOutputStart        func(output uintptr) bool
	obsOutputStop         func(output uintptr)
	obsOutputRelease      func(output uintptr)
	obsOutputGetLastError func(output uintptr) uintptr
	baseSetLogHandler     func(handler, param uintptr)
)

// loadLibobs loads the libobs shared library once.
func loadLibobs() error {
	libobsOnce.Do(func() {
		libobsInitErr = loadLibobsLib()
	})
	return libobsInitErr
}

func loadLibobsLib() error {
	var lastErr error
	for _, path := range libobsPaths() {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastErr = err
			continue
		}
		libobsHandle = handle
		libobsPath = path
		loadLibobsSymbols()
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("failed to load libobs: %w", lastErr)
	}
	return errors.New("libobs not found in any standard location")
}

func libobsPaths() []string {
	var paths []string

	// Environment variable overrides
	if envPath := os.Getenv("OBSCTL_LIBOBS_PATH"); envPath != "" {
		paths = append(paths, envPath)
	}
	if envDir := os.Getenv("OBSCTL_LIB_DIR"); envDir != "" {
		paths = append(paths,
			filepath.Join(envDir, libobsName),
			filepath.Join(envDir, libobsAltName),
		)
	}

	// Bundled next to the executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		switch runtime.GOOS {
		case "darwin":
			paths = append(paths,
				filepath.Join(exeDir, "..", "Frameworks", libobsName),
				filepath.Join(exeDir, libobsAltName),
			)
		case "linux":
			paths = append(paths,
				filepath.Join(exeDir, libobsName),
				filepath.Join(exeDir, "..", "lib", libobsName),
			)
		}
	}

	// System paths
	switch runtime.GOOS {
	case "darwin":
		paths = append(paths,
			"/Applications/OBS.app/Contents/Frameworks/"+libobsName,
			"/opt/homebrew/lib/"+libobsAltName,
			"/usr/local/lib/"+libobsAltName,
		)
	case "linux":
		paths = append(paths,
			libobsName,
			"/usr/lib/"+libobsName,
			"/usr/local/lib/"+libobsName,
			"/usr/lib/x86_64-linux-gnu/"+libobsName,
			"/usr/lib/aarch64-linux-gnu/"+libobsName,
		)
	}

	return paths
}

func loadLibobsSymbols() {
	// Core lifecycle
	purego.RegisterLibFunc(&obsStartup, libobsHandle, "obs_startup")
	purego.RegisterLibFunc(&obsShutdown, libobsHandle, "obs_shutdown")
	purego.RegisterLibFunc(&obsInitialized, libobsHandle, "obs_initialized")
	purego.RegisterLibFunc(&obsGetVersionString, libobsHandle, "obs_get_version_string")
	purego.RegisterLibFunc(&obsGetSignalHandler, libobsHandle, "obs_get_signal_handler")
	purego.RegisterLibFunc(&baseSetLogHandler, libobsHandle, "base_set_log_handler")

	// Modules
	purego.RegisterLibFunc(&obsOpenModule, libobsHandle, "obs_open_module")
	purego.RegisterLibFunc(&obsInitModule, libobsHandle, "obs_init_module")
	purego.RegisterLibFunc(&obsLogLoadedModules, libobsHandle, "obs_log_loaded_modules")
	purego.RegisterLibFunc(&obsEnumOutputTypes, libobsHandle, "obs_enum_output_types")

	// Settings
	purego.RegisterLibFunc(&obsDataCreate, libobsHandle, "obs_data_create")
	purego.RegisterLibFunc(&obsDataSetString, libobsHandle, "obs_data_set_string")
	purego.RegisterLibFunc(&obsDataRelease, libobsHandle, "obs_data_release")

	// Outputs
	purego.RegisterLibFunc(&obsOutputCreate, libobsHandle, "obs_output_create")
	purego.RegisterLibFunc(&obsOutputStart, libobsHandle, "obs_output_start")
	purego.RegisterLibFunc(&obsOutputStop, libobsHandle, "obs_output_stop")
	purego.RegisterLibFunc(&obsOutputRelease, libobsHandle, "obs_output_release")
	purego.RegisterLibFunc(&obsOutputGetLastError, libobsHandle, "obs_output_get_last_error")
}

// IsLibobsAvailable checks if libobs can be loaded.
func IsLibobsAvailable() bool {
	return loadLibobs() == nil
}

// LibobsVersion returns the libobs version string.
func LibobsVersion() string {
	if !IsLibobsAvailable() {
		return ""
	}
	return goStringFromPtr(obsGetVersionString())
}

// Global log callback state for purego
var (
	logCallback     uintptr
	logCallbackOnce sync.Once
	logEmit         atomic.Pointer[func(LogLevel, string)]
)

// logCallbackHandler is the log_handler_t called by libobs from any thread.
func logCallbackHandler(level, format, args, param uintptr) {
	fn := logEmit.Load()
	if fn == nil {
		return
	}
	(*fn)(LogLevel(int32(level)), formatVA(format, args))
}

type puregoEngine struct {
	modulePaths map[ModuleHandle]string
}

// NewEngine loads libobs and returns the purego engine binding.
func NewEngine() (Engine, error) {
	if err := loadLibobs(); err != nil {
		return nil, err
	}
	return &puregoEngine{modulePaths: make(map[ModuleHandle]string)}, nil
}

func (e *puregoEngine) SetLogHandler(fn func(level LogLevel, message string)) {
	// vsnprintf only; a missing dladdr is reported by SymbolImage.
	_ = loadLibc()
	logEmit.Store(&fn)
	logCallbackOnce.Do(func() {
		logCallback = purego.NewCallback(logCallbackHandler)
	})
	baseSetLogHandler(logCallback, 0)
}

func (e *puregoEngine) Startup(locale, modulesDir string) error {
	if obsInitialized() {
		return errors.New("obs_startup: engine already running in this process")
	}
	if !obsStartup(locale, modulesDir, 0) {
		return fmt.Errorf("obs_startup(%q) failed", locale)
	}
	return nil
}

func (e *puregoEngine) Shutdown() {
	if obsInitialized() {
		obsShutdown()
	}
}

func (e *puregoEngine) SignalHandler() SignalHandlerRef {
	return SignalHandlerRef(obsGetSignalHandler())
}

func (e *puregoEngine) SymbolImage() (string, error) {
	sym, err := purego.Dlsym(libobsHandle, "obs_startup")
	if err != nil {
		return "", err
	}
	return imageOf(sym)
}

func (e *puregoEngine) OpenModule(binaryPath, dataPath string) (ModuleHandle, error) {
	var module uintptr
	if code := obsOpenModule(&module, binaryPath, dataPath); code != ModuleSuccess {
		return 0, &ModuleError{Op: "open", Path: binaryPath, Code: int(code)}
	}
	h := ModuleHandle(module)
	e.modulePaths[h] = binaryPath
	return h, nil
}

func (e *puregoEngine) InitModule(m ModuleHandle) error {
	if !obsInitModule(uintptr(m)) {
		return &ModuleError{Op: "init", Path: e.modulePaths[m], Code: ModuleErrorGeneric}
	}
	return nil
}

func (e *puregoEngine) LogLoadedModules() {
	obsLogLoadedModules()
}

func (e *puregoEngine) OutputTypes() []string {
	var types []string
	var id uintptr
	for i := uintptr(0); obsEnumOutputTypes(i, &id); i++ {
		types = append(types, goStringFromPtr(id))
	}
	return types
}

func (e *puregoEngine) NewSettings() (Settings, error) {
	ptr := obsDataCreate()
	if ptr == 0 {
		return nil, errors.New("obs_data_create returned NULL")
	}
	return &puregoSettings{ptr: ptr}, nil
}

func (e *puregoEngine) CreateOutput(typeID, name string, settings Settings) (Output, error) {
	ps, ok := settings.(*puregoSettings)
	if !ok || ps.ptr == 0 {
		return nil, errors.New("settings not created by this engine")
	}
	ptr := obsOutputCreate(typeID, name, ps.ptr, 0)
	if ptr == 0 {
		return nil, fmt.Errorf("obs_output_create(%q) returned NULL", typeID)
	}
	return &puregoOutput{ptr: ptr}, nil
}

type puregoSettings struct {
	ptr uintptr
}

func (s *puregoSettings) SetString(key, value string) {
	obsDataSetString(s.ptr, key, value)
}

func (s *puregoSettings) Release() {
	if s.ptr != 0 {
		obsDataRelease(s.ptr)
		s.ptr = 0
	}
}

type puregoOutput struct {
	ptr uintptr
}

func (o *puregoOutput) Start() error {
	if obsOutputStart(o.ptr) {
		return nil
	}
	msg := goStringFromPtr(obsOutputGetLastError(o.ptr))
	if msg == "" {
		msg = "no error reported"
	}
	return fmt.Errorf("obs_output_start: %s", msg)
}

func (o *puregoOutput) Stop() {
	obsOutputStop(o.ptr)
}

func (o *puregoOutput) Release() {
	if o.ptr != 0 {
		obsOutputRelease(o.ptr)
		o.ptr = 0
	}
}

// LibobsPath returns the path libobs was loaded from.
func LibobsPath() string {
	if !IsLibobsAvailable() {
		return ""
	}
	return libobsPath
}
