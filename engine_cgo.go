//go:build cgo && obscgo && (darwin || linux)

// libobs binding via cgo, enabled with -tags obscgo. Links against the
// libobs found by pkg-config.

package obsctl

/*
#cgo pkg-config: libobs
#cgo linux LDFLAGS: -ldl

#include <stdlib.h>
#include <obs.h>

extern void obsctl_install_log_handler(void);
extern const char *obsctl_startup_image(void);
*/
import "C"

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"
)

var cgoLogEmit atomic.Pointer[func(LogLevel, string)]

//export goEngineLog
func goEngineLog(level C.int, msg *C.char) {
	fn := cgoLogEmit.Load()
	if fn == nil {
		return
	}
	(*fn)(LogLevel(level), C.GoString(msg))
}

// IsLibobsAvailable reports true: libobs is linked at build time.
func IsLibobsAvailable() bool { return true }

// LibobsVersion returns the libobs version string.
func LibobsVersion() string {
	return C.GoString(C.obs_get_version_string())
}

// LibobsPath returns the path of the linked libobs image.
func LibobsPath() string {
	p := C.obsctl_startup_image()
	if p == nil {
		return ""
	}
	return C.GoString(p)
}

type cgoEngine struct {
	modulePaths map[ModuleHandle]string
}

// NewEngine returns the cgo engine binding.
func NewEngine() (Engine, error) {
	return &cgoEngine{modulePaths: make(map[ModuleHandle]string)}, nil
}

func (e *cgoEngine) SetLogHandler(fn func(level LogLevel, message string)) {
	cgoLogEmit.Store(&fn)
	C.obsctl_install_log_handler()
}

func (e *cgoEngine) Startup(locale, modulesDir string) error {
	if bool(C.obs_initialized()) {
		return errors.New("obs_startup: engine already running in this process")
	}
	cLocale := C.CString(locale)
	defer C.free(unsafe.Pointer(cLocale))
	cDir := C.CString(modulesDir)
	defer C.free(unsafe.Pointer(cDir))

	if !bool(C.obs_startup(cLocale, cDir, nil)) {
		return fmt.Errorf("obs_startup(%q) failed", locale)
	}
	return nil
}

func (e *cgoEngine) Shutdown() {
	if bool(C.obs_initialized()) {
		C.obs_shutdown()
	}
}

func (e *cgoEngine) SignalHandler() SignalHandlerRef {
	return SignalHandlerRef(unsafe.Pointer(C.obs_get_signal_handler()))
}

func (e *cgoEngine) SymbolImage() (string, error) {
	if p := LibobsPath(); p != "" {
		return p, nil
	}
	return "", errors.New("dladdr found no image for obs_startup")
}

func (e *cgoEngine) OpenModule(binaryPath, dataPath string) (ModuleHandle, error) {
	cPath := C.CString(binaryPath)
	defer C.free(unsafe.Pointer(cPath))
	cData := C.CString(dataPath)
	defer C.free(unsafe.Pointer(cData))

	var module *C.obs_module_t
	if code := int(C.obs_open_module(&module, cPath, cData)); code != ModuleSuccess {
		return 0, &ModuleError{Op: "open", Path: binaryPath, Code: code}
	}
	h := ModuleHandle(unsafe.Pointer(module))
	e.modulePaths[h] = binaryPath
	return h, nil
}

func (e *cgoEngine) InitModule(m ModuleHandle) error {
	if !bool(C.obs_init_module((*C.obs_module_t)(unsafe.Pointer(m)))) {
		return &ModuleError{Op: "init", Path: e.modulePaths[m], Code: ModuleErrorGeneric}
	}
	return nil
}

func (e *cgoEngine) LogLoadedModules() {
	C.obs_log_loaded_modules()
}

func (e *cgoEngine) OutputTypes() []string {
	var types []string
	var id *C.char
	for i := C.size_t(0); bool(C.obs_enum_output_types(i, &id)); i++ {
		types = append(types, C.GoString(id))
	}
	return types
}

func (e *cgoEngine) NewSettings() (Settings, error) {
	data := C.obs_data_create()
	if data == nil {
		return nil, errors.New("obs_data_create returned NULL")
	}
	return &cgoSettings{data: data}, nil
}

func (e *cgoEngine) CreateOutput(typeID, name string, settings Settings) (Output, error) {
	cs, ok := settings.(*cgoSettings)
	if !ok || cs.data == nil {
		return nil, errors.New("settings not created by this engine")
	}
	cID := C.CString(typeID)
	defer C.free(unsafe.Pointer(cID))
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	out := C.obs_output_create(cID, cName, cs.data, nil)
	if out == nil {
		return nil, fmt.Errorf("obs_output_create(%q) returned NULL", typeID)
	}
	return &cgoOutput{out: out}, nil
}

type cgoSettings struct {
	data *C.obs_data_t
}

func (s *cgoSettings) SetString(key, value string) {
	cKey := C.CString(key)
	defer C.free(unsafe.Pointer(cKey))
	cVal := C.CString(value)
	defer C.free(unsafe.Pointer(cVal))
	C.obs_data_set_string(s.data, cKey, cVal)
}

func (s *cgoSettings) Release() {
	if s.data != nil {
		C.obs_data_release(s.data)
		s.data = nil
	}
}

type cgoOutput struct {
	out *C.obs_output_t
}

func (o *cgoOutput) Start() error {
	if bool(C.obs_output_start(o.out)) {
		return nil
	}
	msg := "no error reported"
	if p := C.obs_output_get_last_error(o.out); p != nil {
		msg = C.GoString(p)
	}
	return fmt.Errorf("obs_output_start: %s", msg)
}

func (o *cgoOutput) Stop() {
	C.obs_output_stop(o.out)
}

func (o *cgoOutput) Release() {
	if o.out != nil {
		C.obs_output_release(o.out)
		o.out = nil
	}
}
