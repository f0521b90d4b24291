//go:build (darwin || linux) && !(cgo && obscgo)

// Shared utilities for the purego libobs binding.

package obsctl

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// goStringFromPtr converts a C string pointer to a Go string.
func goStringFromPtr(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	// Find string length
	p := *(*unsafe.Pointer)(unsafe.Pointer(&ptr))
	var length int
	for {
		if *(*byte)(unsafe.Pointer(uintptr(p) + uintptr(length))) == 0 {
			break
		}
		length++
		if length >= MaxLogMessage { // Safety limit
			break
		}
	}
	if length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), length))
}

// dlInfo mirrors Dl_info from <dlfcn.h>.
type dlInfo struct {
	fname uintptr
	fbase uintptr
	sname uintptr
	saddr uintptr
}

var (
	libcOnce    sync.Once
	libcInitErr error

	libcVsnprintf func(buf *byte, size uintptr, format uintptr, args uintptr) int32
	libcDladdr    func(addr uintptr, info *dlInfo) int32
)

// loadLibc resolves vsnprintf and dladdr. dladdr lives in libdl on glibc
// older than 2.34.
func loadLibc() error {
	libcOnce.Do(func() {
		handle, err := purego.Dlopen(libcName, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			libcInitErr = fmt.Errorf("failed to load %s: %w", libcName, err)
			return
		}
		purego.RegisterLibFunc(&libcVsnprintf, handle, "vsnprintf")

		if sym, err := purego.Dlsym(handle, "dladdr"); err == nil && sym != 0 {
			purego.RegisterFunc(&libcDladdr, sym)
			return
		}
		if libdlName == "" {
			libcInitErr = errors.New("dladdr not available")
			return
		}
		dl, err := purego.Dlopen(libdlName, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			libcInitErr = fmt.Errorf("failed to load %s: %w", libdlName, err)
			return
		}
		purego.RegisterLibFunc(&libcDladdr, dl, "dladdr")
	})
	return libcInitErr
}

// formatVA expands a printf template with its va_list into a bounded
// buffer. Without libc the raw template is returned.
func formatVA(format, args uintptr) string {
	if libcVsnprintf == nil {
		return boundMessage(goStringFromPtr(format))
	}
	var buf [MaxLogMessage]byte
	libcVsnprintf(&buf[0], uintptr(len(buf)), format, args)
	return messageFromBuffer(buf[:])
}

// imageOf returns the path of the loaded image containing addr.
func imageOf(addr uintptr) (string, error) {
	if err := loadLibc(); err != nil {
		return "", err
	}
	if libcDladdr == nil {
		return "", errors.New("dladdr not available")
	}
	var info dlInfo
	if libcDladdr(addr, &info) == 0 || info.fname == 0 {
		return "", fmt.Errorf("dladdr(%#x) found no image", addr)
	}
	return goStringFromPtr(info.fname), nil
}
