//go:build unix

package obsctl

import "syscall"

func shutdownFD(fd uintptr) {
	_ = syscall.Shutdown(int(fd), syscall.SHUT_RDWR)
}
