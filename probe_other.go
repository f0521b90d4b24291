//go:build !unix

package obsctl

func shutdownFD(uintptr) {}
