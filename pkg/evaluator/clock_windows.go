//go:build windows

package evaluator

import (
	"syscall"
	"unsafe"
)

var (
	kernel32DLL = syscall.NewLazyDLL("kernel32.dll")
	qpcProc     = kernel32DLL.NewProc("QueryPerformanceCounter")
	qpfProc     = kernel32DLL.NewProc("QueryPerformanceFrequency")
	qpcFreq     int64
)

func init() {
	qpfProc.Call(uintptr(unsafe.Pointer(&qpcFreq)))
}

// clockNow returns a high-resolution monotonic timestamp (QPC count).
func clockNow() int64 {
	var count int64
	qpcProc.Call(uintptr(unsafe.Pointer(&count)))
	return count
}

// clockSince returns the seconds elapsed since startCount using QPC.
func clockSince(startCount int64) float64 {
	return float64(clockNow()-startCount) / float64(qpcFreq)
}
