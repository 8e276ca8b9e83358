//go:build !windows

package evaluator

import "time"

// processStart anchors readings to Go's monotonic clock; wall-clock
// adjustments never make clock() run backwards.
var processStart = time.Now()

// clockNow returns the process uptime in nanoseconds.
func clockNow() int64 {
	return int64(time.Since(processStart))
}

// clockSince returns the seconds elapsed since the reading start.
func clockSince(start int64) float64 {
	return (time.Duration(clockNow()) - time.Duration(start)).Seconds()
}
