package campaign

import (
	"runtime/debug"

	"golang.org/x/sys/unix"
)

// MemoryPolicy is the process-wide memory setting applied for the duration
// of a campaign.
type MemoryPolicy struct {
	// LimitBytes is the soft memory limit. 0 keeps the current limit.
	LimitBytes int64 `json:"limit_bytes" yaml:"limit_bytes"` //nolint:tagliatelle // snake_case for config file

	// GCPercent is the GC target percentage. Negative keeps the current
	// value.
	GCPercent int `json:"gc_percent" yaml:"gc_percent"` //nolint:tagliatelle // snake_case for config file
}

// Apply installs the policy and returns a func restoring the previous
// settings.
func (p MemoryPolicy) Apply() (restore func()) {
	var (
		prevLimit   int64
		prevPercent int
	)

	limitSet := p.LimitBytes > 0
	if limitSet {
		prevLimit = debug.SetMemoryLimit(p.LimitBytes)
	}

	// prevPercent is -1 when the collector was off.
	percentSet := p.GCPercent >= 0
	if percentSet {
		prevPercent = debug.SetGCPercent(p.GCPercent)
	}

	return func() {
		if limitSet {
			debug.SetMemoryLimit(prevLimit)
		}

		if percentSet {
			debug.SetGCPercent(prevPercent)
		}
	}
}

// PeakRSS returns the peak resident set size of the process in bytes.
// Unix only.
func PeakRSS() (int64, error) {
	var usage unix.Rusage

	err := unix.Getrusage(unix.RUSAGE_SELF, &usage)
	if err != nil {
		return 0, err
	}

	return maxrssBytes(int64(usage.Maxrss)), nil
}

func maxrssBytes(maxrss int64) int64 {
	return maxrss * maxrssUnit
}
