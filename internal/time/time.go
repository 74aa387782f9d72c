package time

import (
	"path/filepath"
	"time"
)

// RunLayout is the layout of the run directory stamp, e.g. 19.10.2026-14:05:09.
const RunLayout = "02.01.2006-15:04:05"

// Stamp formats the time as a run directory suffix.
func Stamp(t time.Time) string {
	return t.Format(RunLayout)
}

// RunDir appends the stamp of t to the prefix.
// The prefix is used as is, so "logs/" gives a directory under logs and "logs/run-" a sibling of it.
func RunDir(prefix string, t time.Time) string {
	return prefix + Stamp(t)
}

// ParseStamp parses the stamp of a run directory.
func ParseStamp(dir string) (time.Time, error) {
	base := filepath.Base(dir)
	if len(base) > len(RunLayout) {
		base = base[len(base)-len(RunLayout):]
	}
	return time.ParseInLocation(RunLayout, base, time.Local)
}

// Elapsed returns the seconds passed since the start.
func Elapsed(start time.Time) float64 {
	return time.Since(start).Seconds()
}
