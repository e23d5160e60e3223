package ports

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// BootClock reports when the machine last booted. Crash-lock reconciliation
// compares a session file's start time against it.
type BootClock interface {
	BootTime() (time.Time, error)
}
