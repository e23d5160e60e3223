//go:build linux

package boottime

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

type Sysinfo struct{}

// BootTime derives the last boot instant from the kernel uptime counter.
func (Sysinfo) BootTime() (time.Time, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return time.Time{}, fmt.Errorf("query sysinfo: %w", err)
	}
	return time.Now().Add(-time.Duration(info.Uptime) * time.Second), nil
}
