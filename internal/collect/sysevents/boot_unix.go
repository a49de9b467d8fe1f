//go:build !windows

package sysevents

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func bootTime() (time.Time, error) {
	data, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return time.Time{}, fmt.Errorf("read /proc/uptime: %w", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return time.Time{}, fmt.Errorf("empty /proc/uptime")
	}
	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse uptime %q: %w", fields[0], err)
	}
	return time.Now().Add(-time.Duration(seconds * float64(time.Second))), nil
}

// lastShutdown has no portable source off Windows.
func lastShutdown() (*time.Time, error) {
	return nil, nil
}
