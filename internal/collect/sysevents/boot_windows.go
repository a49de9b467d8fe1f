//go:build windows

package sysevents

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"retrace/internal/collect"
)

const shutdownKeyPath = `SYSTEM\CurrentControlSet\Control\Windows`

var (
	kernel32           = windows.NewLazySystemDLL("kernel32.dll")
	procGetTickCount64 = kernel32.NewProc("GetTickCount64")
)

func bootTime() (time.Time, error) {
	ticks, _, err := procGetTickCount64.Call()
	if ticks == 0 {
		return time.Time{}, fmt.Errorf("GetTickCount64: %w", err)
	}
	uptime := time.Duration(ticks) * time.Millisecond
	return time.Now().Add(-uptime), nil
}

func lastShutdown() (*time.Time, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, shutdownKeyPath, registry.READ)
	if err != nil {
		return nil, fmt.Errorf("open shutdown key: %w", err)
	}
	defer key.Close()

	data, _, err := key.GetBinaryValue("ShutdownTime")
	if err != nil {
		return nil, fmt.Errorf("read ShutdownTime: %w", err)
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("ShutdownTime value too short (%d bytes)", len(data))
	}
	return collect.FromFiletime(binary.LittleEndian.Uint64(data[:8])), nil
}
