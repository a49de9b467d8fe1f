// Package usb detects removable-device mounts from the per-user
// MountPoints2 registry key. The key's last-write time is the best
// available approximation of when the device was last attached.
package usb

import (
	"log/slog"
	"strings"
)

const source = "Registry: MountPoints2 (HKCU)"

type Collector struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger}
}

func (c *Collector) Name() string { return "USB Devices" }

// looksRemovable filters MountPoints2 subkeys down to plausible
// removable media: drive-letter mounts and volume names mentioning USB.
func looksRemovable(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, ":") ||
		strings.Contains(lower, "usb") ||
		strings.Contains(lower, "removable")
}
