//go:build windows

package usb

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows/registry"

	"retrace/internal/timeline"
)

const mountPointsKeyPath = `Software\Microsoft\Windows\CurrentVersion\Explorer\MountPoints2`

func (c *Collector) Collect(ctx context.Context) ([]timeline.Event, error) {
	root, err := registry.OpenKey(registry.CURRENT_USER, mountPointsKeyPath, registry.READ)
	if err != nil {
		return nil, fmt.Errorf("open MountPoints2 key: %w", err)
	}
	defer root.Close()

	names, err := root.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("enumerate mount points: %w", err)
	}

	var events []timeline.Event
	for _, name := range names {
		if ctx.Err() != nil {
			return events, ctx.Err()
		}
		if !looksRemovable(name) {
			continue
		}
		sub, err := registry.OpenKey(root, name, registry.READ)
		if err != nil {
			c.logger.Debug("skipping mount point", "name", name, "error", err)
			continue
		}
		info, err := sub.Stat()
		sub.Close()
		if err != nil {
			c.logger.Debug("stat mount point", "name", name, "error", err)
			continue
		}

		e := timeline.New(
			timeline.UsbDeviceMount,
			"User",
			name,
			fmt.Sprintf("Removable device mount point observed: %s", name),
			source,
			timeline.ConfidenceMedium,
		)
		mod := info.ModTime()
		e.TimeEnd = &mod
		events = append(events, e)
	}
	return events, nil
}
