//go:build !windows

package usb

import (
	"context"

	"retrace/internal/timeline"
)

func (c *Collector) Collect(ctx context.Context) ([]timeline.Event, error) {
	c.logger.Debug("mount point collection requires Windows; skipping")
	return nil, nil
}
