//go:build !windows

package winreg

import (
	"context"

	"retrace/internal/timeline"
)

func (c *UserAssistCollector) Collect(ctx context.Context) ([]timeline.Event, error) {
	c.logger.Debug("UserAssist collection requires Windows; skipping")
	return nil, nil
}

func (c *RunMRUCollector) Collect(ctx context.Context) ([]timeline.Event, error) {
	c.logger.Debug("RunMRU collection requires Windows; skipping")
	return nil, nil
}
