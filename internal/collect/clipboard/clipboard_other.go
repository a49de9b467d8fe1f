//go:build !windows

package clipboard

import (
	"context"

	"retrace/internal/timeline"
)

func (c *Collector) Collect(ctx context.Context) ([]timeline.Event, error) {
	c.logger.Debug("clipboard collection requires Windows; skipping")
	return nil, nil
}
