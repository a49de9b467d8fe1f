//go:build windows

package winreg

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows/registry"

	"retrace/internal/timeline"
)

const (
	userAssistKeyPath = `Software\Microsoft\Windows\CurrentVersion\Explorer\UserAssist`
	runMRUKeyPath     = `Software\Microsoft\Windows\CurrentVersion\Explorer\RunMRU`
)

func (c *UserAssistCollector) Collect(ctx context.Context) ([]timeline.Event, error) {
	root, err := registry.OpenKey(registry.CURRENT_USER, userAssistKeyPath, registry.READ)
	if err != nil {
		return nil, fmt.Errorf("open UserAssist key: %w", err)
	}
	defer root.Close()

	guids, err := root.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("enumerate UserAssist GUIDs: %w", err)
	}

	var events []timeline.Event
	for _, guid := range guids {
		if ctx.Err() != nil {
			return events, ctx.Err()
		}
		countKey, err := registry.OpenKey(root, guid+`\Count`, registry.READ)
		if err != nil {
			c.logger.Debug("skipping UserAssist subkey", "guid", guid, "error", err)
			continue
		}
		events = append(events, c.collectCount(countKey)...)
		countKey.Close()
	}
	return events, nil
}

func (c *UserAssistCollector) collectCount(key registry.Key) []timeline.Event {
	names, err := key.ReadValueNames(-1)
	if err != nil {
		c.logger.Debug("reading UserAssist values", "error", err)
		return nil
	}

	var events []timeline.Event
	for _, name := range names {
		data, valType, err := key.GetBinaryValue(name)
		if err != nil || valType != registry.BINARY {
			continue
		}
		runCount, lastRun, ok := parseUserAssistValue(data)
		if !ok || lastRun == nil {
			continue
		}

		program := rot13(name)
		e := timeline.New(
			timeline.ProgramExecution,
			"User",
			program,
			fmt.Sprintf("Program executed %d times (UserAssist)", runCount),
			userAssistSource,
			timeline.ConfidenceHigh,
		)
		e.TimeEnd = lastRun
		events = append(events, e)
	}
	return events
}

func (c *RunMRUCollector) Collect(ctx context.Context) ([]timeline.Event, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, runMRUKeyPath, registry.READ)
	if err != nil {
		return nil, fmt.Errorf("open RunMRU key: %w", err)
	}
	defer key.Close()

	// The key's last-write time is the only timestamp the MRU carries,
	// so every entry shares it.
	info, err := key.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat RunMRU key: %w", err)
	}
	modTime := info.ModTime()

	names, err := key.ReadValueNames(-1)
	if err != nil {
		return nil, fmt.Errorf("enumerate RunMRU values: %w", err)
	}

	var events []timeline.Event
	for _, name := range names {
		if ctx.Err() != nil {
			return events, ctx.Err()
		}
		if name == "MRUList" {
			continue
		}
		command, _, err := key.GetStringValue(name)
		if err != nil || command == "" {
			continue
		}

		e := timeline.New(
			timeline.UserIntent,
			"User",
			command,
			fmt.Sprintf("Command present in RunMRU (exact execution time unknown): %s", command),
			runMRUSource,
			timeline.ConfidenceMedium,
		)
		t := modTime
		e.TimeEnd = &t
		events = append(events, e)
	}
	return events, nil
}
