//go:build windows

package clipboard

import (
	"context"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"retrace/internal/timeline"
)

const cfUnicodeText = 13

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procOpenClipboard    = user32.NewProc("OpenClipboard")
	procCloseClipboard   = user32.NewProc("CloseClipboard")
	procGetClipboardData = user32.NewProc("GetClipboardData")
	procGlobalLock       = kernel32.NewProc("GlobalLock")
	procGlobalUnlock     = kernel32.NewProc("GlobalUnlock")
)

func (c *Collector) Collect(ctx context.Context) ([]timeline.Event, error) {
	text, err := readClipboardText()
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	e := timeline.New(
		timeline.ClipboardActivity,
		"User",
		"Clipboard Text",
		fmt.Sprintf("Clipboard held text at collection time: %q", preview(text)),
		source,
		timeline.ConfidenceMedium,
	)
	now := time.Now()
	e.TimeStart = &now
	return []timeline.Event{e}, ctx.Err()
}

func readClipboardText() (string, error) {
	if r, _, err := procOpenClipboard.Call(0); r == 0 {
		return "", fmt.Errorf("OpenClipboard: %w", err)
	}
	defer procCloseClipboard.Call()

	handle, _, _ := procGetClipboardData.Call(cfUnicodeText)
	if handle == 0 {
		return "", nil // no text on the clipboard
	}
	ptr, _, err := procGlobalLock.Call(handle)
	if ptr == 0 {
		return "", fmt.Errorf("GlobalLock: %w", err)
	}
	defer procGlobalUnlock.Call(handle)

	return windows.UTF16PtrToString((*uint16)(unsafe.Pointer(ptr))), nil
}
