package collect

import "time"

// Offset between the Windows epoch (1601-01-01) and the Unix epoch
// (1970-01-01), in 100ns FILETIME ticks and in microseconds. Conversions
// go through the Unix epoch: the 1601-anchored span exceeds what a
// time.Duration can hold.
const (
	filetimeUnixDelta   = 116444736000000000
	chromeTimeUnixDelta = 11644473600000000
)

// FromFiletime converts a Windows FILETIME (100-nanosecond intervals since
// 1601-01-01) to a time. A zero FILETIME means "never" and converts to nil.
func FromFiletime(ft uint64) *time.Time {
	if ft == 0 {
		return nil
	}
	t := time.Unix(0, (int64(ft)-filetimeUnixDelta)*100).UTC()
	return &t
}

// FromChromeTime converts a Chromium timestamp (microseconds since
// 1601-01-01) to a time. Zero converts to nil.
func FromChromeTime(us int64) *time.Time {
	if us <= 0 {
		return nil
	}
	t := time.UnixMicro(us - chromeTimeUnixDelta).UTC()
	return &t
}

// FromPRTime converts a Mozilla PRTime (microseconds since 1970-01-01) to a
// time. Zero converts to nil.
func FromPRTime(us int64) *time.Time {
	if us <= 0 {
		return nil
	}
	t := time.UnixMicro(us).UTC()
	return &t
}
