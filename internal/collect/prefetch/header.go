package prefetch

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"retrace/internal/collect"
)

// Prefetch format versions with the SCCA magic at offset 4.
const (
	versionXP    = 17
	versionVista = 23
	versionWin8  = 26
)

var (
	sccaMagic = []byte("SCCA")
	mamMagic  = []byte("MAM\x04")
)

// header holds the fields the timeline uses out of a prefetch file.
type header struct {
	Version  uint32
	RunCount uint32
	LastRun  *time.Time
}

// fileInfo offsets relative to the start of the file, per format version.
var fieldOffsets = map[uint32]struct{ lastRun, runCount int }{
	versionXP:    {lastRun: 0x78, runCount: 0x90},
	versionVista: {lastRun: 0x80, runCount: 0x98},
	versionWin8:  {lastRun: 0x80, runCount: 0xD0},
}

func parseHeader(data []byte) (header, error) {
	if len(data) >= 4 && bytes.Equal(data[:4], mamMagic) {
		return header{}, errCompressed
	}
	if len(data) < 8 || !bytes.Equal(data[4:8], sccaMagic) {
		return header{}, fmt.Errorf("not a prefetch file (bad magic)")
	}

	version := binary.LittleEndian.Uint32(data[0:4])
	offsets, ok := fieldOffsets[version]
	if !ok {
		return header{}, fmt.Errorf("unsupported prefetch version %d", version)
	}
	if len(data) < offsets.runCount+4 {
		return header{}, fmt.Errorf("truncated prefetch file (%d bytes)", len(data))
	}

	return header{
		Version:  version,
		RunCount: binary.LittleEndian.Uint32(data[offsets.runCount : offsets.runCount+4]),
		LastRun:  collect.FromFiletime(binary.LittleEndian.Uint64(data[offsets.lastRun : offsets.lastRun+8])),
	}, nil
}
