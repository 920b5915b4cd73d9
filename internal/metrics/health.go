// Package metrics reports process health for operators.
package metrics

import (
	"io/fs"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

var started = time.Now()

// Health is a point-in-time view of the running process.
type Health struct {
	AllocBytes uint64
	SysBytes   uint64
	NumGC      uint32
	Goroutines int
	Uptime     time.Duration
	DataBytes  uint64
}

// Snapshot collects process health. dataPath is walked to size the local
// store; an unreadable path counts as empty.
func Snapshot(dataPath string) Health {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return Health{
		AllocBytes: m.Alloc,
		SysBytes:   m.Sys,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
		Uptime:     time.Since(started),
		DataBytes:  dirSize(dataPath),
	}
}

func dirSize(path string) uint64 {
	var size uint64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		size += uint64(info.Size())
		return nil
	})
	return size
}

// Alloc formats the heap in use.
func (h Health) Alloc() string { return humanize.Bytes(h.AllocBytes) }

// Sys formats memory obtained from the OS.
func (h Health) Sys() string { return humanize.Bytes(h.SysBytes) }

// DataSize formats the on-disk store size.
func (h Health) DataSize() string { return humanize.Bytes(h.DataBytes) }
