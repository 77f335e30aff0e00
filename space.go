package models

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

// FreeSpace returns the bytes available on the filesystem holding path.
// If path does not exist yet, its nearest existing parent is used.
func FreeSpace(path string) (uint64, error) {
	p := path
	for {
		if _, err := os.Stat(p); err == nil || !errors.Is(err, os.ErrNotExist) {
			break
		}
		parent := filepath.Dir(p)
		if parent == p {
			break
		}
		p = parent
	}

	usage, err := disk.Usage(p)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}
