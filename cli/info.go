package cli

import (
	"fmt"
	"io"

	models "github.com/transcribee/whispercpp"
)

// cacheInfo summarizes the local model cache.
type cacheInfo struct {
	Dir       string `json:"dir"`
	Installed int    `json:"installed"`
	UsedBytes int64  `json:"used_bytes"`
	FreeBytes uint64 `json:"free_bytes,omitempty"`
}

// freeSpace is swapped out in tests.
var freeSpace = models.FreeSpace

func newCacheInfo(dir string, installed []models.InstalledModel) cacheInfo {
	info := cacheInfo{Dir: dir, Installed: len(installed)}
	for _, m := range installed {
		info.UsedBytes += m.Size
	}
	if free, err := freeSpace(dir); err == nil {
		info.FreeBytes = free
	}
	return info
}

func outputCacheInfo(w io.Writer, info cacheInfo, asJSON bool) error {
	if asJSON {
		return writeJSON(w, info)
	}

	fmt.Fprintf(w, "Cache:        %s\n", info.Dir)
	fmt.Fprintf(w, "Installed:    %d (%s)\n", info.Installed, models.FormatSize(info.UsedBytes))
	if info.FreeBytes > 0 {
		fmt.Fprintf(w, "Free space:   %s\n", models.FormatSize(int64(info.FreeBytes)))
	} else {
		fmt.Fprintln(w, "Free space:   unknown")
	}
	return nil
}
