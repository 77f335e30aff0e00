package models

import (
	"context"
	"fmt"
	"io"
)

// downloadEngine fetches a single model file into storage.
type downloadEngine struct {
	// remote is used to fetch model files from the host.
	remote *remoteClient

	// storage receives the downloaded file.
	storage storageInterface

	// freeSpace reports available bytes on the cache filesystem. May be nil.
	freeSpace func(path string) (uint64, error)

	// logger receives diagnostic messages. May be nil.
	logger Logger
}

// newDownloadEngine creates a new download engine.
func newDownloadEngine(remote *remoteClient, storage storageInterface, freeSpace func(string) (uint64, error), logger Logger) *downloadEngine {
	return &downloadEngine{
		remote:    remote,
		storage:   storage,
		freeSpace: freeSpace,
		logger:    logger,
	}
}

// fetch downloads url into dest. The progressFn, if set, is called as bytes
// arrive and once more with Done set after the file is in place.
func (d *downloadEngine) fetch(ctx context.Context, id ModelID, url, dest string, progressFn func(DownloadProgress)) error {
	resp, err := d.remote.open(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	total := resp.ContentLength
	if err := d.checkSpace(dest, total); err != nil {
		return err
	}

	var completed int64
	var body io.Reader = resp.Body
	if progressFn != nil {
		progressFn(DownloadProgress{ID: id, BytesTotal: total})
		body = &progressReader{reader: resp.Body, onProgress: func(delta int64) {
			completed += delta
			progressFn(DownloadProgress{ID: id, BytesTotal: total, BytesCompleted: completed})
		}}
	}

	n, err := d.storage.writeFile(dest, body, total)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", id, err)
	}

	if progressFn != nil {
		progressFn(DownloadProgress{ID: id, BytesTotal: total, BytesCompleted: n, Done: true})
	}
	if d.logger != nil {
		d.logger.Debug("model downloaded", "model", id, "size", n, "path", dest)
	}
	return nil
}

// checkSpace fails with ErrInsufficientSpace when the announced size does
// not fit on the filesystem holding dest. Unknown sizes always pass, as do
// filesystems whose free space cannot be determined.
func (d *downloadEngine) checkSpace(dest string, size int64) error {
	if d.freeSpace == nil || size <= 0 {
		return nil
	}
	free, err := d.freeSpace(dest)
	if err != nil {
		if d.logger != nil {
			d.logger.Debug("free space check skipped", "path", dest, "error", err)
		}
		return nil
	}
	if uint64(size) > free {
		return fmt.Errorf("%w: need %s, have %s", ErrInsufficientSpace, FormatSize(size), FormatSize(int64(free)))
	}
	return nil
}

// FormatSize formats a byte count as B, KB, MB, or GB.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
