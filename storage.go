package models

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// cacheSubdir is the directory below the data home that holds model files.
const cacheSubdir = "whispercpp"

// partialSuffix marks a download that has not been moved into place yet.
const partialSuffix = ".part"

// storageInterface defines operations for local filesystem management.
// Implemented by *storage for production and mock storages for tests.
type storageInterface interface {
	// modelsDir returns the directory model files are stored in.
	modelsDir() string

	// modelPath returns the absolute path to a model's weights file.
	modelPath(id ModelID) string

	// exists reports whether path is present on disk.
	exists(path string) (bool, error)

	// ensureDir creates a directory and all parent directories.
	// Succeeds if the directory already exists.
	ensureDir(path string) error

	// writeFile streams r into path via a temporary file and renames it into
	// place once the copy is complete. A non-negative size is the expected
	// length; a short copy is discarded. Returns the number of bytes written.
	writeFile(path string, r io.Reader, size int64) (int64, error)

	// removeFile deletes path.
	removeFile(path string) error

	// listModels returns the model files currently present in modelsDir.
	listModels() ([]InstalledModel, error)
}

// storage handles all local filesystem operations.
// Implements storageInterface.
type storage struct {
	// baseDir is the data home the cache directory lives under.
	baseDir string
}

// Ensure storage implements storageInterface.
var _ storageInterface = (*storage)(nil)

// defaultDataHome returns $XDG_DATA_HOME if set, otherwise ~/.local/share.
func defaultDataHome() (string, error) {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return xdgData, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

// newStorage creates a storage rooted at dataDir, or at the default data
// home when dataDir is empty. Nothing is created on disk.
func newStorage(dataDir string) (*storage, error) {
	baseDir := dataDir
	if baseDir == "" {
		home, err := defaultDataHome()
		if err != nil {
			return nil, fmt.Errorf("failed to get default data dir: %w", err)
		}
		baseDir = home
	}
	return &storage{baseDir: baseDir}, nil
}

// modelsDir returns <baseDir>/whispercpp.
func (s *storage) modelsDir() string {
	return filepath.Join(s.baseDir, cacheSubdir)
}

// modelPath returns <baseDir>/whispercpp/ggml-<id>.bin.
func (s *storage) modelPath(id ModelID) string {
	return filepath.Join(s.modelsDir(), id.FileName())
}

// exists reports whether path is present on disk.
func (s *storage) exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: checking %s: %v", ErrStorageError, path, err)
}

// ensureDir creates a directory and all parent directories if they don't exist.
func (s *storage) ensureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %v", ErrStorageError, path, err)
	}
	return nil
}

// writeFile streams r to a temporary file next to path, then renames it.
// The temporary file is removed if anything fails, so path never holds a
// truncated download.
func (s *storage) writeFile(path string, r io.Reader, size int64) (int64, error) {
	tmp := path + partialSuffix
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create temp file: %v", ErrStorageError, err)
	}

	src := &sourceReader{r: r}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if copyErr != nil {
		os.Remove(tmp)
		if src.err != nil {
			return n, fmt.Errorf("%w: reading %s: %v", ErrNetworkError, filepath.Base(path), src.err)
		}
		return n, fmt.Errorf("%w: writing %s: %v", ErrStorageError, filepath.Base(path), copyErr)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return n, fmt.Errorf("%w: failed to close temp file: %v", ErrStorageError, closeErr)
	}
	if size >= 0 && n != size {
		os.Remove(tmp)
		return n, fmt.Errorf("%w: %s: received %d of %d bytes", ErrNetworkError, filepath.Base(path), n, size)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return n, fmt.Errorf("%w: failed to rename temp file: %v", ErrStorageError, err)
	}
	return n, nil
}

// sourceReader remembers the last read error so a failed copy can be
// attributed to the source rather than the destination.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		s.err = err
	}
	return n, err
}

// removeFile deletes path.
func (s *storage) removeFile(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: failed to remove %s: %v", ErrStorageError, path, err)
	}
	return nil
}

// listModels scans modelsDir for ggml-<id>.bin files of known models.
// A missing directory yields an empty list.
func (s *storage) listModels() ([]InstalledModel, error) {
	entries, err := os.ReadDir(s.modelsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []InstalledModel{}, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStorageError, s.modelsDir(), err)
	}

	models := []InstalledModel{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "ggml-") || !strings.HasSuffix(name, ".bin") {
			continue
		}
		id, err := ParseModelID(strings.TrimSuffix(strings.TrimPrefix(name, "ggml-"), ".bin"))
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		models = append(models, InstalledModel{
			ID:      id,
			Path:    filepath.Join(s.modelsDir(), name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(models, func(i, j int) bool {
		return catalogIndex(models[i].ID) < catalogIndex(models[j].ID)
	})
	return models, nil
}

// catalogIndex returns the position of id in catalog order.
func catalogIndex(id ModelID) int {
	for i, m := range modelOrder {
		if m == id {
			return i
		}
	}
	return len(modelOrder)
}
