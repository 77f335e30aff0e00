package models

import (
	"context"
	"log/slog"
	"net/http"
)

// Manager provides programmatic access to the local model cache.
// For CLI integration, see package cli.
type Manager interface {
	// Download returns the path to the cached weights for id, fetching them
	// first if they are not present yet.
	// Returns ErrUnknownModel, before any I/O, if id is not in the catalog.
	Download(ctx context.Context, id ModelID, opts ...DownloadOption) (string, error)

	// Path returns the path to the cached weights for id.
	// Returns ErrNotInstalled if the file is not present.
	Path(ctx context.Context, id ModelID) (string, error)

	// ModelPath returns where the weights for id are (or would be) stored.
	// It does not touch the filesystem.
	ModelPath(id ModelID) (string, error)

	// ListInstalled returns all model files present in the cache.
	ListInstalled(ctx context.Context) ([]InstalledModel, error)

	// ListAvailable returns every model in the catalog.
	ListAvailable() []RemoteModel

	// Remove deletes a cached model file.
	// Returns ErrNotInstalled if the file is not present.
	Remove(ctx context.Context, id ModelID) error

	// Dir returns the cache directory model files are stored in.
	Dir() string
}

// Ensure manager implements Manager interface.
var _ Manager = (*manager)(nil)

// NewManager creates a new Manager with the given configuration.
// No directories are created until a model is downloaded.
func NewManager(cfg Config, opts ...ManagerOption) (Manager, error) {
	mcfg := newManagerConfig()
	for _, opt := range opts {
		opt(mcfg)
	}

	storage, err := newStorage(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	catalog := mcfg.catalog
	if catalog == nil {
		catalog = DefaultCatalog
		if cfg.BaseURL != "" {
			catalog = NewCatalog(cfg.BaseURL)
		}
	}

	return &manager{
		catalog:   catalog,
		logger:    mcfg.logger,
		storage:   storage,
		remote:    newRemoteClient(mcfg.httpClient, mcfg.logger),
		freeSpace: mcfg.freeSpace,
	}, nil
}

// DownloadModel fetches the weights for the named model into
// <basedir>/whispercpp/ggml-<name>.bin unless they are already there, and
// returns that path. An empty basedir selects $XDG_DATA_HOME, falling back
// to ~/.local/share. The download notice goes to slog.Default().
func DownloadModel(ctx context.Context, name string, basedir string) (string, error) {
	id, err := ParseModelID(name)
	if err != nil {
		return "", err
	}
	mgr, err := NewManager(Config{DataDir: basedir},
		WithHTTPClient(http.DefaultClient),
		WithLogger(slog.Default()),
	)
	if err != nil {
		return "", err
	}
	return mgr.Download(ctx, id)
}
