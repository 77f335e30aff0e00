package models

import (
	"context"
	"fmt"
)

// manager is the concrete implementation of the Manager interface.
type manager struct {
	// catalog resolves model identifiers to URLs.
	catalog *Catalog

	// logger receives diagnostic messages and download notices. May be nil.
	logger Logger

	// storage handles local filesystem operations.
	storage storageInterface

	// remote handles communication with the model host.
	remote *remoteClient

	// freeSpace reports available bytes on the cache filesystem. May be nil.
	freeSpace func(path string) (uint64, error)
}

// Download returns the cached path for id, fetching the file if needed.
func (m *manager) Download(ctx context.Context, id ModelID, opts ...DownloadOption) (string, error) {
	cfg := newDownloadConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	// Resolve the URL first so an unknown id has no side effects.
	url, err := m.catalog.URL(id)
	if err != nil {
		return "", err
	}

	dir := m.storage.modelsDir()
	dirExists, err := m.storage.exists(dir)
	if err != nil {
		return "", err
	}
	if !dirExists {
		if err := m.storage.ensureDir(dir); err != nil {
			return "", err
		}
	}

	path := m.storage.modelPath(id)
	cached, err := m.storage.exists(path)
	if err != nil {
		return "", err
	}
	if cached && !cfg.force {
		if m.logger != nil {
			m.logger.Debug("model cached", "model", id, "path", path)
		}
		return path, nil
	}

	if m.logger != nil {
		m.logger.Info(fmt.Sprintf("Downloading model %s. It may take a while...", id), "url", url)
	}

	engine := newDownloadEngine(m.remote, m.storage, m.freeSpace, m.logger)
	if err := engine.fetch(ctx, id, url, path, cfg.progressFn); err != nil {
		return "", err
	}
	return path, nil
}

// Path returns the cached path for id, or ErrNotInstalled.
func (m *manager) Path(ctx context.Context, id ModelID) (string, error) {
	path, err := m.ModelPath(id)
	if err != nil {
		return "", err
	}

	ok, err := m.storage.exists(path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotInstalled, id)
	}
	return path, nil
}

// ModelPath returns where the weights for id are stored.
func (m *manager) ModelPath(id ModelID) (string, error) {
	if _, err := m.catalog.URL(id); err != nil {
		return "", err
	}
	return m.storage.modelPath(id), nil
}

// ListInstalled returns all model files present in the cache.
func (m *manager) ListInstalled(ctx context.Context) ([]InstalledModel, error) {
	models, err := m.storage.listModels()
	if err != nil {
		return nil, fmt.Errorf("listing installed models: %w", err)
	}
	return models, nil
}

// ListAvailable returns every model in the catalog.
func (m *manager) ListAvailable() []RemoteModel {
	return m.catalog.Remote()
}

// Remove deletes a cached model file.
func (m *manager) Remove(ctx context.Context, id ModelID) error {
	path, err := m.Path(ctx, id)
	if err != nil {
		return err
	}

	if err := m.storage.removeFile(path); err != nil {
		return fmt.Errorf("removing model %s: %w", id, err)
	}

	if m.logger != nil {
		m.logger.Debug("model removed", "model", id, "path", path)
	}
	return nil
}

// Dir returns the cache directory model files are stored in.
func (m *manager) Dir() string {
	return m.storage.modelsDir()
}
