package models

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// remoteClient handles HTTP communication with the model host.
type remoteClient struct {
	// httpClient is used for HTTP requests.
	httpClient HTTPClient

	// logger receives diagnostic messages. May be nil.
	logger Logger
}

// newRemoteClient creates a new remote client.
func newRemoteClient(client HTTPClient, logger Logger) *remoteClient {
	return &remoteClient{
		httpClient: client,
		logger:     logger,
	}
}

// open issues the GET for url and returns the response once the status has
// been checked. The caller must close the body.
func (r *remoteClient) open(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if r.logger != nil {
		r.logger.Debug("fetching model", "url", url)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrNetworkError, url, err)
	}

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: fetching %s: status %d", ErrNetworkError, url, resp.StatusCode)
	}

	return resp, nil
}

// progressReader wraps an io.Reader and reports progress as bytes are read.
type progressReader struct {
	reader     io.Reader
	onProgress func(delta int64)
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 && pr.onProgress != nil {
		pr.onProgress(int64(n))
	}
	return
}
