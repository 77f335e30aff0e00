package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// countingStorage wraps a real storage and records which operations ran.
type countingStorage struct {
	*storage

	mu    sync.Mutex
	calls map[string]int
}

func newCountingStorage(baseDir string) *countingStorage {
	return &countingStorage{
		storage: &storage{baseDir: baseDir},
		calls:   make(map[string]int),
	}
}

func (c *countingStorage) record(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[op]++
}

func (c *countingStorage) count(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

func (c *countingStorage) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func (c *countingStorage) exists(path string) (bool, error) {
	c.record("exists")
	return c.storage.exists(path)
}

func (c *countingStorage) ensureDir(path string) error {
	c.record("ensureDir")
	return c.storage.ensureDir(path)
}

func (c *countingStorage) writeFile(path string, r io.Reader, size int64) (int64, error) {
	c.record("writeFile")
	return c.storage.writeFile(path, r, size)
}

func (c *countingStorage) removeFile(path string) error {
	c.record("removeFile")
	return c.storage.removeFile(path)
}

var _ storageInterface = (*countingStorage)(nil)

// recordingLogger keeps Info messages for assertions.
type recordingLogger struct {
	mu    sync.Mutex
	infos []string
}

func (l *recordingLogger) Debug(msg string, keysAndValues ...any) {}
func (l *recordingLogger) Warn(msg string, keysAndValues ...any)  {}
func (l *recordingLogger) Error(msg string, keysAndValues ...any) {}

func (l *recordingLogger) Info(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

var _ Logger = (*recordingLogger)(nil)

// modelServer serves body for every request and records request paths.
type modelServer struct {
	*httptest.Server
	hits  int32
	mu    sync.Mutex
	paths []string
}

func newModelServer(t *testing.T, status int, body []byte) *modelServer {
	t.Helper()
	ms := &modelServer{}
	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&ms.hits, 1)
		ms.mu.Lock()
		ms.paths = append(ms.paths, r.URL.Path)
		ms.mu.Unlock()
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(ms.Close)
	return ms
}

func (ms *modelServer) requests() int {
	return int(atomic.LoadInt32(&ms.hits))
}

// newTestManager builds a manager over st that downloads from srv.
func newTestManager(st storageInterface, srv *httptest.Server, logger Logger) *manager {
	var client HTTPClient = http.DefaultClient
	baseURL := "http://127.0.0.1:0"
	if srv != nil {
		client = srv.Client()
		baseURL = srv.URL
	}
	return &manager{
		catalog: NewCatalog(baseURL),
		logger:  logger,
		storage: st,
		remote:  newRemoteClient(client, logger),
	}
}

func TestDownload(t *testing.T) {
	body := []byte("ggml model weights")
	srv := newModelServer(t, http.StatusOK, body)
	st := newCountingStorage(t.TempDir())
	mgr := newTestManager(st, srv.Server, nil)

	path, err := mgr.Download(context.Background(), Base)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	want := filepath.Join(st.baseDir, "whispercpp", "ggml-base.bin")
	if path != want {
		t.Errorf("Download() = %q, want %q", path, want)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(got) != string(body) {
		t.Errorf("file content = %q, want %q", got, body)
	}

	if len(srv.paths) != 1 || srv.paths[0] != "/datasets/ggerganov/whisper.cpp/resolve/main/ggml-base.bin" {
		t.Errorf("requested paths = %v", srv.paths)
	}
}

func TestDownloadCached(t *testing.T) {
	srv := newModelServer(t, http.StatusOK, []byte("weights"))
	st := newCountingStorage(t.TempDir())
	mgr := newTestManager(st, srv.Server, nil)
	ctx := context.Background()

	first, err := mgr.Download(ctx, TinyEn)
	if err != nil {
		t.Fatalf("first Download() error = %v", err)
	}
	second, err := mgr.Download(ctx, TinyEn)
	if err != nil {
		t.Fatalf("second Download() error = %v", err)
	}

	if first != second {
		t.Errorf("paths differ: %q vs %q", first, second)
	}
	if srv.requests() != 1 {
		t.Errorf("requests = %d, want 1", srv.requests())
	}
	if st.count("writeFile") != 1 {
		t.Errorf("writeFile calls = %d, want 1", st.count("writeFile"))
	}
}

func TestDownloadUnknownModel(t *testing.T) {
	srv := newModelServer(t, http.StatusOK, []byte("weights"))
	st := newCountingStorage(t.TempDir())
	mgr := newTestManager(st, srv.Server, nil)

	_, err := mgr.Download(context.Background(), "huge")
	if !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("Download() error = %v, want ErrUnknownModel", err)
	}

	if st.total() != 0 {
		t.Errorf("storage was touched: %v", st.calls)
	}
	if srv.requests() != 0 {
		t.Errorf("requests = %d, want 0", srv.requests())
	}
	if _, err := os.Stat(st.modelsDir()); !errors.Is(err, os.ErrNotExist) {
		t.Error("cache directory was created for an unknown model")
	}
}

func TestDownloadDirectoryCreation(t *testing.T) {
	t.Run("missing directory is created", func(t *testing.T) {
		srv := newModelServer(t, http.StatusOK, []byte("w"))
		st := newCountingStorage(filepath.Join(t.TempDir(), "nested", "data"))
		mgr := newTestManager(st, srv.Server, nil)

		if _, err := mgr.Download(context.Background(), Small); err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		if st.count("ensureDir") != 1 {
			t.Errorf("ensureDir calls = %d, want 1", st.count("ensureDir"))
		}
	})

	t.Run("existing directory is reused", func(t *testing.T) {
		srv := newModelServer(t, http.StatusOK, []byte("w"))
		st := newCountingStorage(t.TempDir())
		if err := os.MkdirAll(st.modelsDir(), 0755); err != nil {
			t.Fatal(err)
		}
		mgr := newTestManager(st, srv.Server, nil)

		if _, err := mgr.Download(context.Background(), Small); err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		if st.count("ensureDir") != 0 {
			t.Errorf("ensureDir calls = %d, want 0", st.count("ensureDir"))
		}
	})
}

func TestDownloadWithForce(t *testing.T) {
	srv := newModelServer(t, http.StatusOK, []byte("fresh"))
	st := newCountingStorage(t.TempDir())
	os.MkdirAll(st.modelsDir(), 0755)
	os.WriteFile(st.modelPath(Medium), []byte("stale"), 0644)
	mgr := newTestManager(st, srv.Server, nil)

	path, err := mgr.Download(context.Background(), Medium, WithForce())
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if srv.requests() != 1 {
		t.Errorf("requests = %d, want 1", srv.requests())
	}
	got, _ := os.ReadFile(path)
	if string(got) != "fresh" {
		t.Errorf("file content = %q, want %q", got, "fresh")
	}
}

func TestDownloadWithProgress(t *testing.T) {
	body := []byte(strings.Repeat("x", 1000))
	srv := newModelServer(t, http.StatusOK, body)
	mgr := newTestManager(newCountingStorage(t.TempDir()), srv.Server, nil)

	var updates []DownloadProgress
	_, err := mgr.Download(context.Background(), LargeV1, WithProgress(func(p DownloadProgress) {
		updates = append(updates, p)
	}))
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if len(updates) < 2 {
		t.Fatalf("got %d progress updates, want at least 2", len(updates))
	}

	var last int64
	for i, u := range updates {
		if u.ID != LargeV1 {
			t.Errorf("update %d ID = %q", i, u.ID)
		}
		if u.BytesTotal != int64(len(body)) {
			t.Errorf("update %d BytesTotal = %d, want %d", i, u.BytesTotal, len(body))
		}
		if u.BytesCompleted < last {
			t.Errorf("update %d went backwards: %d < %d", i, u.BytesCompleted, last)
		}
		last = u.BytesCompleted
	}

	final := updates[len(updates)-1]
	if !final.Done || final.BytesCompleted != int64(len(body)) {
		t.Errorf("final update = %+v", final)
	}
	for _, u := range updates[:len(updates)-1] {
		if u.Done {
			t.Error("Done reported before the final update")
		}
	}
}

func TestDownloadHTTPError(t *testing.T) {
	srv := newModelServer(t, http.StatusNotFound, []byte("Entry not found"))
	st := newCountingStorage(t.TempDir())
	mgr := newTestManager(st, srv.Server, nil)

	_, err := mgr.Download(context.Background(), Base)
	if !errors.Is(err, ErrNetworkError) {
		t.Fatalf("Download() error = %v, want ErrNetworkError", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error %q does not mention the status", err)
	}
	if ok, _ := st.storage.exists(st.modelPath(Base)); ok {
		t.Error("error body was cached as a model")
	}

	// A failed attempt is retried on the next call.
	mgr.Download(context.Background(), Base)
	if srv.requests() != 2 {
		t.Errorf("requests = %d, want 2", srv.requests())
	}
}

func TestDownloadConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	st := newCountingStorage(t.TempDir())
	mgr := newTestManager(st, nil, nil)
	mgr.catalog = NewCatalog(url)

	_, err := mgr.Download(context.Background(), Tiny)
	if !errors.Is(err, ErrNetworkError) {
		t.Fatalf("Download() error = %v, want ErrNetworkError", err)
	}
	if st.count("writeFile") != 0 {
		t.Error("writeFile called after a connection failure")
	}
}

func TestDownloadCanceled(t *testing.T) {
	srv := newModelServer(t, http.StatusOK, []byte("w"))
	mgr := newTestManager(newCountingStorage(t.TempDir()), srv.Server, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mgr.Download(ctx, Base); err == nil {
		t.Fatal("Download() with canceled context succeeded")
	}
}

func TestDownloadInsufficientSpace(t *testing.T) {
	srv := newModelServer(t, http.StatusOK, []byte(strings.Repeat("x", 4096)))
	st := newCountingStorage(t.TempDir())
	mgr := newTestManager(st, srv.Server, nil)
	mgr.freeSpace = func(string) (uint64, error) { return 1024, nil }

	_, err := mgr.Download(context.Background(), Base)
	if !errors.Is(err, ErrInsufficientSpace) {
		t.Fatalf("Download() error = %v, want ErrInsufficientSpace", err)
	}
	if st.count("writeFile") != 0 {
		t.Error("writeFile called despite insufficient space")
	}
}

func TestDownloadFreeSpaceUnknown(t *testing.T) {
	srv := newModelServer(t, http.StatusOK, []byte("w"))
	mgr := newTestManager(newCountingStorage(t.TempDir()), srv.Server, nil)
	mgr.freeSpace = func(string) (uint64, error) { return 0, fmt.Errorf("statfs unsupported") }

	if _, err := mgr.Download(context.Background(), Base); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
}

func TestDownloadLogsNotice(t *testing.T) {
	srv := newModelServer(t, http.StatusOK, []byte("w"))
	logger := &recordingLogger{}
	mgr := newTestManager(newCountingStorage(t.TempDir()), srv.Server, logger)
	ctx := context.Background()

	mgr.Download(ctx, BaseEn)
	mgr.Download(ctx, BaseEn)

	want := []string{"Downloading model base.en. It may take a while..."}
	if len(logger.infos) != 1 || logger.infos[0] != want[0] {
		t.Errorf("Info messages = %q, want %q", logger.infos, want)
	}
}

func TestPath(t *testing.T) {
	srv := newModelServer(t, http.StatusOK, []byte("w"))
	mgr := newTestManager(newCountingStorage(t.TempDir()), srv.Server, nil)
	ctx := context.Background()

	if _, err := mgr.Path(ctx, Small); !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("Path() before download error = %v, want ErrNotInstalled", err)
	}

	want, err := mgr.Download(ctx, Small)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	got, err := mgr.Path(ctx, Small)
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	if got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}

	if _, err := mgr.Path(ctx, "huge"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("Path(huge) error = %v, want ErrUnknownModel", err)
	}
}

func TestModelPath(t *testing.T) {
	st := newCountingStorage(t.TempDir())
	mgr := newTestManager(st, nil, nil)

	got, err := mgr.ModelPath(Large)
	if err != nil {
		t.Fatalf("ModelPath() error = %v", err)
	}
	if want := filepath.Join(st.baseDir, "whispercpp", "ggml-large.bin"); got != want {
		t.Errorf("ModelPath() = %q, want %q", got, want)
	}
	if st.total() != 0 {
		t.Errorf("ModelPath touched storage: %v", st.calls)
	}

	if _, err := mgr.ModelPath("huge"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("ModelPath(huge) error = %v, want ErrUnknownModel", err)
	}
}

func TestRemove(t *testing.T) {
	srv := newModelServer(t, http.StatusOK, []byte("w"))
	st := newCountingStorage(t.TempDir())
	mgr := newTestManager(st, srv.Server, nil)
	ctx := context.Background()

	if err := mgr.Remove(ctx, Base); !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("Remove() before download error = %v, want ErrNotInstalled", err)
	}

	path, _ := mgr.Download(ctx, Base)
	if err := mgr.Remove(ctx, Base); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("model file still present after Remove")
	}

	// Removing frees the slot for a fresh download.
	mgr.Download(ctx, Base)
	if srv.requests() != 2 {
		t.Errorf("requests = %d, want 2", srv.requests())
	}
}

func TestListInstalled(t *testing.T) {
	srv := newModelServer(t, http.StatusOK, []byte("weights"))
	mgr := newTestManager(newCountingStorage(t.TempDir()), srv.Server, nil)
	ctx := context.Background()

	installed, err := mgr.ListInstalled(ctx)
	if err != nil {
		t.Fatalf("ListInstalled() error = %v", err)
	}
	if len(installed) != 0 {
		t.Fatalf("ListInstalled() = %v, want empty", installed)
	}

	mgr.Download(ctx, Medium)
	mgr.Download(ctx, Tiny)

	installed, err = mgr.ListInstalled(ctx)
	if err != nil {
		t.Fatalf("ListInstalled() error = %v", err)
	}
	if len(installed) != 2 || installed[0].ID != Tiny || installed[1].ID != Medium {
		t.Errorf("ListInstalled() = %+v, want [tiny medium]", installed)
	}
	if installed[0].Size != int64(len("weights")) {
		t.Errorf("Size = %d, want %d", installed[0].Size, len("weights"))
	}
}

func TestListAvailable(t *testing.T) {
	mgr := newTestManager(newCountingStorage(t.TempDir()), nil, nil)

	remote := mgr.ListAvailable()
	if len(remote) != len(Models()) {
		t.Fatalf("ListAvailable() returned %d models, want %d", len(remote), len(Models()))
	}
	if !strings.HasPrefix(remote[0].URL, "http://127.0.0.1:0/") {
		t.Errorf("ListAvailable()[0].URL = %q, want the manager's host", remote[0].URL)
	}
}
