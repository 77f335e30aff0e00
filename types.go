package models

import (
	"strings"
	"time"
)

// Config configures the models module.
type Config struct {
	// DataDir overrides the data home the cache directory lives under.
	// If empty, $XDG_DATA_HOME is used, falling back to ~/.local/share.
	// Models are stored in <DataDir>/whispercpp/.
	DataDir string

	// BaseURL overrides the host models are fetched from.
	// If empty, DefaultBaseURL is used.
	// Example: "https://hf-mirror.example.com"
	BaseURL string
}

// ModelID identifies one of the pretrained whisper.cpp models.
type ModelID string

// Known model identifiers, in catalog order.
const (
	TinyEn   ModelID = "tiny.en"
	Tiny     ModelID = "tiny"
	BaseEn   ModelID = "base.en"
	Base     ModelID = "base"
	SmallEn  ModelID = "small.en"
	Small    ModelID = "small"
	MediumEn ModelID = "medium.en"
	Medium   ModelID = "medium"
	LargeV1  ModelID = "large-v1"
	Large    ModelID = "large"
)

// String returns the identifier as used in file names and URLs.
func (id ModelID) String() string {
	return string(id)
}

// FileName returns the on-disk name of the model weights: "ggml-<id>.bin".
func (id ModelID) FileName() string {
	return "ggml-" + string(id) + ".bin"
}

// Multilingual reports whether the model covers languages other than English.
func (id ModelID) Multilingual() bool {
	return !strings.HasSuffix(string(id), ".en")
}

// ParseModelID validates s against the known model identifiers.
// Returns ErrUnknownModel if s is not one of them.
func ParseModelID(s string) (ModelID, error) {
	id := ModelID(s)
	if _, ok := modelSizes[id]; !ok {
		return "", unknownModel(s)
	}
	return id, nil
}

// Models returns every known model identifier in catalog order.
func Models() []ModelID {
	out := make([]ModelID, len(modelOrder))
	copy(out, modelOrder)
	return out
}

// InstalledModel contains information about a model file in the local cache.
type InstalledModel struct {
	// ID identifies the model.
	ID ModelID `json:"id"`

	// Path is the absolute path to the weights file.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// ModTime is when the file was last written.
	ModTime time.Time `json:"mod_time"`
}

// RemoteModel describes a model available for download.
type RemoteModel struct {
	// ID identifies the model.
	ID ModelID `json:"id"`

	// URL is where the weights are fetched from.
	URL string `json:"url"`

	// FileName is the name the weights are stored under.
	FileName string `json:"file_name"`

	// SizeLabel is an approximate human-readable download size.
	SizeLabel string `json:"size_label"`

	// Multilingual is false for English-only models.
	Multilingual bool `json:"multilingual"`
}

// DownloadProgress reports progress while a model file is being fetched.
type DownloadProgress struct {
	// ID is the model being downloaded.
	ID ModelID

	// BytesTotal is the expected size, or -1 if the server did not send one.
	BytesTotal int64

	// BytesCompleted is the number of bytes written so far.
	BytesCompleted int64

	// Done is set on the final report after the file has been moved into place.
	Done bool
}
