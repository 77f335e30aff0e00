package models

import (
	"strings"
)

// DefaultBaseURL is the host the default catalog fetches from.
const DefaultBaseURL = "https://huggingface.co"

// datasetPath is the location of the ggml weights below the host.
const datasetPath = "datasets/ggerganov/whisper.cpp/resolve/main"

// modelOrder lists the known identifiers in catalog order.
var modelOrder = []ModelID{
	TinyEn, Tiny,
	BaseEn, Base,
	SmallEn, Small,
	MediumEn, Medium,
	LargeV1, Large,
}

// modelSizes holds approximate download sizes, keyed by every known identifier.
var modelSizes = map[ModelID]string{
	TinyEn:   "~75 MB",
	Tiny:     "~75 MB",
	BaseEn:   "~142 MB",
	Base:     "~142 MB",
	SmallEn:  "~466 MB",
	Small:    "~466 MB",
	MediumEn: "~1.5 GB",
	Medium:   "~1.5 GB",
	LargeV1:  "~2.9 GB",
	Large:    "~2.9 GB",
}

// Catalog maps model identifiers to the URLs their weights are served from.
// A Catalog is immutable once built and safe for concurrent use.
type Catalog struct {
	baseURL string
	urls    map[ModelID]string
}

// DefaultCatalog points at the upstream whisper.cpp dataset on Hugging Face.
var DefaultCatalog = NewCatalog(DefaultBaseURL)

// NewCatalog builds a catalog serving every known model from baseURL, using
// the same path layout as the upstream dataset.
// The baseURL is normalized by removing any trailing slashes.
func NewCatalog(baseURL string) *Catalog {
	base := strings.TrimRight(baseURL, "/")
	urls := make(map[ModelID]string, len(modelOrder))
	for _, id := range modelOrder {
		urls[id] = base + "/" + datasetPath + "/" + id.FileName()
	}
	return &Catalog{baseURL: base, urls: urls}
}

// BaseURL returns the host the catalog points at.
func (c *Catalog) BaseURL() string {
	return c.baseURL
}

// URL returns the download URL for id.
// Returns ErrUnknownModel if id is not in the catalog.
func (c *Catalog) URL(id ModelID) (string, error) {
	u, ok := c.urls[id]
	if !ok {
		return "", unknownModel(string(id))
	}
	return u, nil
}

// Remote returns catalog entries in catalog order.
func (c *Catalog) Remote() []RemoteModel {
	out := make([]RemoteModel, 0, len(modelOrder))
	for _, id := range modelOrder {
		out = append(out, RemoteModel{
			ID:           id,
			URL:          c.urls[id],
			FileName:     id.FileName(),
			SizeLabel:    modelSizes[id],
			Multilingual: id.Multilingual(),
		})
	}
	return out
}
