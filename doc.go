// Package models fetches pretrained whisper.cpp model weights into a local
// cache directory.
//
// The package serves two use cases:
//
//  1. One-call fetch via DownloadModel - returns the path of the cached
//     weights for a model name, downloading them on first use.
//
//  2. Programmatic API via the Manager interface - NewManager returns a
//     Manager for downloading, locating, listing, and removing cached models
//     with an injectable HTTP client and logger.
//
// An embeddable Cobra command tree lives in the cli subpackage.
//
// # Models
//
// The catalog is fixed: tiny.en, tiny, base.en, base, small.en, small,
// medium.en, medium, large-v1 and large. Any other identifier fails with
// ErrUnknownModel before the filesystem or network is touched.
//
// # Storage
//
// Models are stored as <root>/whispercpp/ggml-<id>.bin, where root is
// Config.DataDir if set, else $XDG_DATA_HOME, else ~/.local/share.
// A file's presence is the only record that it was downloaded. Downloads are
// written to a ".part" file and renamed into place when complete, so an
// interrupted download never leaves a truncated model behind.
package models
