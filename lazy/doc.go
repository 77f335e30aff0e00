// Package lazy defers construction of a heavyweight optional dependency
// until it is first used.
//
// A Module holds a Loader and nothing else until Get is called. The first
// successful Get runs the Loader, publishes the result in the caller's
// namespace Registry and in a shared Registry, logs an optional one-time
// warning, and caches the value. Every later Get returns the cached value
// without running the Loader again.
//
// A Loader that reports ErrNotFound is turned into the error kind configured
// with WithError, carrying the configured message plus the reason. Failures
// are never cached: the next Get tries again.
//
//	var ffmpeg = lazy.New(ns, "ffmpeg", "github.com/acme/ffmpeg", openFFmpeg,
//		lazy.WithError(nil, "ffmpeg support requires libavcodec"))
//
//	enc, err := ffmpeg.Get()
//
// # Thread Safety
//
// Module and Registry are safe for concurrent use. Concurrent first calls to
// Get run the Loader once; the others wait for its result.
package lazy
