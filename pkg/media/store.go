package media

import (
	"context"
	"io"
)

// Storage areas holding the two derivative kinds.
const (
	AreaOptimized  = "optimized"
	AreaThumbnails = "thumbnails"
)

// CacheControl is applied to every served or stored derivative.
const CacheControl = "public, max-age=86400"

// Ref addresses one stored derivative.
type Ref struct {
	Area string
	Name string
}

// Store persists derivatives. Implementations must make Put atomic from the
// reader's point of view: a failed Put leaves nothing under name.
type Store interface {
	Put(ctx context.Context, area, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, area, name string) (io.ReadCloser, error)
	Remove(ctx context.Context, area, name string) error
	List(ctx context.Context, area string) ([]string, error)
}
