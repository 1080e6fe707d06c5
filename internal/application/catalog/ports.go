package catalog

import (
	"context"
)

// Rebuilder regenerates the published storefront snapshot from current
// store state. Every committed catalog mutation triggers it synchronously.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

// PhotoStore is the object storage surface the catalog needs for product
// photos. Implementations may be a real bucket or a passthrough when no
// storage backend is configured.
type PhotoStore interface {
	// Upload stores photo bytes under the given key
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// ResolveURL turns a stored photo key into a browser-usable URL.
	// An empty URL with a nil error means the key has no web-resolvable
	// form (passthrough mode).
	ResolveURL(ctx context.Context, key string) (string, error)

	// Delete removes the stored object for a key. Passthrough
	// implementations treat this as a no-op.
	Delete(ctx context.Context, key string) error
}

// PhotoIngester turns a photo received from the messaging transport into
// a stored photo key for a product.
type PhotoIngester interface {
	Ingest(ctx context.Context, fileID string) (string, error)
}
