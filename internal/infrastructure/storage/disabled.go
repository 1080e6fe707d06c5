package storage

import (
	"context"
	"errors"

	catalogapp "github.com/shopbot/backend/internal/application/catalog"
)

// DisabledPhotoStore stands in when no object storage backend is
// configured. Photos stay on the transport's servers, so there is nothing
// to upload, resolve or delete here.
type DisabledPhotoStore struct{}

// NewDisabledPhotoStore creates the no-backend photo store
func NewDisabledPhotoStore() *DisabledPhotoStore {
	return &DisabledPhotoStore{}
}

// Ensure DisabledPhotoStore implements PhotoStore
var _ catalogapp.PhotoStore = (*DisabledPhotoStore)(nil)

// Upload always fails; nothing should route bytes here
func (*DisabledPhotoStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return errors.New("object storage is disabled")
}

// ResolveURL reports no URL. Consumers publish the photo as unavailable
// rather than treating this as an error.
func (*DisabledPhotoStore) ResolveURL(ctx context.Context, key string) (string, error) {
	return "", nil
}

// Delete is a no-op since nothing is stored
func (*DisabledPhotoStore) Delete(ctx context.Context, key string) error {
	return nil
}
