package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	catalogapp "github.com/shopbot/backend/internal/application/catalog"
)

// photoKeyPrefix namespaces product photos inside the bucket
const photoKeyPrefix = "products/"

// FileDownloader fetches raw file bytes from the messaging transport
type FileDownloader interface {
	DownloadFile(ctx context.Context, fileID string) (data []byte, contentType string, err error)
}

// Ensure both ingesters implement PhotoIngester
var (
	_ catalogapp.PhotoIngester = (*S3PhotoIngester)(nil)
	_ catalogapp.PhotoIngester = (*FileIDPhotoIngester)(nil)
)

// S3PhotoIngester copies a transport-hosted photo into object storage and
// returns the storage key it was filed under.
type S3PhotoIngester struct {
	downloader FileDownloader
	store      catalogapp.PhotoStore
}

// NewS3PhotoIngester creates an ingester that downloads via the transport
// and uploads into the given store
func NewS3PhotoIngester(downloader FileDownloader, store catalogapp.PhotoStore) *S3PhotoIngester {
	return &S3PhotoIngester{
		downloader: downloader,
		store:      store,
	}
}

// Ingest downloads the photo and stores it under a fresh products/ key
func (i *S3PhotoIngester) Ingest(ctx context.Context, fileID string) (string, error) {
	if fileID == "" {
		return "", errors.New("file id is required")
	}

	data, contentType, err := i.downloader.DownloadFile(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("failed to download photo: %w", err)
	}

	key := photoKeyPrefix + uuid.New().String() + extensionFor(contentType)
	if err := i.store.Upload(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("failed to store photo: %w", err)
	}

	return key, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

// FileIDPhotoIngester leaves photos on the transport's servers and records
// the transport file id as the storage key. Used when object storage is
// disabled.
type FileIDPhotoIngester struct{}

// NewFileIDPhotoIngester creates a passthrough ingester
func NewFileIDPhotoIngester() *FileIDPhotoIngester {
	return &FileIDPhotoIngester{}
}

// Ingest returns the file id unchanged
func (*FileIDPhotoIngester) Ingest(ctx context.Context, fileID string) (string, error) {
	if fileID == "" {
		return "", errors.New("file id is required")
	}
	return fileID, nil
}
