package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	appsnapshot "github.com/shopbot/backend/internal/application/snapshot"
	"github.com/shopbot/backend/internal/infrastructure/logger"
)

const (
	categoriesArtifact = "categories.json"
	productsArtifact   = "products.json"
)

// FilePublisher writes the storefront snapshot as JSON artifacts into a
// directory. Each artifact is replaced atomically, so a reader always sees
// either the previous generation or the new one, never a partial file.
type FilePublisher struct {
	dir string
}

var _ appsnapshot.Publisher = (*FilePublisher)(nil)

// NewFilePublisher creates a publisher rooted at dir, creating the
// directory if needed
func NewFilePublisher(dir string) (*FilePublisher, error) {
	if dir == "" {
		return nil, fmt.Errorf("snapshot directory is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FilePublisher{dir: dir}, nil
}

// Dir returns the directory artifacts are written into
func (p *FilePublisher) Dir() string {
	return p.dir
}

// Publish writes categories.json and products.json
func (p *FilePublisher) Publish(ctx context.Context, storefront *appsnapshot.Storefront) error {
	if err := p.writeArtifact(categoriesArtifact, storefront.Categories); err != nil {
		return err
	}
	if err := p.writeArtifact(productsArtifact, storefront.Products); err != nil {
		return err
	}

	logger.L(ctx).Debug("storefront snapshot published",
		zap.String("dir", p.dir),
		zap.Int("categories", len(storefront.Categories)),
		zap.Int("products", len(storefront.Products)))
	return nil
}

func (p *FilePublisher) writeArtifact(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(p.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", name, err)
	}

	if err := os.Rename(tmpPath, filepath.Join(p.dir, name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
