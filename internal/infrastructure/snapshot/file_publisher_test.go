package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsnapshot "github.com/shopbot/backend/internal/application/snapshot"
)

func TestNewFilePublisher(t *testing.T) {
	t.Run("creates the snapshot directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "public", "catalog")

		publisher, err := NewFilePublisher(dir)

		require.NoError(t, err)
		assert.Equal(t, dir, publisher.Dir())
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects empty directory", func(t *testing.T) {
		_, err := NewFilePublisher("")
		assert.Error(t, err)
	})
}

func TestFilePublisher_Publish(t *testing.T) {
	ctx := context.Background()

	photoURL := "https://cdn.example.com/products/abc.jpg"
	storefront := &appsnapshot.Storefront{
		Categories: []appsnapshot.CategoryEntry{
			{ID: "c1", Name: "Shoes", ParentID: nil},
		},
		Products: []appsnapshot.ProductEntry{
			{ID: "p1", Name: "Air Max", Description: "Classic runner", Price: 129.99, CategoryID: "c1", InStock: true, PhotoURL: &photoURL},
			{ID: "p2", Name: "Air Force", Description: "Street staple", Price: 150, CategoryID: "c1", InStock: false, PhotoURL: nil},
		},
	}

	t.Run("writes both artifacts", func(t *testing.T) {
		dir := t.TempDir()
		publisher, err := NewFilePublisher(dir)
		require.NoError(t, err)

		require.NoError(t, publisher.Publish(ctx, storefront))

		var categories []map[string]any
		data, err := os.ReadFile(filepath.Join(dir, "categories.json"))
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &categories))
		require.Len(t, categories, 1)
		assert.Equal(t, "Shoes", categories[0]["name"])
		assert.Nil(t, categories[0]["parent_id"])

		var products []map[string]any
		data, err = os.ReadFile(filepath.Join(dir, "products.json"))
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &products))
		require.Len(t, products, 2)
		assert.Equal(t, "Air Max", products[0]["name"])
		assert.InDelta(t, 129.99, products[0]["price"].(float64), 0.001)
		assert.Equal(t, photoURL, products[0]["photo_url"])
		assert.Nil(t, products[1]["photo_url"])
		assert.Equal(t, false, products[1]["in_stock"])
	})

	t.Run("replaces the previous generation wholesale", func(t *testing.T) {
		dir := t.TempDir()
		publisher, err := NewFilePublisher(dir)
		require.NoError(t, err)

		require.NoError(t, publisher.Publish(ctx, storefront))
		require.NoError(t, publisher.Publish(ctx, &appsnapshot.Storefront{
			Categories: []appsnapshot.CategoryEntry{},
			Products:   []appsnapshot.ProductEntry{},
		}))

		data, err := os.ReadFile(filepath.Join(dir, "products.json"))
		require.NoError(t, err)
		assert.JSONEq(t, "[]", string(data))

		data, err = os.ReadFile(filepath.Join(dir, "categories.json"))
		require.NoError(t, err)
		assert.JSONEq(t, "[]", string(data))
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		publisher, err := NewFilePublisher(dir)
		require.NoError(t, err)

		require.NoError(t, publisher.Publish(ctx, storefront))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		assert.ElementsMatch(t, []string{"categories.json", "products.json"}, names)
	})
}
