package integration

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/infrastructure/persistence"
)

// TestMain runs before any tests and handles cleanup
func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

// TestCategoryRepository_Integration tests the CategoryRepository against a
// real PostgreSQL database
func TestCategoryRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormCategoryRepository(testDB.DB)
	ctx := context.Background()

	t.Run("Save and FindByID", func(t *testing.T) {
		root, err := catalog.NewRootCategory("Shoes")
		require.NoError(t, err)

		err = repo.Save(ctx, root)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, root.ID)
		require.NoError(t, err)
		assert.Equal(t, root.ID, found.ID)
		assert.Equal(t, "Shoes", found.Name)
		assert.Nil(t, found.ParentID)
	})

	t.Run("FindByID not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("FindRoots returns only roots name-ordered", func(t *testing.T) {
		testDB.CleanTables()

		clothing := testDB.CreateTestCategory("Clothing", nil)
		testDB.CreateTestCategory("Accessories", nil)
		testDB.CreateTestCategory("Bags", clothing)

		roots, err := repo.FindRoots(ctx)
		require.NoError(t, err)
		require.Len(t, roots, 2)
		assert.Equal(t, "Accessories", roots[0].Name)
		assert.Equal(t, "Clothing", roots[1].Name)
	})

	t.Run("FindChildren returns direct children name-ordered", func(t *testing.T) {
		testDB.CleanTables()

		shoes := testDB.CreateTestCategory("Shoes", nil)
		other := testDB.CreateTestCategory("Clothing", nil)
		testDB.CreateTestCategory("Reebok", shoes)
		testDB.CreateTestCategory("Adidas", shoes)
		testDB.CreateTestCategory("Jackets", other)

		children, err := repo.FindChildren(ctx, shoes.ID)
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Equal(t, "Adidas", children[0].Name)
		assert.Equal(t, "Reebok", children[1].Name)
	})

	t.Run("FindLeaves excludes categories with children", func(t *testing.T) {
		testDB.CleanTables()

		shoes := testDB.CreateTestCategory("Shoes", nil)
		nike := testDB.CreateTestCategory("Nike", shoes)
		empty := testDB.CreateTestCategory("Accessories", nil)

		leaves, err := repo.FindLeaves(ctx)
		require.NoError(t, err)

		leafIDs := make([]uuid.UUID, 0, len(leaves))
		for _, leaf := range leaves {
			leafIDs = append(leafIDs, leaf.ID)
		}
		assert.Contains(t, leafIDs, nike.ID)
		assert.Contains(t, leafIDs, empty.ID)
		assert.NotContains(t, leafIDs, shoes.ID)
	})

	t.Run("HasChildren", func(t *testing.T) {
		testDB.CleanTables()

		shoes := testDB.CreateTestCategory("Shoes", nil)
		nike := testDB.CreateTestCategory("Nike", shoes)

		has, err := repo.HasChildren(ctx, shoes.ID)
		require.NoError(t, err)
		assert.True(t, has)

		has, err = repo.HasChildren(ctx, nike.ID)
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("DeleteSubtree removes descendants and their products", func(t *testing.T) {
		testDB.CleanTables()

		shoes := testDB.CreateTestCategory("Shoes", nil)
		nike := testDB.CreateTestCategory("Nike", shoes)
		adidas := testDB.CreateTestCategory("Adidas", shoes)
		keep := testDB.CreateTestCategory("Clothing", nil)

		testDB.CreateTestProduct(nike, "Air Max", "129.99")
		testDB.CreateTestProduct(adidas, "Samba", "89.99")
		kept := testDB.CreateTestProduct(keep, "Jacket", "59.99")

		result, err := repo.DeleteSubtree(ctx, shoes.ID)
		require.NoError(t, err)
		assert.Len(t, result.CategoryIDs, 3)
		assert.Equal(t, int64(2), result.ProductsRemoved)

		for _, id := range []uuid.UUID{shoes.ID, nike.ID, adidas.ID} {
			_, err := repo.FindByID(ctx, id)
			assert.ErrorIs(t, err, shared.ErrNotFound)
		}

		// The sibling tree is untouched
		_, err = repo.FindByID(ctx, keep.ID)
		require.NoError(t, err)

		productRepo := persistence.NewGormProductRepository(testDB.DB)
		_, err = productRepo.FindByID(ctx, kept.ID)
		require.NoError(t, err)
	})

	t.Run("DeleteSubtree of missing category", func(t *testing.T) {
		_, err := repo.DeleteSubtree(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Count", func(t *testing.T) {
		testDB.CleanTables()

		testDB.CreateTestCategory("Shoes", nil)
		testDB.CreateTestCategory("Clothing", nil)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

// TestProductRepository_Integration tests the ProductRepository against a
// real PostgreSQL database
func TestProductRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormProductRepository(testDB.DB)
	ctx := context.Background()

	category := testDB.CreateTestCategory("Shoes", nil)

	t.Run("Save and FindByID round-trips the price", func(t *testing.T) {
		product, err := catalog.NewProduct(category.ID, "Air Max 90", "Classic trainers", decimal.RequireFromString("129.99"), "")
		require.NoError(t, err)

		err = repo.Save(ctx, product)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, product.ID, found.ID)
		assert.Equal(t, "Air Max 90", found.Name)
		assert.Equal(t, "Classic trainers", found.Description)
		assert.True(t, found.Price.Equal(decimal.RequireFromString("129.99")),
			"expected 129.99, got %s", found.Price)
		assert.True(t, found.InStock)
		assert.False(t, found.HasPhoto())
	})

	t.Run("Save persists a stock toggle", func(t *testing.T) {
		product := testDB.CreateTestProduct(category, "Court Vision", "84.50")

		product.ToggleStock()
		require.NoError(t, repo.Save(ctx, product))

		found, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.False(t, found.InStock)
	})

	t.Run("FindByCategory is scoped and name-ordered", func(t *testing.T) {
		testDB.CleanTables()
		shoes := testDB.CreateTestCategory("Shoes", nil)
		clothing := testDB.CreateTestCategory("Clothing", nil)

		testDB.CreateTestProduct(shoes, "Blazer Mid", "99.00")
		testDB.CreateTestProduct(shoes, "Air Max", "129.99")
		testDB.CreateTestProduct(clothing, "Jacket", "59.99")

		products, err := repo.FindByCategory(ctx, shoes.ID)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "Air Max", products[0].Name)
		assert.Equal(t, "Blazer Mid", products[1].Name)
	})

	t.Run("Count and CountInStock", func(t *testing.T) {
		testDB.CleanTables()
		shoes := testDB.CreateTestCategory("Shoes", nil)

		first := testDB.CreateTestProduct(shoes, "Air Max", "129.99")
		testDB.CreateTestProduct(shoes, "Samba", "89.99")

		first.ToggleStock()
		require.NoError(t, repo.Save(ctx, first))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		inStock, err := repo.CountInStock(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), inStock)
	})

	t.Run("Delete", func(t *testing.T) {
		testDB.CleanTables()
		shoes := testDB.CreateTestCategory("Shoes", nil)
		product := testDB.CreateTestProduct(shoes, "Air Max", "129.99")

		require.NoError(t, repo.Delete(ctx, product.ID))

		_, err := repo.FindByID(ctx, product.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		err = repo.Delete(ctx, product.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
