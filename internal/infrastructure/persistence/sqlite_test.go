package persistence

import (
	"testing"

	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/ordering"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the shop schema.
// The pool is pinned to one connection because each sqlite :memory:
// connection gets its own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&catalog.Category{},
		&catalog.Product{},
		&ordering.Order{},
		&ordering.DeliveryRecord{},
	))

	return db
}

// mustRootCategory creates and persists a root category
func mustRootCategory(t *testing.T, db *gorm.DB, name string) *catalog.Category {
	t.Helper()
	category, err := catalog.NewRootCategory(name)
	require.NoError(t, err)
	require.NoError(t, db.Create(category).Error)
	return category
}

// mustSubcategory creates and persists a subcategory under parent
func mustSubcategory(t *testing.T, db *gorm.DB, name string, parent *catalog.Category) *catalog.Category {
	t.Helper()
	category, err := catalog.NewSubcategory(name, parent)
	require.NoError(t, err)
	require.NoError(t, db.Create(category).Error)
	return category
}
