// Command seed populates a demo catalog and publishes the storefront
// snapshot. It refuses to touch a non-empty catalog unless -force is
// given, in which case the existing catalog is replaced. Orders are
// never touched.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	snapshotapp "github.com/shopbot/backend/internal/application/snapshot"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/infrastructure/config"
	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/infrastructure/persistence"
	snapshotpub "github.com/shopbot/backend/internal/infrastructure/snapshot"
	"github.com/shopbot/backend/internal/infrastructure/storage"
)

type demoProduct struct {
	category    string
	name        string
	description string
	price       string
}

// The demo tree is two levels deep on one branch so both the root-only
// and the subcategory paths show up immediately in the admin panel.
var (
	demoRoots = []string{"Shoes", "Clothing", "Accessories"}

	demoSubs = map[string]string{
		"Nike": "Shoes",
	}

	demoProducts = []demoProduct{
		{"Nike", "Nike Skeleton Purple", "Glow-in-the-dark runners for night city walks", "99.99"},
		{"Nike", "Nike Air Max 90", "Classic cushioned trainers in white and grey", "129.99"},
		{"Nike", "Nike Court Vision", "Retro basketball profile for everyday wear", "84.50"},
		{"Clothing", "Logo T-Shirt", "Heavyweight cotton tee with embroidered logo", "24.90"},
		{"Accessories", "City Backpack", "Water-resistant 20 litre daypack with laptop sleeve", "49.90"},
	}
)

func main() {
	var (
		force    bool
		logLevel string
	)

	flag.BoolVar(&force, "force", false, "Replace an existing catalog instead of refusing")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	ctx := logger.WithContext(context.Background(), log)

	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)

	categories, err := categoryRepo.Count(ctx)
	if err != nil {
		log.Fatal("Failed to count categories", zap.Error(err))
	}
	products, err := productRepo.Count(ctx)
	if err != nil {
		log.Fatal("Failed to count products", zap.Error(err))
	}

	if categories > 0 || products > 0 {
		if !force {
			log.Fatal("Catalog is not empty, re-run with -force to replace it",
				zap.Int64("categories", categories),
				zap.Int64("products", products),
			)
		}
		if err := wipeCatalog(ctx, db.DB); err != nil {
			log.Fatal("Failed to clear existing catalog", zap.Error(err))
		}
		log.Info("Existing catalog cleared",
			zap.Int64("categories", categories),
			zap.Int64("products", products),
		)
	}

	seeded, err := seedCatalog(ctx, categoryRepo, productRepo)
	if err != nil {
		log.Fatal("Failed to seed catalog", zap.Error(err))
	}
	log.Info("Demo catalog created",
		zap.Int("categories", seeded.categories),
		zap.Int("products", seeded.products),
	)

	publisher, err := snapshotpub.NewFilePublisher(cfg.Snapshot.Dir)
	if err != nil {
		log.Fatal("Failed to create snapshot publisher", zap.Error(err))
	}

	// Demo products carry no photos, so the disabled store's resolver is
	// never consulted during the publish.
	snapshotService := snapshotapp.NewService(categoryRepo, productRepo, storage.NewDisabledPhotoStore(), publisher)
	if err := snapshotService.Rebuild(ctx); err != nil {
		log.Fatal("Failed to publish snapshot", zap.Error(err))
	}

	log.Info("Snapshot published", zap.String("dir", cfg.Snapshot.Dir))
}

type seedCounts struct {
	categories int
	products   int
}

// seedCatalog inserts the demo tree through the domain constructors so
// seeded rows satisfy the same validation as admin-created ones
func seedCatalog(ctx context.Context, categories catalog.CategoryRepository, products catalog.ProductRepository) (*seedCounts, error) {
	byName := make(map[string]*catalog.Category, len(demoRoots)+len(demoSubs))
	counts := &seedCounts{}

	for _, name := range demoRoots {
		root, err := catalog.NewRootCategory(name)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		if err := categories.Save(ctx, root); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		byName[name] = root
		counts.categories++
	}

	for name, parentName := range demoSubs {
		parent, ok := byName[parentName]
		if !ok {
			return nil, fmt.Errorf("subcategory %q: unknown parent %q", name, parentName)
		}
		sub, err := catalog.NewSubcategory(name, parent)
		if err != nil {
			return nil, fmt.Errorf("subcategory %q: %w", name, err)
		}
		if err := categories.Save(ctx, sub); err != nil {
			return nil, fmt.Errorf("subcategory %q: %w", name, err)
		}
		byName[name] = sub
		counts.categories++
	}

	for _, p := range demoProducts {
		parent, ok := byName[p.category]
		if !ok {
			return nil, fmt.Errorf("product %q: unknown category %q", p.name, p.category)
		}
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return nil, fmt.Errorf("product %q: %w", p.name, err)
		}
		product, err := catalog.NewProduct(parent.ID, p.name, p.description, price, "")
		if err != nil {
			return nil, fmt.Errorf("product %q: %w", p.name, err)
		}
		if err := products.Save(ctx, product); err != nil {
			return nil, fmt.Errorf("product %q: %w", p.name, err)
		}
		counts.products++
	}

	return counts, nil
}

// wipeCatalog removes every product and category in one transaction,
// leaving orders and the delivery journal alone
func wipeCatalog(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&catalog.Product{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&catalog.Category{}).Error
	})
}
