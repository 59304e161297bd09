package database

import (
	"context"
	"database/sql"

	"github.com/jask/restopick/internal/catalog"
	"github.com/jask/restopick/internal/database/repository"
)

// SeedDefaults adds a few starter saved filters to a fresh database.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	repo := repository.NewSavedFilterRepo(db)
	existing, err := repo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	defaults := []repository.SavedFilter{
		{Name: "Cheap eats in BTM", City: "Btm", PriceRange: catalog.PriceBudget},
		{Name: "Date night Indiranagar", City: "Indiranagar", PriceRange: catalog.PricePremium, MinRating: 4},
		{Name: "Koramangala lunch", City: "Koramangala 5Th Block", PriceRange: catalog.PriceMidRange, Cuisines: []string{"North Indian", "Chinese"}},
	}
	for _, f := range defaults {
		if _, err := repo.Save(ctx, f); err != nil {
			return err
		}
	}
	return nil
}
