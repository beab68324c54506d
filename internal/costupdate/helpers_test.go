package costupdate

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"larder/internal/db/mock"
	"larder/internal/store"
	"larder/models"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

// requireDecimalNear compares within 1e-9. sqlite keeps numeric columns as
// REAL, so non-terminating quotients lose digits past the fifteenth.
func requireDecimalNear(t *testing.T, want, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, want.Sub(got).Abs().LessThan(dec("0.000000001")), "want %s, got %s %v", want, got, msgAndArgs)
}

func closeOnCleanup(t *testing.T, db *gorm.DB) {
	t.Helper()
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

// seededService returns a service over the mock bakery catalogue.
func seededService(t *testing.T, opts ...Option) (*Service, *gorm.DB) {
	t.Helper()
	db, err := mock.New(context.Background())
	require.NoError(t, err)
	closeOnCleanup(t, db)
	return New(store.NewGormStore(db), opts...), db
}

// emptyService returns a service over an empty, migrated database.
func emptyService(t *testing.T, opts ...Option) (*Service, *gorm.DB) {
	t.Helper()
	db, err := mock.Open(context.Background())
	require.NoError(t, err)
	closeOnCleanup(t, db)
	return New(store.NewGormStore(db), opts...), db
}

func setIngredientPrice(t *testing.T, db *gorm.DB, id, price string) {
	t.Helper()
	require.NoError(t, db.Model(&models.Ingredient{}).Where("id = ?", id).Update("unit_cost", dec(price)).Error)
}

func setPackagingPrice(t *testing.T, db *gorm.DB, id, price string) {
	t.Helper()
	require.NoError(t, db.Model(&models.Packaging{}).Where("id = ?", id).Update("unit_cost", dec(price)).Error)
}

func loadRecipe(t *testing.T, db *gorm.DB, id string) models.Recipe {
	t.Helper()
	var recipe models.Recipe
	require.NoError(t, db.First(&recipe, "id = ?", id).Error)
	return recipe
}

func loadProduct(t *testing.T, db *gorm.DB, id string) models.Product {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return product
}

func usageCost(t *testing.T, db *gorm.DB, model any, id string) decimal.Decimal {
	t.Helper()
	var row struct {
		Cost decimal.Decimal
	}
	require.NoError(t, db.Model(model).Select("cost").Where("id = ?", id).Scan(&row).Error)
	return row.Cost
}

var errInjected = errors.New("injected failure")

// faultyStore fails selected writes so rollback and error collection can be
// observed. The wrapper follows the store into transactions.
type faultyStore struct {
	store.Store
	failRecipe  string
	failProduct string
}

func (f *faultyStore) SaveRecipeCost(ctx context.Context, id string, total, unit decimal.Decimal) error {
	if id == f.failRecipe {
		return errInjected
	}
	return f.Store.SaveRecipeCost(ctx, id, total, unit)
}

func (f *faultyStore) SaveProductCost(ctx context.Context, id string, total decimal.Decimal) error {
	if id == f.failProduct {
		return errInjected
	}
	return f.Store.SaveProductCost(ctx, id, total)
}

func (f *faultyStore) Transaction(ctx context.Context, fn func(store.Store) error) error {
	return f.Store.Transaction(ctx, func(tx store.Store) error {
		return fn(&faultyStore{Store: tx, failRecipe: f.failRecipe, failProduct: f.failProduct})
	})
}
