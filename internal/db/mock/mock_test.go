package mock

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"larder/models"
)

func TestNewSeedsExpectedRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := New(ctx)
	require.NoError(t, err)

	var ingredients []models.Ingredient
	require.NoError(t, db.WithContext(ctx).Find(&ingredients).Error)
	assert.Len(t, ingredients, 3)

	var usages []models.RecipeBaseIngredient
	require.NoError(t, db.WithContext(ctx).Find(&usages).Error)
	assert.NotEmpty(t, usages)

	var bun models.Product
	require.NoError(t, db.WithContext(ctx).First(&bun, "id = ?", "bun").Error)
	assert.True(t, bun.TotalCost.Equal(decimal.RequireFromString("8.25")), "bun total cost = %s", bun.TotalCost)
}

func TestOpenIsolatesDatabases(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seeded, err := New(ctx)
	require.NoError(t, err)
	empty, err := Open(ctx)
	require.NoError(t, err)

	var seededCount, emptyCount int64
	require.NoError(t, seeded.Model(&models.Recipe{}).Count(&seededCount).Error)
	require.NoError(t, empty.Model(&models.Recipe{}).Count(&emptyCount).Error)
	assert.NotZero(t, seededCount)
	assert.Zero(t, emptyCount)
}
