package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"larder/internal/config"
)

func TestInitializeRequiresURL(t *testing.T) {
	t.Parallel()

	db, err := Initialize(config.DatabaseConfig{URL: ""})
	require.Error(t, err)
	assert.Nil(t, db)
}

func TestAutoMigrateRejectsNilDatabase(t *testing.T) {
	t.Parallel()

	assert.Error(t, AutoMigrate(nil))
}

func TestAutoMigrateWithSQLite(t *testing.T) {
	t.Parallel()

	sqliteDB, err := gorm.Open(sqlite.Open("file:memdb?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(sqliteDB))

	for _, model := range Models() {
		assert.True(t, sqliteDB.Migrator().HasTable(model), "expected table for %T", model)
	}
}

func TestApplyPoolSetsLimits(t *testing.T) {
	t.Parallel()

	sqliteDB, err := gorm.Open(sqlite.Open("file:pooldb?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, applyPool(sqliteDB, config.DatabaseConfig{MaxOpenConns: 3}))

	sqlDB, err := sqliteDB.DB()
	require.NoError(t, err)
	assert.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePropagatesInitializationError(t *testing.T) {
	t.Parallel()

	_, err := Configure(config.DatabaseConfig{})
	assert.Error(t, err)
}

func TestMustConfigurePanicsOnError(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		MustConfigure(config.DatabaseConfig{})
	})
}
