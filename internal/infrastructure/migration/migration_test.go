package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestGooseStrategy_UpAndDown(t *testing.T) {
	db := openTestDB(t)
	strategy := NewGooseStrategy(DialectSQLite)

	require.NoError(t, NewManagerWithStrategy(strategy).Migrate(db))

	assert.True(t, db.Migrator().HasTable("orders"))
	assert.True(t, db.Migrator().HasTable("payment_callbacks"))
	version, err := strategy.GetVersion(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// Running again is a no-op.
	require.NoError(t, strategy.Migrate(db))

	require.NoError(t, strategy.MigrateDown(db, 1))
	assert.True(t, db.Migrator().HasTable("orders"))
	assert.False(t, db.Migrator().HasTable("payment_callbacks"))

	require.NoError(t, strategy.MigrateDown(db, 1))
	assert.False(t, db.Migrator().HasTable("orders"))
}

func TestEmbeddedScriptsMatchAcrossDialects(t *testing.T) {
	mysql, err := scriptsFS.ReadDir("scripts/mysql")
	require.NoError(t, err)
	sqlite, err := scriptsFS.ReadDir("scripts/sqlite3")
	require.NoError(t, err)

	require.Equal(t, len(mysql), len(sqlite))
	for i := range mysql {
		assert.Equal(t, mysql[i].Name(), sqlite[i].Name())
	}
}

func TestNewManager_StrategySelection(t *testing.T) {
	assert.Equal(t, "goose", NewManager(DialectMySQL).GetStrategy().GetName())
	assert.Equal(t, "goose", NewManager(DialectSQLite).GetStrategy().GetName())
	assert.Equal(t, "gorm_auto_migrate", NewManager("postgres").GetStrategy().GetName())
}

func TestGormAutoMigrateStrategy(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, NewGormAutoMigrateStrategy().Migrate(db))

	assert.True(t, db.Migrator().HasTable("orders"))
	assert.True(t, db.Migrator().HasTable("payment_callbacks"))
}
