package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/paypoint/internal/shared/logger"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks goose scripts for dialects that have them and gorm
// AutoMigrate otherwise.
func NewManager(dialect string) *Manager {
	var strategy Strategy
	switch dialect {
	case DialectMySQL, DialectSQLite:
		strategy = NewGooseStrategy(dialect)
	default:
		strategy = NewGormAutoMigrateStrategy()
	}
	return NewManagerWithStrategy(strategy)
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.NewLogger().With("component", "migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.GetName(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
