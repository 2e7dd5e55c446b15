package migration

import (
	"embed"
	"fmt"
	"path"
	"sync"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/orris-inc/paypoint/internal/shared/logger"
)

//go:embed scripts
var scriptsFS embed.FS

// Goose dialects with a scripts directory.
const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite3"
)

// goose keeps its dialect and base FS in package state.
var gooseMu sync.Mutex

// Strategy defines the interface for different migration strategies
type Strategy interface {
	// Migrate executes the migration strategy
	Migrate(db *gorm.DB) error
	// GetName returns the strategy name
	GetName() string
}

// GooseStrategy applies the versioned SQL scripts embedded in the binary.
type GooseStrategy struct {
	dialect string
	logger  logger.Interface
}

func NewGooseStrategy(dialect string) *GooseStrategy {
	return &GooseStrategy{
		dialect: dialect,
		logger:  logger.NewLogger().With("component", "migration.goose"),
	}
}

func (s *GooseStrategy) scriptsDir() string {
	return path.Join("scripts", s.dialect)
}

// withGoose runs fn with goose configured for this strategy's dialect.
func (s *GooseStrategy) withGoose(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(scriptsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(s.dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return fn()
}

func (s *GooseStrategy) Migrate(db *gorm.DB) error {
	s.logger.Infow("starting goose migration", "dialect", s.dialect)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	return s.withGoose(func() error {
		currentVersion, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			s.logger.Errorw("failed to get current version", "error", err)
			return fmt.Errorf("failed to get current version: %w", err)
		}

		if err := goose.Up(sqlDB, s.scriptsDir()); err != nil {
			s.logger.Errorw("migration failed", "error", err)
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		finalVersion, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get final version: %w", err)
		}

		s.logger.Infow("migration completed successfully",
			"from_version", currentVersion,
			"to_version", finalVersion)
		return nil
	})
}

func (s *GooseStrategy) GetName() string {
	return "goose"
}

func (s *GooseStrategy) MigrateDown(db *gorm.DB, steps int) error {
	s.logger.Infow("starting down migration", "steps", steps)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	return s.withGoose(func() error {
		for i := 0; i < steps; i++ {
			if err := goose.Down(sqlDB, s.scriptsDir()); err != nil {
				s.logger.Errorw("down migration failed", "error", err)
				return fmt.Errorf("failed to run down migration: %w", err)
			}
		}
		s.logger.Infow("down migration completed successfully")
		return nil
	})
}

func (s *GooseStrategy) GetVersion(db *gorm.DB) (int64, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	var version int64
	err = s.withGoose(func() error {
		v, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

func (s *GooseStrategy) Status(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	return s.withGoose(func() error {
		if err := goose.Status(sqlDB, s.scriptsDir()); err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}
		return nil
	})
}

// Create writes a new timestamped SQL script into dir on disk. Scripts are
// embedded at build time, so a rebuild picks it up.
func (s *GooseStrategy) Create(dir, name string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect(s.dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}

	s.logger.Infow("migration created successfully", "name", name, "dir", dir)
	return nil
}

// GormAutoMigrateStrategy derives the schema from the gorm models.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.gorm"),
	}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB) error {
	models := AutoMigrateModels()
	s.logger.Infow("starting gorm auto migration", "models_count", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}
