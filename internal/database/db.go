package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Config selects and parameterises the storage backend. Path applies to
// sqlite; Host/Port/Name/User/Password to postgres and mysql; DSN overrides
// everything when set.
type Config struct {
	Driver   string
	Path     string
	DSN      string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	Options  map[string]string
}

// Open connects to the configured database. The driver name is
// case-insensitive and defaults to sqlite.
func Open(cfg Config) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "sqlite", "sqlite3":
		return openSQLite(cfg)
	case "postgres", "postgresql":
		return openPostgres(cfg)
	case "mysql", "mariadb":
		return openMySQL(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// AutoMigrateAndSeed prepares the schema and the fixed role set in one call
// during application start-up.
func AutoMigrateAndSeed(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := SeedData(db); err != nil {
		return fmt.Errorf("seed data: %w", err)
	}
	return nil
}
