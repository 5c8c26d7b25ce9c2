package database

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openPostgres(cfg Config) (*gorm.DB, error) {
	dsn, err := buildPostgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// buildPostgresDSN assembles a keyword/value DSN. Extra Options are appended
// in sorted order so the result is stable; sslmode defaults to disable.
func buildPostgresDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("postgres configuration requires user and database name")
	}

	pairs := map[string]string{
		"host":    defaultIfEmptyStr(cfg.Host, "localhost"),
		"port":    fmt.Sprint(defaultIfZero(cfg.Port, 5432)),
		"user":    cfg.User,
		"dbname":  cfg.Name,
		"sslmode": "disable",
	}
	if cfg.Password != "" {
		pairs["password"] = cfg.Password
	}
	for key, value := range cfg.Options {
		pairs[key] = value
	}

	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+pairs[key])
	}
	return strings.Join(parts, " "), nil
}

func defaultIfEmptyStr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func defaultIfZero(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}
