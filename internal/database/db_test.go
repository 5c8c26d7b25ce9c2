package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/workhivehq/workhive/internal/models"
)

func TestOpenSQLiteInMemoryAndMigrate(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrateAndSeed(db))

	var roles []models.Role
	require.NoError(t, db.Order("id ASC").Find(&roles).Error)
	require.Len(t, roles, 3)

	ids := make([]string, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, role.ID)
		require.True(t, role.IsSystem)
	}
	require.ElementsMatch(t, []string{
		models.RoleBusinessOwner,
		models.RoleProjectManager,
		models.RoleMember,
	}, ids)
}

func TestSeedDataIsIdempotent(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrateAndSeed(db))
	require.NoError(t, SeedData(db))

	var count int64
	require.NoError(t, db.Model(&models.Role{}).Count(&count).Error)
	require.EqualValues(t, 3, count)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "workhive", Name: "workhive", Host: "db", Port: 5433})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=db")
	require.Contains(t, dsn, "port=5433")
	require.Contains(t, dsn, "sslmode=disable")

	_, err = buildPostgresDSN(Config{Name: "workhive"})
	require.Error(t, err)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := mysqlDSN(Config{User: "root", Password: "secret", Name: "workhive"})
	require.NoError(t, err)
	require.Contains(t, dsn, "root:secret@tcp(127.0.0.1:3306)/workhive")
	require.Contains(t, dsn, "parseTime=true")
}
