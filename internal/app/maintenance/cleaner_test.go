package maintenance

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/workhivehq/workhive/internal/database"
	"github.com/workhivehq/workhive/internal/models"
	"github.com/workhivehq/workhive/internal/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedData(db))
	return db
}

func TestRunOnceReconcilesAndPrunes(t *testing.T) {
	db := newTestDB(t)

	audit, err := services.NewAuditService(db)
	require.NoError(t, err)
	memberships, err := services.NewMembershipService(db, audit, nil)
	require.NoError(t, err)
	notifications, err := services.NewNotificationService(db)
	require.NoError(t, err)

	organization := "Acme"
	owner := &models.User{Username: "owner", Email: "owner@example.com", Password: "x", Organization: &organization}
	require.NoError(t, db.Create(owner).Error)

	// An open membership whose member lost its affiliation.
	orphan := &models.User{Username: "orphan", Email: "orphan@example.com", Password: "x"}
	require.NoError(t, db.Create(orphan).Error)
	project := &models.Project{Name: "P1", OwnerID: owner.ID}
	require.NoError(t, db.Create(project).Error)
	membership := &models.ProjectMember{ProjectID: project.ID, MemberID: orphan.ID, JoinedAt: time.Now()}
	require.NoError(t, db.Create(membership).Error)

	// An audit log past retention.
	require.NoError(t, audit.Log(context.Background(), services.AuditEntry{Action: "old", Result: "success"}))
	require.NoError(t, db.Exec(
		"UPDATE audit_logs SET created_at = ?", time.Now().AddDate(0, 0, -120)).Error)

	cleaner, err := NewCleaner(memberships, audit, notifications, Options{
		AuditRetentionDays:        90,
		NotificationRetentionDays: 30,
	})
	require.NoError(t, err)

	require.NoError(t, cleaner.RunOnce(context.Background()))

	var after models.ProjectMember
	require.NoError(t, db.First(&after, "id = ?", membership.ID).Error)
	require.NotNil(t, after.LeftAt)

	var auditCount int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&auditCount).Error)
	require.Zero(t, auditCount)
}

func TestNewCleanerDefaults(t *testing.T) {
	db := newTestDB(t)

	memberships, err := services.NewMembershipService(db, nil, nil)
	require.NoError(t, err)

	cleaner, err := NewCleaner(memberships, nil, nil, Options{})
	require.NoError(t, err)
	require.Equal(t, "@every 10m", cleaner.opts.Schedule)
	require.Equal(t, 90, cleaner.opts.AuditRetentionDays)
	require.Equal(t, 30, cleaner.opts.NotificationRetentionDays)

	_, err = NewCleaner(nil, nil, nil, Options{})
	require.Error(t, err)
}
