package services

import (
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

func seedUser(t *testing.T, db *gorm.DB, username, roleID string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)

	var role models.Role
	require.NoError(t, db.First(&role, "id = ?", roleID).Error)
	require.NoError(t, db.Model(user).Association("Roles").Append(&role))
	user.Roles = []models.Role{role}
	return user
}

func seedOwner(t *testing.T, db *gorm.DB, username, organization string) *models.User {
	t.Helper()

	owner := seedUser(t, db, username, models.RoleBusinessOwner)
	require.NoError(t, db.Model(owner).Update("organization", organization).Error)
	owner.Organization = &organization
	return owner
}

func seedMember(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	return seedUser(t, db, username, models.RoleMember)
}

func affiliate(t *testing.T, db *gorm.DB, member, owner *models.User) {
	t.Helper()

	require.NotNil(t, owner.Organization)
	require.NoError(t, db.Model(member).Updates(map[string]any{
		"organization":  *owner.Organization,
		"managed_by_id": owner.ID,
	}).Error)
	member.Organization = owner.Organization
	member.ManagedByID = &owner.ID
}

func seedProject(t *testing.T, db *gorm.DB, owner *models.User, name string) *models.Project {
	t.Helper()

	project := &models.Project{Name: name, OwnerID: owner.ID}
	require.NoError(t, db.Create(project).Error)
	return project
}

func seedProjectMember(t *testing.T, db *gorm.DB, project *models.Project, member *models.User) *models.ProjectMember {
	t.Helper()

	membership := &models.ProjectMember{
		ProjectID: project.ID,
		MemberID:  member.ID,
		JoinedAt:  time.Now().UTC(),
	}
	require.NoError(t, db.Create(membership).Error)
	return membership
}

func newLifecycleStack(t *testing.T, db *gorm.DB) (*InvitationService, *MembershipService) {
	t.Helper()

	audit, err := NewAuditService(db)
	require.NoError(t, err)
	memberships, err := NewMembershipService(db, audit, nil)
	require.NoError(t, err)
	invitations, err := NewInvitationService(db, memberships, nil, audit)
	require.NoError(t, err)
	return invitations, memberships
}

func pendingInvitation(t *testing.T, db *gorm.DB, owner, member *models.User, kind models.InvitationType) *models.OrganizationInvitation {
	t.Helper()

	invitation := &models.OrganizationInvitation{
		BusinessOwnerID: owner.ID,
		MemberID:        &member.ID,
		Type:            kind,
		Status:          models.InvitationStatusPending,
	}
	require.NoError(t, db.Create(invitation).Error)
	return invitation
}
