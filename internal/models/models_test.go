package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openModelTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&User{}, &Role{}, &OrganizationInvitation{},
		&Project{}, &ProjectMember{}, &Task{}, &Meeting{},
		&Notification{}, &AuditLog{}, &CacheEntry{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestBaseModelGeneratesUUID(t *testing.T) {
	db := openModelTestDB(t)

	role := Role{Name: "Reviewer"}
	require.NoError(t, db.Create(&role).Error)
	require.NotEmpty(t, role.ID)
}

func TestUserFullName(t *testing.T) {
	u := User{Username: "mpham"}
	require.Equal(t, "mpham", u.FullName())

	u.FirstName = "Mai"
	require.Equal(t, "Mai", u.FullName())

	u.LastName = "Pham"
	require.Equal(t, "Mai Pham", u.FullName())
}

func TestInvitationParties(t *testing.T) {
	memberID := "11111111-1111-1111-1111-111111111111"
	inv := OrganizationInvitation{
		BusinessOwnerID: "22222222-2222-2222-2222-222222222222",
		MemberID:        &memberID,
		Type:            InvitationTypeRequest,
	}
	require.Equal(t, memberID, inv.InitiatorID())
	require.Equal(t, inv.BusinessOwnerID, inv.ResponderID())
	require.False(t, inv.IsExternal())

	email := "new@example.com"
	external := OrganizationInvitation{
		BusinessOwnerID: inv.BusinessOwnerID,
		InvitedEmail:    &email,
		Type:            InvitationTypeInvite,
	}
	require.True(t, external.IsExternal())
	require.Equal(t, external.BusinessOwnerID, external.InitiatorID())
	require.Empty(t, external.ResponderID())
}

func TestProjectMemberIsActive(t *testing.T) {
	m := ProjectMember{JoinedAt: time.Now()}
	require.True(t, m.IsActive())

	now := time.Now()
	m.LeftAt = &now
	require.False(t, m.IsActive())
}
