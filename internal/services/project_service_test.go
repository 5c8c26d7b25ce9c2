package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/workhivehq/workhive/internal/models"
	apperrors "github.com/workhivehq/workhive/pkg/errors"
)

func newProjectService(t *testing.T, db *gorm.DB) *ProjectService {
	t.Helper()

	audit, err := NewAuditService(db)
	require.NoError(t, err)
	projects, err := NewProjectService(db, audit)
	require.NoError(t, err)
	return projects
}

func TestCreateProjectRequiresBusinessOwner(t *testing.T) {
	db := newTestDB(t)
	projects := newProjectService(t, db)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	member := seedMember(t, db, "worker")

	project, err := projects.Create(context.Background(), CreateProjectInput{
		OwnerID: owner.ID,
		Name:    "Website relaunch",
	})
	require.NoError(t, err)
	require.Equal(t, owner.ID, project.OwnerID)
	require.False(t, project.IsArchived)

	_, err = projects.Create(context.Background(), CreateProjectInput{
		OwnerID: member.ID,
		Name:    "Side project",
	})
	requireAppErrorCode(t, err, ErrNotBusinessOwner.Code)
}

func TestAddMemberRequiresAffiliation(t *testing.T) {
	db := newTestDB(t)
	projects := newProjectService(t, db)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	member := seedMember(t, db, "worker")
	outsider := seedMember(t, db, "outsider")
	affiliate(t, db, member, owner)

	project := seedProject(t, db, owner, "P1")

	membership, err := projects.AddMember(context.Background(), owner.ID, project.ID, member.ID)
	require.NoError(t, err)
	require.Nil(t, membership.LeftAt)
	require.False(t, membership.JoinedAt.IsZero())

	_, err = projects.AddMember(context.Background(), owner.ID, project.ID, member.ID)
	requireAppErrorCode(t, err, ErrAlreadyProjectMember.Code)

	_, err = projects.AddMember(context.Background(), owner.ID, project.ID, outsider.ID)
	requireAppErrorCode(t, err, ErrNotOrganizationMember.Code)
}

func TestAddMemberRejectsNonOwnersAndArchivedProjects(t *testing.T) {
	db := newTestDB(t)
	projects := newProjectService(t, db)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	otherOwner := seedOwner(t, db, "other-owner", "Other")
	member := seedMember(t, db, "worker")
	affiliate(t, db, member, owner)

	project := seedProject(t, db, owner, "P1")

	_, err := projects.AddMember(context.Background(), otherOwner.ID, project.ID, member.ID)
	requireAppErrorCode(t, err, ErrNotProjectOwner.Code)

	require.NoError(t, projects.Archive(context.Background(), owner.ID, project.ID))
	_, err = projects.AddMember(context.Background(), owner.ID, project.ID, member.ID)
	requireAppErrorCode(t, err, apperrors.ErrInvalidState.Code)
}

func TestProjectMemberRemovalAndListing(t *testing.T) {
	db := newTestDB(t)
	projects := newProjectService(t, db)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	member := seedMember(t, db, "worker")
	affiliate(t, db, member, owner)

	project := seedProject(t, db, owner, "P1")
	seedProjectMember(t, db, project, member)

	require.NoError(t, projects.RemoveMember(context.Background(), owner.ID, project.ID, member.ID))

	active, err := projects.ListMembers(context.Background(), project.ID, true)
	require.NoError(t, err)
	require.Empty(t, active)

	// Closed memberships stay visible in the full roster.
	all, err := projects.ListMembers(context.Background(), project.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].LeftAt)

	err = projects.RemoveMember(context.Background(), owner.ID, project.ID, member.ID)
	require.Error(t, err)
}

func TestListForMemberReturnsOnlyOpenMemberships(t *testing.T) {
	db := newTestDB(t)
	projects := newProjectService(t, db)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	member := seedMember(t, db, "worker")
	affiliate(t, db, member, owner)

	open := seedProject(t, db, owner, "Open")
	closed := seedProject(t, db, owner, "Closed")
	seedProjectMember(t, db, open, member)
	stale := seedProjectMember(t, db, closed, member)
	now := stale.JoinedAt
	require.NoError(t, db.Model(stale).Update("left_at", now).Error)

	mine, err := projects.ListForMember(context.Background(), member.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, open.ID, mine[0].ID)
}

func TestProjectUpdateAndArchive(t *testing.T) {
	db := newTestDB(t)
	projects := newProjectService(t, db)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	project := seedProject(t, db, owner, "P1")

	name := "Renamed"
	updated, err := projects.Update(context.Background(), owner.ID, project.ID, UpdateProjectInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)

	require.NoError(t, projects.Archive(context.Background(), owner.ID, project.ID))
	err = projects.Archive(context.Background(), owner.ID, project.ID)
	requireAppErrorCode(t, err, apperrors.ErrInvalidState.Code)

	listed, err := projects.ListByOwner(context.Background(), owner.ID, false)
	require.NoError(t, err)
	require.Empty(t, listed)

	all, err := projects.ListByOwner(context.Background(), owner.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 1)

	var reloaded models.Project
	require.NoError(t, db.First(&reloaded, "id = ?", project.ID).Error)
	require.True(t, reloaded.IsArchived)
}
