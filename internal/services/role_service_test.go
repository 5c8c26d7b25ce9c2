package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/workhivehq/workhive/internal/models"
)

func TestReassignRoleReplacesRoleSet(t *testing.T) {
	db := newTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	roles, err := NewRoleService(db, audit, nil)
	require.NoError(t, err)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	member := seedMember(t, db, "worker")
	affiliate(t, db, member, owner)

	updated, err := roles.ReassignRole(context.Background(), owner.ID, member.ID, models.RoleProjectManager)
	require.NoError(t, err)
	require.Len(t, updated.Roles, 1)
	require.Equal(t, models.RoleProjectManager, updated.Roles[0].ID)

	var reloaded models.User
	require.NoError(t, db.Preload("Roles").First(&reloaded, "id = ?", member.ID).Error)
	require.Len(t, reloaded.Roles, 1)
	require.Equal(t, models.RoleProjectManager, reloaded.Roles[0].ID)

	// Demoting back to member works the same way.
	updated, err = roles.ReassignRole(context.Background(), owner.ID, member.ID, models.RoleMember)
	require.NoError(t, err)
	require.Equal(t, models.RoleMember, updated.Roles[0].ID)
}

func TestReassignRoleRejectsUnmanagedTargets(t *testing.T) {
	db := newTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	roles, err := NewRoleService(db, audit, nil)
	require.NoError(t, err)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	otherOwner := seedOwner(t, db, "other-owner", "Other")
	unaffiliated := seedMember(t, db, "stranger")
	foreign := seedMember(t, db, "foreign")
	affiliate(t, db, foreign, otherOwner)

	_, err = roles.ReassignRole(context.Background(), owner.ID, unaffiliated.ID, models.RoleProjectManager)
	requireAppErrorCode(t, err, ErrNotManagedMember.Code)

	_, err = roles.ReassignRole(context.Background(), owner.ID, foreign.ID, models.RoleProjectManager)
	requireAppErrorCode(t, err, ErrNotManagedMember.Code)
}

func TestReassignRoleRejectsNonAssignableRoles(t *testing.T) {
	db := newTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	roles, err := NewRoleService(db, audit, nil)
	require.NoError(t, err)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	member := seedMember(t, db, "worker")
	affiliate(t, db, member, owner)

	// Business ownership is never granted through reassignment.
	_, err = roles.ReassignRole(context.Background(), owner.ID, member.ID, models.RoleBusinessOwner)
	requireAppErrorCode(t, err, ErrRoleNotAssignable.Code)

	_, err = roles.ReassignRole(context.Background(), owner.ID, member.ID, "made-up-role")
	requireAppErrorCode(t, err, ErrRoleNotAssignable.Code)

	var reloaded models.User
	require.NoError(t, db.Preload("Roles").First(&reloaded, "id = ?", member.ID).Error)
	require.Len(t, reloaded.Roles, 1)
	require.Equal(t, models.RoleMember, reloaded.Roles[0].ID)
}

func TestReassignRoleChecksManagementBeforeCatalogue(t *testing.T) {
	db := newTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	roles, err := NewRoleService(db, audit, nil)
	require.NoError(t, err)

	owner := seedOwner(t, db, "acme-owner", "Acme")
	outsider := seedMember(t, db, "outsider")

	// A caller without authority over the target learns nothing about the
	// role catalogue, and a missing target reads as missing.
	_, err = roles.ReassignRole(context.Background(), owner.ID, outsider.ID, "made-up-role")
	requireAppErrorCode(t, err, ErrNotManagedMember.Code)

	_, err = roles.ReassignRole(context.Background(), owner.ID, "no-such-user", "made-up-role")
	requireAppErrorCode(t, err, ErrUserNotFound.Code)
}
