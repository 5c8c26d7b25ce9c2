package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/workhivehq/workhive/internal/models"
	apperrors "github.com/workhivehq/workhive/pkg/errors"
)

func TestCreateUserAssignsDefaultRole(t *testing.T) {
	db := newTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	users, err := NewUserService(db, audit)
	require.NoError(t, err)

	member, err := users.Create(context.Background(), CreateUserInput{
		Username: "worker",
		Email:    "Worker@Example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	require.Equal(t, "worker@example.com", member.Email)
	require.Nil(t, member.Organization)

	reloaded, err := users.GetByID(context.Background(), member.ID)
	require.NoError(t, err)
	require.True(t, reloaded.HasRole(models.RoleMember))
	require.False(t, reloaded.HasRole(models.RoleBusinessOwner))
}

func TestCreateUserWithOrganizationBecomesBusinessOwner(t *testing.T) {
	db := newTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	users, err := NewUserService(db, audit)
	require.NoError(t, err)

	owner, err := users.Create(context.Background(), CreateUserInput{
		Username:     "founder",
		Email:        "founder@example.com",
		Password:     "sup3rsecret",
		Organization: "Acme",
	})
	require.NoError(t, err)
	require.NotNil(t, owner.Organization)
	require.Equal(t, "Acme", *owner.Organization)

	reloaded, err := users.GetByID(context.Background(), owner.ID)
	require.NoError(t, err)
	require.True(t, reloaded.HasRole(models.RoleBusinessOwner))
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	users, err := NewUserService(db, audit)
	require.NoError(t, err)

	_, err = users.Create(context.Background(), CreateUserInput{
		Username: "worker",
		Email:    "worker@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	_, err = users.Create(context.Background(), CreateUserInput{
		Username: "worker",
		Email:    "other@example.com",
		Password: "sup3rsecret",
	})
	requireAppErrorCode(t, err, apperrors.ErrConflict.Code)
}

func TestAuthenticate(t *testing.T) {
	db := newTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	users, err := NewUserService(db, audit)
	require.NoError(t, err)

	created, err := users.Create(context.Background(), CreateUserInput{
		Username: "worker",
		Email:    "worker@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	authed, err := users.Authenticate(context.Background(), "worker@example.com", "sup3rsecret")
	require.NoError(t, err)
	require.Equal(t, created.ID, authed.ID)
	require.NotNil(t, authed.LastLoginAt)

	_, err = users.Authenticate(context.Background(), "worker@example.com", "wrong")
	requireAppErrorCode(t, err, apperrors.ErrInvalidCredentials.Code)

	_, err = users.Authenticate(context.Background(), "nobody@example.com", "sup3rsecret")
	requireAppErrorCode(t, err, apperrors.ErrInvalidCredentials.Code)

	require.NoError(t, users.Deactivate(context.Background(), created.ID))
	_, err = users.Authenticate(context.Background(), "worker@example.com", "sup3rsecret")
	requireAppErrorCode(t, err, ErrUserDisabled.Code)
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)
	users, err := NewUserService(db, audit)
	require.NoError(t, err)

	created, err := users.Create(context.Background(), CreateUserInput{
		Username: "worker",
		Email:    "worker@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	first := "Ada"
	last := "Lovelace"
	updated, err := users.UpdateProfile(context.Background(), created.ID, UpdateUserInput{
		FirstName: &first,
		LastName:  &last,
	})
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", updated.FullName())

	_, err = users.UpdateProfile(context.Background(), "missing-id", UpdateUserInput{FirstName: &first})
	requireAppErrorCode(t, err, ErrUserNotFound.Code)
}
