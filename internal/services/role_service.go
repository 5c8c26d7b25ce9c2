package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/workhivehq/workhive/internal/models"
	apperrors "github.com/workhivehq/workhive/pkg/errors"
)

var (
	// ErrRoleNotAssignable indicates the role is outside the assignable set.
	// Business ownership in particular is never granted through role changes.
	ErrRoleNotAssignable = apperrors.New("ROLE_NOT_ASSIGNABLE", "Role cannot be assigned", 400)

	// ErrNotManagedMember indicates the caller does not manage the target user.
	ErrNotManagedMember = apperrors.New("NOT_MANAGED_MEMBER", "User is not managed by your organization", 403)
)

var assignableRoles = map[string]struct{}{
	models.RoleProjectManager: {},
	models.RoleMember:         {},
}

// RoleService reassigns organization roles for managed members. Only the
// managing business owner may change a member's role, and only within the
// assignable catalogue.
type RoleService struct {
	db       *gorm.DB
	audit    *AuditService
	notifier *Notifier
}

// NewRoleService constructs a RoleService. The notifier may be nil.
func NewRoleService(db *gorm.DB, audit *AuditService, notifier *Notifier) (*RoleService, error) {
	if db == nil {
		return nil, errors.New("role service: db is required")
	}
	return &RoleService{db: db, audit: audit, notifier: notifier}, nil
}

// ReassignRole replaces the member's roles with the single given role. The
// replacement happens in one transaction, so the member never observes a
// window without a role.
func (s *RoleService) ReassignRole(ctx context.Context, businessOwnerID, memberID, roleID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	member, err := loadUserWithRoles(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	if member.ManagedByID == nil || *member.ManagedByID != businessOwnerID {
		return nil, ErrNotManagedMember
	}

	// The catalogue check runs only for callers already cleared to manage
	// the member, so outsiders learn nothing about which roles exist.
	roleID = strings.TrimSpace(roleID)
	if _, ok := assignableRoles[roleID]; !ok {
		return nil, ErrRoleNotAssignable.WithMessage(fmt.Sprintf("Role %q cannot be assigned", roleID))
	}

	var role models.Role
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&role, "id = ?", roleID).Error; err != nil {
			return apperrors.ErrOperationFailed.
				WithMessage("Role catalogue entry is missing").
				WithInternal(err)
		}
		if err := tx.Model(&models.User{ID: member.ID}).Association("Roles").Replace(&role); err != nil {
			return apperrors.ErrOperationFailed.
				WithMessage("Could not update the member's role").
				WithInternal(err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	member.Roles = []models.Role{role}

	if s.notifier != nil {
		s.notifier.RoleChanged(ctx, member, roleID)
	}
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &businessOwnerID,
		Action:   "organization.reassign_role",
		Resource: "user:" + member.ID,
		Result:   "success",
		Metadata: map[string]any{"role": roleID},
	})

	return member, nil
}
