package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/workhivehq/workhive/internal/models"
	apperrors "github.com/workhivehq/workhive/pkg/errors"
	"github.com/workhivehq/workhive/pkg/logger"
	"github.com/workhivehq/workhive/pkg/metrics"
)

var (
	// ErrNotOrganizationMember indicates the target user does not belong to the
	// caller's organization.
	ErrNotOrganizationMember = apperrors.New("NOT_ORGANIZATION_MEMBER", "User is not a member of your organization", 404)

	// ErrOwnerWithoutOrganization indicates a business owner account that has no
	// organization attached and therefore cannot take in members.
	ErrOwnerWithoutOrganization = apperrors.New("OWNER_WITHOUT_ORGANIZATION", "Business owner has no organization", 422)
)

// RemovalResult reports the outcome of removing a member from an organization.
type RemovalResult struct {
	MemberID          string `json:"member_id"`
	ClosedMemberships int64  `json:"closed_memberships"`
}

// MembershipService owns the organizational affiliation pair on users and the
// side effects that keep the rest of the system consistent with it: the
// cancellation cascade on acceptance, project membership closure on removal,
// and the reconciliation sweep that repairs interrupted removals.
type MembershipService struct {
	db       *gorm.DB
	audit    *AuditService
	notifier *Notifier
	log      *zap.Logger
	now      func() time.Time
}

// MembershipOption customises MembershipService construction.
type MembershipOption func(*MembershipService)

// WithMembershipClock overrides the time source, mainly for tests.
func WithMembershipClock(clock func() time.Time) MembershipOption {
	return func(s *MembershipService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewMembershipService constructs a MembershipService. The notifier may be nil.
func NewMembershipService(db *gorm.DB, audit *AuditService, notifier *Notifier, opts ...MembershipOption) (*MembershipService, error) {
	if db == nil {
		return nil, errors.New("membership service: db is required")
	}
	svc := &MembershipService{
		db:       db,
		audit:    audit,
		notifier: notifier,
		log:      logger.WithModule("membership"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ApplyAcceptance runs inside the caller's transaction when an invitation or
// join request is accepted. It binds the member to the owner's organization
// and cancels every other pending proposal involving that member, so the
// member never carries competing open proposals after joining. Returns the
// number of proposals canceled by the cascade.
func (s *MembershipService) ApplyAcceptance(tx *gorm.DB, invitation *models.OrganizationInvitation) (int64, error) {
	if tx == nil {
		return 0, errors.New("membership service: transaction is required")
	}
	if invitation == nil || invitation.MemberID == nil {
		return 0, apperrors.ErrInvalidState.WithMessage("Invitation has no registered member to affiliate")
	}
	memberID := *invitation.MemberID

	var member models.User
	if err := tx.First(&member, "id = ?", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("membership service: load member: %w", err)
	}
	if member.ManagedByID != nil {
		return 0, apperrors.ErrAlreadyAffiliated
	}
	if member.Organization != nil {
		return 0, apperrors.ErrAlreadyAffiliated.WithMessage("User runs their own organization")
	}

	var owner models.User
	if err := tx.First(&owner, "id = ?", invitation.BusinessOwnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("membership service: load owner: %w", err)
	}
	if owner.Organization == nil {
		return 0, ErrOwnerWithoutOrganization
	}

	err := tx.Model(&models.User{}).
		Where("id = ?", memberID).
		Updates(map[string]any{
			"organization":  *owner.Organization,
			"managed_by_id": owner.ID,
		}).Error
	if err != nil {
		return 0, fmt.Errorf("membership service: bind affiliation: %w", err)
	}

	now := s.now()
	cascade := tx.Model(&models.OrganizationInvitation{}).
		Where("member_id = ? AND status = ? AND id <> ?",
			memberID, models.InvitationStatusPending, invitation.ID).
		Updates(map[string]any{
			"status":       models.InvitationStatusCanceled,
			"responded_at": now,
		})
	if cascade.Error != nil {
		return 0, fmt.Errorf("membership service: cascade cancel: %w", cascade.Error)
	}

	return cascade.RowsAffected, nil
}

// RemoveMember detaches a member from the caller's organization and closes the
// member's active memberships in every project the caller owns. The
// affiliation clear is the authoritative step; if membership closure fails
// afterwards the reconciliation sweep picks up the orphaned rows later.
func (s *MembershipService) RemoveMember(ctx context.Context, businessOwnerID, memberID string) (*RemovalResult, error) {
	ctx = ensureContext(ctx)

	var member models.User
	if err := s.db.WithContext(ctx).First(&member, "id = ?", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("membership service: load member: %w", err)
	}
	if member.ManagedByID == nil || *member.ManagedByID != businessOwnerID {
		return nil, ErrNotOrganizationMember
	}

	var owner models.User
	if err := s.db.WithContext(ctx).First(&owner, "id = ?", businessOwnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("membership service: load owner: %w", err)
	}

	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", memberID).
		Updates(map[string]any{
			"organization":  nil,
			"managed_by_id": nil,
		}).Error
	if err != nil {
		return nil, apperrors.ErrOperationFailed.
			WithMessage("Could not detach the member from the organization").
			WithInternal(err)
	}

	result := &RemovalResult{MemberID: memberID}

	now := s.now()
	closed := s.db.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("member_id = ? AND left_at IS NULL AND project_id IN (?)",
			memberID,
			s.db.Model(&models.Project{}).Select("id").Where("owner_id = ?", businessOwnerID),
		).
		Update("left_at", now)
	if closed.Error != nil {
		// Affiliation is already cleared; reconciliation closes the leftovers.
		s.log.Warn("membership closure failed after affiliation clear",
			zap.String("member_id", memberID),
			zap.String("business_owner_id", businessOwnerID),
			zap.Error(closed.Error))
	} else {
		result.ClosedMemberships = closed.RowsAffected
		metrics.MembershipsClosed.WithLabelValues("removal").Add(float64(closed.RowsAffected))
	}

	if s.notifier != nil {
		s.notifier.MemberRemoved(ctx, &member, &owner)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &businessOwnerID,
		Username: owner.Username,
		Action:   "organization.remove_member",
		Resource: "user:" + memberID,
		Result:   "success",
		Metadata: map[string]any{"closed_memberships": result.ClosedMemberships},
	})

	return result, nil
}

// ListOrganizationMembers returns the users currently managed by the owner.
func (s *MembershipService) ListOrganizationMembers(ctx context.Context, businessOwnerID string) ([]models.User, error) {
	ctx = ensureContext(ctx)

	var members []models.User
	err := s.db.WithContext(ctx).
		Preload("Roles").
		Where("managed_by_id = ?", businessOwnerID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("membership service: list members: %w", err)
	}
	return members, nil
}

// ReconcileOrphanedMemberships closes active project memberships whose member
// is no longer affiliated with the project's owner. It backs up RemoveMember
// against partial failures between the affiliation clear and the membership
// closure. Returns the number of memberships closed.
func (s *MembershipService) ReconcileOrphanedMemberships(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	var orphaned []string
	err := s.db.WithContext(ctx).
		Table("project_members AS pm").
		Joins("JOIN projects p ON p.id = pm.project_id").
		Joins("JOIN users u ON u.id = pm.member_id").
		Where("pm.left_at IS NULL").
		Where("pm.member_id <> p.owner_id").
		Where("u.managed_by_id IS NULL OR u.managed_by_id <> p.owner_id").
		Pluck("pm.id", &orphaned).Error
	if err != nil {
		return 0, fmt.Errorf("membership service: find orphaned memberships: %w", err)
	}
	if len(orphaned) == 0 {
		return 0, nil
	}

	now := s.now()
	result := s.db.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("id IN ? AND left_at IS NULL", orphaned).
		Update("left_at", now)
	if result.Error != nil {
		return 0, fmt.Errorf("membership service: close orphaned memberships: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.MembershipsClosed.WithLabelValues("reconciliation").Add(float64(result.RowsAffected))
		s.log.Info("closed orphaned project memberships", zap.Int64("count", result.RowsAffected))
	}

	return result.RowsAffected, nil
}
