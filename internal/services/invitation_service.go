package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/workhivehq/workhive/internal/models"
	"github.com/workhivehq/workhive/pkg/crypto"
	apperrors "github.com/workhivehq/workhive/pkg/errors"
	"github.com/workhivehq/workhive/pkg/metrics"
)

const defaultInvitationTokenBytes = 32

var (
	// ErrInvitationNotFound indicates the referenced proposal does not exist.
	ErrInvitationNotFound = apperrors.New("INVITATION_NOT_FOUND", "Invitation not found", 404)

	// ErrNotInvitationResponder indicates the caller is not the receiving party.
	ErrNotInvitationResponder = apperrors.New("NOT_INVITATION_RESPONDER", "Only the receiving party can respond to this invitation", 403)

	// ErrNotInvitationInitiator indicates the caller did not create the proposal.
	ErrNotInvitationInitiator = apperrors.New("NOT_INVITATION_INITIATOR", "Only the initiating party can withdraw this invitation", 403)

	// ErrDuplicateProposal indicates an open proposal already links the two parties.
	ErrDuplicateProposal = apperrors.New("DUPLICATE_PROPOSAL", "A pending proposal already exists between these users", 409)

	// ErrNotBusinessOwner indicates the addressed account lacks the business owner role.
	ErrNotBusinessOwner = apperrors.New("NOT_BUSINESS_OWNER", "User is not a business owner", 400)
)

// Decision is the responder's verdict on a pending proposal.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// SendInvitationInput describes an owner-initiated invitation.
type SendInvitationInput struct {
	BusinessOwnerID string
	Email           string
}

// RequestToJoinInput describes a member-initiated join request.
type RequestToJoinInput struct {
	MemberID        string
	BusinessOwnerID string
}

// RespondInput drives the single transition shared by both proposal
// directions. ExpectedType, when set, guards a type-specific entry point:
// responding to an invite through the request endpoint (or vice versa) fails.
type RespondInput struct {
	InvitationID string
	ResponderID  string
	Decision     Decision
	ExpectedType models.InvitationType
}

// RespondResult reports a completed transition and its cascade effects.
type RespondResult struct {
	Invitation          *models.OrganizationInvitation `json:"invitation"`
	CanceledInvitations int64                          `json:"canceled_invitations"`
	Message             string                         `json:"message"`
}

// InvitationView is the projection returned by listing operations. It carries
// the counterpart identity so clients never need a second lookup.
type InvitationView struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`

	BusinessOwnerID string `json:"business_owner_id"`
	OwnerName       string `json:"owner_name,omitempty"`
	OwnerEmail      string `json:"owner_email,omitempty"`
	OwnerAvatar     string `json:"owner_avatar,omitempty"`
	Organization    string `json:"organization,omitempty"`

	MemberID     string `json:"member_id,omitempty"`
	MemberName   string `json:"member_name,omitempty"`
	MemberEmail  string `json:"member_email,omitempty"`
	MemberAvatar string `json:"member_avatar,omitempty"`
	InvitedEmail string `json:"invited_email,omitempty"`
}

// InvitationService manages the full proposal lifecycle: creation in both
// directions, the response transition with its acceptance cascade, withdrawal,
// external token claiming and party-scoped listings.
type InvitationService struct {
	db          *gorm.DB
	memberships *MembershipService
	notifier    *Notifier
	audit       *AuditService
	tokenBytes  int
	now         func() time.Time
}

// InvitationOption customises InvitationService construction.
type InvitationOption func(*InvitationService)

// WithInvitationClock overrides the time source, mainly for tests.
func WithInvitationClock(clock func() time.Time) InvitationOption {
	return func(s *InvitationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithInvitationTokenBytes overrides the external invitation token entropy.
func WithInvitationTokenBytes(n int) InvitationOption {
	return func(s *InvitationService) {
		if n > 0 {
			s.tokenBytes = n
		}
	}
}

// NewInvitationService constructs an InvitationService. The notifier may be nil.
func NewInvitationService(db *gorm.DB, memberships *MembershipService, notifier *Notifier, audit *AuditService, opts ...InvitationOption) (*InvitationService, error) {
	if db == nil {
		return nil, errors.New("invitation service: db is required")
	}
	if memberships == nil {
		return nil, errors.New("invitation service: membership service is required")
	}
	svc := &InvitationService{
		db:          db,
		memberships: memberships,
		notifier:    notifier,
		audit:       audit,
		tokenBytes:  defaultInvitationTokenBytes,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// SendInvitation creates an owner-initiated invitation. Registered recipients
// get an in-app proposal; unknown emails get a tokenised external invitation
// that a later registration can claim.
func (s *InvitationService) SendInvitation(ctx context.Context, input SendInvitationInput) (*models.OrganizationInvitation, error) {
	ctx = ensureContext(ctx)

	owner, err := loadUserWithRoles(ctx, s.db, input.BusinessOwnerID)
	if err != nil {
		return nil, err
	}
	if !owner.HasRole(models.RoleBusinessOwner) {
		return nil, ErrNotBusinessOwner.WithMessage("Only business owners can send invitations")
	}
	if owner.Organization == nil {
		return nil, ErrOwnerWithoutOrganization
	}

	email := normaliseEmail(input.Email)
	if email == "" {
		return nil, apperrors.NewBadRequest("Email is required")
	}
	if email == normaliseEmail(owner.Email) {
		return nil, apperrors.NewBadRequest("You cannot invite yourself")
	}

	var member models.User
	err = s.db.WithContext(ctx).First(&member, "email = ?", email).Error
	switch {
	case err == nil:
		return s.inviteRegisteredMember(ctx, owner, &member)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.inviteExternalEmail(ctx, owner, email)
	default:
		return nil, fmt.Errorf("invitation service: lookup recipient: %w", err)
	}
}

func (s *InvitationService) inviteRegisteredMember(ctx context.Context, owner, member *models.User) (*models.OrganizationInvitation, error) {
	if member.ManagedByID != nil {
		if *member.ManagedByID == owner.ID {
			return nil, apperrors.ErrAlreadyAffiliated.WithMessage("User is already a member of your organization")
		}
		return nil, apperrors.ErrAlreadyAffiliated
	}
	if member.Organization != nil {
		return nil, apperrors.ErrAlreadyAffiliated.WithMessage("User runs their own organization")
	}

	invitation := models.OrganizationInvitation{
		BusinessOwnerID: owner.ID,
		MemberID:        &member.ID,
		Type:            models.InvitationTypeInvite,
		Status:          models.InvitationStatusPending,
	}
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProposalScope(tx, owner.ID); err != nil {
			return err
		}
		if err := ensureNoPendingProposal(tx, owner.ID, member.ID); err != nil {
			return err
		}
		if err := tx.Create(&invitation).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrDuplicateProposal
			}
			return fmt.Errorf("invitation service: create invitation: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.notifier != nil {
		s.notifier.InvitationReceived(ctx, member, owner)
	}
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &owner.ID,
		Username: owner.Username,
		Action:   "invitation.send",
		Resource: "invitation:" + invitation.ID,
		Result:   "success",
		Metadata: map[string]any{"member_id": member.ID},
	})

	return &invitation, nil
}

func (s *InvitationService) inviteExternalEmail(ctx context.Context, owner *models.User, email string) (*models.OrganizationInvitation, error) {
	token, err := crypto.GenerateToken(s.tokenBytes)
	if err != nil {
		return nil, fmt.Errorf("invitation service: generate token: %w", err)
	}

	invitation := models.OrganizationInvitation{
		BusinessOwnerID: owner.ID,
		InvitedEmail:    &email,
		Token:           &token,
		Type:            models.InvitationTypeInvite,
		Status:          models.InvitationStatusPending,
	}
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProposalScope(tx, owner.ID); err != nil {
			return err
		}

		var pending int64
		err := tx.Model(&models.OrganizationInvitation{}).
			Where("business_owner_id = ? AND invited_email = ? AND status = ?",
				owner.ID, email, models.InvitationStatusPending).
			Count(&pending).Error
		if err != nil {
			return fmt.Errorf("invitation service: check pending external: %w", err)
		}
		if pending > 0 {
			return ErrDuplicateProposal.WithMessage("This email already has a pending invitation from you")
		}

		if err := tx.Create(&invitation).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrDuplicateProposal
			}
			return fmt.Errorf("invitation service: create external invitation: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.notifier != nil {
		s.notifier.ExternalInvitationSent(ctx, email, owner, token)
	}
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &owner.ID,
		Username: owner.Username,
		Action:   "invitation.send_external",
		Resource: "invitation:" + invitation.ID,
		Result:   "success",
		Metadata: map[string]any{"invited_email": email},
	})

	return &invitation, nil
}

// RequestToJoin creates a member-initiated join request addressed to a
// business owner.
func (s *InvitationService) RequestToJoin(ctx context.Context, input RequestToJoinInput) (*models.OrganizationInvitation, error) {
	ctx = ensureContext(ctx)

	member, err := loadUserWithRoles(ctx, s.db, input.MemberID)
	if err != nil {
		return nil, err
	}
	// An organization of one's own counts as an affiliation: owners cannot
	// request to join elsewhere while they still run an organization.
	if member.ManagedByID != nil {
		return nil, apperrors.ErrAlreadyAffiliated.WithMessage("You already belong to an organization")
	}
	if member.Organization != nil {
		return nil, apperrors.ErrAlreadyAffiliated.WithMessage("You already run an organization; it cannot join another one")
	}

	owner, err := loadUserWithRoles(ctx, s.db, input.BusinessOwnerID)
	if err != nil {
		return nil, err
	}
	if !owner.HasRole(models.RoleBusinessOwner) {
		return nil, ErrNotBusinessOwner.WithMessage("Join requests can only be addressed to business owners")
	}
	if owner.Organization == nil {
		return nil, ErrOwnerWithoutOrganization
	}

	request := models.OrganizationInvitation{
		BusinessOwnerID: owner.ID,
		MemberID:        &member.ID,
		Type:            models.InvitationTypeRequest,
		Status:          models.InvitationStatusPending,
	}
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProposalScope(tx, owner.ID); err != nil {
			return err
		}
		if err := ensureNoPendingProposal(tx, owner.ID, member.ID); err != nil {
			return err
		}
		if err := tx.Create(&request).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrDuplicateProposal
			}
			return fmt.Errorf("invitation service: create join request: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.notifier != nil {
		s.notifier.JoinRequestReceived(ctx, owner, member)
	}
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &member.ID,
		Username: member.Username,
		Action:   "invitation.request_to_join",
		Resource: "invitation:" + request.ID,
		Result:   "success",
		Metadata: map[string]any{"business_owner_id": owner.ID},
	})

	return &request, nil
}

// Respond applies the responder's decision to a pending proposal. Acceptance
// binds the affiliation and cancels the member's competing pending proposals
// inside the same transaction; rejection only flips the status. The status
// flip is guarded by a conditional update, so concurrent responses to the
// same proposal resolve to exactly one winner.
func (s *InvitationService) Respond(ctx context.Context, input RespondInput) (*RespondResult, error) {
	ctx = ensureContext(ctx)

	if input.Decision != DecisionAccept && input.Decision != DecisionReject {
		return nil, apperrors.NewBadRequest("Decision must be accept or reject")
	}

	var invitation models.OrganizationInvitation
	err := s.db.WithContext(ctx).First(&invitation, "id = ?", input.InvitationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invitation service: load invitation: %w", err)
	}

	// Authorization comes before the type check so strangers probing a
	// type-specific endpoint learn nothing about the proposal.
	responder := invitation.ResponderID()
	if responder == "" {
		return nil, apperrors.ErrInvalidState.WithMessage("Invitation has not been claimed by a registered user")
	}
	if responder != input.ResponderID {
		return nil, ErrNotInvitationResponder
	}

	if input.ExpectedType != "" && invitation.Type != input.ExpectedType {
		return nil, apperrors.ErrInvalidState.WithMessage(
			fmt.Sprintf("Proposal is a %s, not a %s", invitation.Type, input.ExpectedType))
	}

	if invitation.Status != models.InvitationStatusPending {
		return nil, apperrors.ErrInvalidState.WithMessage(
			fmt.Sprintf("Invitation was already %s", invitation.Status))
	}

	newStatus := models.InvitationStatusRejected
	if input.Decision == DecisionAccept {
		newStatus = models.InvitationStatusAccepted
	}

	now := s.now()
	var canceled int64
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flip := tx.Model(&models.OrganizationInvitation{}).
			Where("id = ? AND status = ?", invitation.ID, models.InvitationStatusPending).
			Updates(map[string]any{
				"status":       newStatus,
				"responded_at": now,
			})
		if flip.Error != nil {
			return fmt.Errorf("invitation service: flip status: %w", flip.Error)
		}
		if flip.RowsAffected == 0 {
			return apperrors.ErrInvalidState.WithMessage("Invitation is no longer pending")
		}

		if input.Decision == DecisionAccept {
			n, err := s.memberships.ApplyAcceptance(tx, &invitation)
			if err != nil {
				return err
			}
			canceled = n
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	invitation.Status = newStatus
	invitation.RespondedAt = &now

	metrics.InvitationTransitions.WithLabelValues(string(invitation.Type), string(newStatus)).Inc()
	if canceled > 0 {
		metrics.CascadeCancellations.Add(float64(canceled))
	}

	s.notifyResolution(ctx, &invitation, input.ResponderID)
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &input.ResponderID,
		Action:   "invitation." + string(input.Decision),
		Resource: "invitation:" + invitation.ID,
		Result:   "success",
		Metadata: map[string]any{"canceled_invitations": canceled},
	})

	return &RespondResult{
		Invitation:          &invitation,
		CanceledInvitations: canceled,
		Message:             respondMessage(&invitation, canceled),
	}, nil
}

// Cancel withdraws a pending proposal. Only the initiating party may withdraw.
func (s *InvitationService) Cancel(ctx context.Context, invitationID, initiatorID string) (*models.OrganizationInvitation, error) {
	ctx = ensureContext(ctx)

	var invitation models.OrganizationInvitation
	err := s.db.WithContext(ctx).First(&invitation, "id = ?", invitationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invitation service: load invitation: %w", err)
	}

	if invitation.InitiatorID() != initiatorID {
		return nil, ErrNotInvitationInitiator
	}
	if invitation.Status != models.InvitationStatusPending {
		return nil, apperrors.ErrInvalidState.WithMessage(
			fmt.Sprintf("Invitation was already %s", invitation.Status))
	}

	now := s.now()
	flip := s.db.WithContext(ctx).Model(&models.OrganizationInvitation{}).
		Where("id = ? AND status = ?", invitation.ID, models.InvitationStatusPending).
		Updates(map[string]any{
			"status":       models.InvitationStatusCanceled,
			"responded_at": now,
		})
	if flip.Error != nil {
		return nil, fmt.Errorf("invitation service: cancel invitation: %w", flip.Error)
	}
	if flip.RowsAffected == 0 {
		return nil, apperrors.ErrInvalidState.WithMessage("Invitation is no longer pending")
	}

	invitation.Status = models.InvitationStatusCanceled
	invitation.RespondedAt = &now

	metrics.InvitationTransitions.WithLabelValues(string(invitation.Type), string(models.InvitationStatusCanceled)).Inc()

	s.notifyResolution(ctx, &invitation, initiatorID)
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &initiatorID,
		Action:   "invitation.cancel",
		Resource: "invitation:" + invitation.ID,
		Result:   "success",
	})

	return &invitation, nil
}

// ClaimInvitationToken binds a pending external invitation to a freshly
// registered user, turning it into an ordinary in-app proposal the user can
// respond to.
func (s *InvitationService) ClaimInvitationToken(ctx context.Context, token, userID string) (*models.OrganizationInvitation, error) {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewBadRequest("Invitation token is required")
	}

	var invitation models.OrganizationInvitation
	err := s.db.WithContext(ctx).
		First(&invitation, "token = ? AND status = ? AND member_id IS NULL",
			token, models.InvitationStatusPending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invitation service: load invitation by token: %w", err)
	}

	user, err := loadUserWithRoles(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user.ManagedByID != nil {
		return nil, apperrors.ErrAlreadyAffiliated
	}
	if user.Organization != nil {
		return nil, apperrors.ErrAlreadyAffiliated.WithMessage("User runs their own organization")
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProposalScope(tx, invitation.BusinessOwnerID); err != nil {
			return err
		}
		if err := ensureNoPendingProposal(tx, invitation.BusinessOwnerID, user.ID); err != nil {
			return err
		}

		claim := tx.Model(&models.OrganizationInvitation{}).
			Where("id = ? AND status = ? AND member_id IS NULL", invitation.ID, models.InvitationStatusPending).
			Updates(map[string]any{
				"member_id":     user.ID,
				"invited_email": nil,
				"token":         nil,
			})
		if claim.Error != nil {
			if isUniqueConstraintError(claim.Error) {
				return ErrDuplicateProposal
			}
			return fmt.Errorf("invitation service: claim invitation: %w", claim.Error)
		}
		if claim.RowsAffected == 0 {
			return apperrors.ErrInvalidState.WithMessage("Invitation is no longer pending")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	invitation.MemberID = &user.ID
	invitation.InvitedEmail = nil
	invitation.Token = nil

	if s.notifier != nil {
		var owner models.User
		if err := s.db.WithContext(ctx).First(&owner, "id = ?", invitation.BusinessOwnerID).Error; err == nil {
			s.notifier.InvitationReceived(ctx, user, &owner)
		}
	}
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &user.ID,
		Username: user.Username,
		Action:   "invitation.claim",
		Resource: "invitation:" + invitation.ID,
		Result:   "success",
	})

	return &invitation, nil
}

// SentByOwner lists the invitations a business owner has sent, newest first.
func (s *InvitationService) SentByOwner(ctx context.Context, businessOwnerID string) ([]InvitationView, error) {
	return s.listViews(ensureContext(ctx),
		"business_owner_id = ? AND type = ?", businessOwnerID, models.InvitationTypeInvite)
}

// ReceivedByMember lists the invitations addressed to a member, newest first.
func (s *InvitationService) ReceivedByMember(ctx context.Context, memberID string) ([]InvitationView, error) {
	return s.listViews(ensureContext(ctx),
		"member_id = ? AND type = ?", memberID, models.InvitationTypeInvite)
}

// PendingRequestsForOwner lists the open join requests awaiting the owner.
func (s *InvitationService) PendingRequestsForOwner(ctx context.Context, businessOwnerID string) ([]InvitationView, error) {
	return s.listViews(ensureContext(ctx),
		"business_owner_id = ? AND type = ? AND status = ?",
		businessOwnerID, models.InvitationTypeRequest, models.InvitationStatusPending)
}

// SentRequestsByMember lists the join requests a member has made, newest first.
func (s *InvitationService) SentRequestsByMember(ctx context.Context, memberID string) ([]InvitationView, error) {
	return s.listViews(ensureContext(ctx),
		"member_id = ? AND type = ?", memberID, models.InvitationTypeRequest)
}

func (s *InvitationService) listViews(ctx context.Context, query string, args ...any) ([]InvitationView, error) {
	var invitations []models.OrganizationInvitation
	err := s.db.WithContext(ctx).
		Preload("BusinessOwner").
		Preload("Member").
		Where(query, args...).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("invitation service: list invitations: %w", err)
	}

	views := make([]InvitationView, 0, len(invitations))
	for i := range invitations {
		views = append(views, buildInvitationView(&invitations[i]))
	}
	return views, nil
}

func buildInvitationView(invitation *models.OrganizationInvitation) InvitationView {
	view := InvitationView{
		ID:              invitation.ID,
		Type:            string(invitation.Type),
		Status:          string(invitation.Status),
		CreatedAt:       invitation.CreatedAt,
		RespondedAt:     invitation.RespondedAt,
		BusinessOwnerID: invitation.BusinessOwnerID,
	}

	if owner := invitation.BusinessOwner; owner != nil {
		view.OwnerName = owner.FullName()
		view.OwnerEmail = owner.Email
		view.OwnerAvatar = owner.Avatar
		if owner.Organization != nil {
			view.Organization = *owner.Organization
		}
	}

	if member := invitation.Member; member != nil {
		view.MemberID = member.ID
		view.MemberName = member.FullName()
		view.MemberEmail = member.Email
		view.MemberAvatar = member.Avatar
	} else if invitation.InvitedEmail != nil {
		view.InvitedEmail = *invitation.InvitedEmail
	}

	return view
}

// ensureNoPendingProposal enforces at most one open proposal per owner/member
// pair, regardless of direction. It must run inside the same transaction as
// the create it guards; the partial unique index on pending rows backstops
// drivers where the lock alone cannot serialize the check.
func ensureNoPendingProposal(tx *gorm.DB, businessOwnerID, memberID string) error {
	var pending int64
	err := tx.Model(&models.OrganizationInvitation{}).
		Where("business_owner_id = ? AND member_id = ? AND status = ?",
			businessOwnerID, memberID, models.InvitationStatusPending).
		Count(&pending).Error
	if err != nil {
		return fmt.Errorf("invitation service: check pending proposals: %w", err)
	}
	if pending > 0 {
		return ErrDuplicateProposal
	}
	return nil
}

// lockProposalScope serializes proposal creation per business owner by
// locking the owner's user row. SQLite rejects FOR UPDATE and serializes
// writers on its own, so the clause is skipped there.
func lockProposalScope(tx *gorm.DB, businessOwnerID string) error {
	if tx.Dialector.Name() == "sqlite" {
		return nil
	}
	var owner models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&owner, "id = ?", businessOwnerID).Error
	if err != nil {
		return fmt.Errorf("invitation service: lock proposal scope: %w", err)
	}
	return nil
}

// notifyResolution informs the non-acting party about a completed transition.
func (s *InvitationService) notifyResolution(ctx context.Context, invitation *models.OrganizationInvitation, actorID string) {
	if s.notifier == nil {
		return
	}

	recipientID := invitation.InitiatorID()
	if recipientID == actorID {
		recipientID = invitation.ResponderID()
	}
	if recipientID == "" || recipientID == actorID {
		return
	}

	var recipient, actor models.User
	if err := s.db.WithContext(ctx).First(&recipient, "id = ?", recipientID).Error; err != nil {
		return
	}
	actorPtr := (*models.User)(nil)
	if err := s.db.WithContext(ctx).First(&actor, "id = ?", actorID).Error; err == nil {
		actorPtr = &actor
	}

	s.notifier.ProposalResolved(ctx, &recipient, invitation, actorPtr)
}

func respondMessage(invitation *models.OrganizationInvitation, canceled int64) string {
	kind := "Invitation"
	if invitation.Type == models.InvitationTypeRequest {
		kind = "Join request"
	}

	verb := "rejected"
	if invitation.Status == models.InvitationStatusAccepted {
		verb = "accepted"
	}

	message := fmt.Sprintf("%s %s", kind, verb)
	if canceled > 0 {
		message = fmt.Sprintf("%s; %d other pending proposal(s) were canceled", message, canceled)
	}
	return message
}
