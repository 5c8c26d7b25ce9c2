package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/workhivehq/workhive/internal/models"
	"github.com/workhivehq/workhive/pkg/logger"
	"github.com/workhivehq/workhive/pkg/mail"
)

// Notifier fans out membership lifecycle events to in-app notifications and
// email. Delivery runs after the triggering transaction has committed and is
// best-effort: failures are logged, never surfaced to the caller.
type Notifier struct {
	notifications *NotificationService
	mailer        mail.Mailer
	log           *zap.Logger
}

// NewNotifier constructs a Notifier. The mailer may be nil, in which case
// only in-app notifications are delivered.
func NewNotifier(notifications *NotificationService, mailer mail.Mailer) *Notifier {
	return &Notifier{
		notifications: notifications,
		mailer:        mailer,
		log:           logger.WithModule("notifier"),
	}
}

// InvitationReceived tells a registered member that a business owner invited them.
func (n *Notifier) InvitationReceived(ctx context.Context, member, owner *models.User) {
	if n == nil || member == nil || owner == nil {
		return
	}
	organization := ""
	if owner.Organization != nil {
		organization = *owner.Organization
	}
	n.inApp(ctx, CreateNotificationInput{
		UserID:  member.ID,
		Type:    "invitation_received",
		Title:   "Organization invitation",
		Message: fmt.Sprintf("%s invited you to join %s", owner.FullName(), defaultIfEmpty(organization, "their organization")),
		Metadata: map[string]any{
			"business_owner_id": owner.ID,
		},
	})
	n.email(ctx, member.Email,
		"You have been invited to an organization",
		fmt.Sprintf("%s invited you to join %s. Sign in to respond.", owner.FullName(), defaultIfEmpty(organization, "their organization")))
}

// ExternalInvitationSent emails a not-yet-registered address an invitation token.
func (n *Notifier) ExternalInvitationSent(ctx context.Context, email string, owner *models.User, token string) {
	if n == nil || owner == nil || email == "" {
		return
	}
	organization := ""
	if owner.Organization != nil {
		organization = *owner.Organization
	}
	n.email(ctx, email,
		"You have been invited to an organization",
		fmt.Sprintf("%s invited you to join %s. Register with invitation token %s to accept.",
			owner.FullName(), defaultIfEmpty(organization, "their organization"), token))
}

// JoinRequestReceived tells a business owner that a member asked to join.
func (n *Notifier) JoinRequestReceived(ctx context.Context, owner, member *models.User) {
	if n == nil || owner == nil || member == nil {
		return
	}
	n.inApp(ctx, CreateNotificationInput{
		UserID:  owner.ID,
		Type:    "join_request_received",
		Title:   "Join request",
		Message: fmt.Sprintf("%s requested to join your organization", member.FullName()),
		Metadata: map[string]any{
			"member_id": member.ID,
		},
	})
	n.email(ctx, owner.Email,
		"New request to join your organization",
		fmt.Sprintf("%s requested to join your organization. Sign in to respond.", member.FullName()))
}

// ProposalResolved tells the initiating party how the counterpart responded.
func (n *Notifier) ProposalResolved(ctx context.Context, recipient *models.User, invitation *models.OrganizationInvitation, responder *models.User) {
	if n == nil || recipient == nil || invitation == nil {
		return
	}

	responderName := "The other party"
	if responder != nil {
		responderName = responder.FullName()
	}

	var (
		kind    string
		verb    string
		subject string
	)
	if invitation.Type == models.InvitationTypeRequest {
		kind = "join request"
	} else {
		kind = "invitation"
	}
	switch invitation.Status {
	case models.InvitationStatusAccepted:
		verb = "accepted"
		subject = fmt.Sprintf("Your %s was accepted", kind)
	case models.InvitationStatusRejected:
		verb = "declined"
		subject = fmt.Sprintf("Your %s was declined", kind)
	default:
		verb = "withdrawn"
		subject = fmt.Sprintf("A %s was withdrawn", kind)
	}

	n.inApp(ctx, CreateNotificationInput{
		UserID:  recipient.ID,
		Type:    "proposal_" + string(invitation.Status),
		Title:   subject,
		Message: fmt.Sprintf("%s %s your %s", responderName, verb, kind),
		Metadata: map[string]any{
			"invitation_id": invitation.ID,
			"status":        string(invitation.Status),
		},
	})
	n.email(ctx, recipient.Email, subject, fmt.Sprintf("%s %s your %s.", responderName, verb, kind))
}

// MemberRemoved tells a member that their organization affiliation ended.
func (n *Notifier) MemberRemoved(ctx context.Context, member, owner *models.User) {
	if n == nil || member == nil || owner == nil {
		return
	}
	n.inApp(ctx, CreateNotificationInput{
		UserID:  member.ID,
		Type:    "membership_removed",
		Title:   "Removed from organization",
		Message: fmt.Sprintf("%s removed you from their organization", owner.FullName()),
		Metadata: map[string]any{
			"business_owner_id": owner.ID,
		},
	})
	n.email(ctx, member.Email,
		"Your organization membership ended",
		fmt.Sprintf("%s removed you from their organization. Your project access has been revoked.", owner.FullName()))
}

// RoleChanged tells a member which role they now hold.
func (n *Notifier) RoleChanged(ctx context.Context, member *models.User, roleID string) {
	if n == nil || member == nil {
		return
	}
	n.inApp(ctx, CreateNotificationInput{
		UserID:  member.ID,
		Type:    "role_changed",
		Title:   "Role updated",
		Message: fmt.Sprintf("Your organization role is now %s", roleID),
		Metadata: map[string]any{
			"role": roleID,
		},
	})
}

func (n *Notifier) inApp(ctx context.Context, input CreateNotificationInput) {
	if n.notifications == nil {
		return
	}
	if _, err := n.notifications.Create(ensureContext(ctx), input); err != nil {
		n.log.Warn("in-app notification failed",
			zap.String("user_id", input.UserID),
			zap.String("type", input.Type),
			zap.Error(err))
	}
}

func (n *Notifier) email(ctx context.Context, to, subject, body string) {
	if n.mailer == nil || to == "" {
		return
	}
	err := n.mailer.Send(ensureContext(ctx), mail.Message{
		To:      []string{to},
		Subject: subject,
		Body:    body,
	})
	if err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		n.log.Warn("email notification failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
	}
}
