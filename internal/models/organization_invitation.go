package models

import "time"

// InvitationType distinguishes who initiated the affiliation proposal.
type InvitationType string

// InvitationStatus tracks the lifecycle of a proposal. Rows are never
// deleted; the status column is the record of history.
type InvitationStatus string

const (
	// InvitationTypeInvite is initiated by the business owner.
	InvitationTypeInvite InvitationType = "invite"
	// InvitationTypeRequest is initiated by the member asking to join.
	InvitationTypeRequest InvitationType = "request"

	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRejected InvitationStatus = "rejected"
	InvitationStatusCanceled InvitationStatus = "canceled"
)

// OrganizationInvitation represents a proposed affiliation between a business
// owner and a member. Exactly one of MemberID or InvitedEmail+Token is set:
// InvitedEmail and Token cover counterparts who have not registered yet.
type OrganizationInvitation struct {
	BaseModel

	BusinessOwnerID string  `gorm:"type:uuid;not null;index" json:"business_owner_id"`
	MemberID        *string `gorm:"type:uuid;index" json:"member_id"`
	InvitedEmail    *string `gorm:"index" json:"invited_email,omitempty"`
	Token           *string `gorm:"index" json:"-"`

	Type   InvitationType   `gorm:"type:varchar(16);not null" json:"type"`
	Status InvitationStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`

	RespondedAt *time.Time `json:"responded_at"`

	BusinessOwner *User `gorm:"foreignKey:BusinessOwnerID" json:"business_owner,omitempty"`
	Member        *User `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

// IsExternal reports whether the invitation targets a not-yet-registered email.
func (i *OrganizationInvitation) IsExternal() bool {
	return i.MemberID == nil
}

// InitiatorID returns the user that created the proposal.
func (i *OrganizationInvitation) InitiatorID() string {
	if i.Type == InvitationTypeRequest && i.MemberID != nil {
		return *i.MemberID
	}
	return i.BusinessOwnerID
}

// ResponderID returns the non-initiating party expected to accept or reject.
// External invitations have no responder until the email is bound to a user.
func (i *OrganizationInvitation) ResponderID() string {
	if i.Type == InvitationTypeRequest {
		return i.BusinessOwnerID
	}
	if i.MemberID != nil {
		return *i.MemberID
	}
	return ""
}
