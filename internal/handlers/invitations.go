package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workhivehq/workhive/internal/models"
	"github.com/workhivehq/workhive/internal/services"
	"github.com/workhivehq/workhive/pkg/response"
)

// InvitationHandler exposes the proposal lifecycle over HTTP. Invitations and
// join requests share one service; the routes differ only in who initiates
// and which type the respond endpoints expect.
type InvitationHandler struct {
	invitations *services.InvitationService
}

// NewInvitationHandler constructs an InvitationHandler.
func NewInvitationHandler(invitations *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

type sendInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Send creates an owner-initiated invitation to the given email.
func (h *InvitationHandler) Send(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	req, ok := bindAndValidate[sendInvitationRequest](c)
	if !ok {
		return
	}

	invitation, err := h.invitations.SendInvitation(c.Request.Context(), services.SendInvitationInput{
		BusinessOwnerID: ownerID,
		Email:           req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, invitation)
}

type requestToJoinRequest struct {
	BusinessOwnerID string `json:"business_owner_id" validate:"required"`
}

// RequestToJoin creates a member-initiated join request.
func (h *InvitationHandler) RequestToJoin(c *gin.Context) {
	memberID, ok := currentUserID(c)
	if !ok {
		return
	}
	req, ok := bindAndValidate[requestToJoinRequest](c)
	if !ok {
		return
	}

	request, err := h.invitations.RequestToJoin(c.Request.Context(), services.RequestToJoinInput{
		MemberID:        memberID,
		BusinessOwnerID: req.BusinessOwnerID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, request)
}

// AcceptInvitation lets the invited member accept an owner's invitation.
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	h.respond(c, services.DecisionAccept, models.InvitationTypeInvite)
}

// RejectInvitation lets the invited member decline an owner's invitation.
func (h *InvitationHandler) RejectInvitation(c *gin.Context) {
	h.respond(c, services.DecisionReject, models.InvitationTypeInvite)
}

// AcceptRequest lets a business owner approve a member's join request.
func (h *InvitationHandler) AcceptRequest(c *gin.Context) {
	h.respond(c, services.DecisionAccept, models.InvitationTypeRequest)
}

// RejectRequest lets a business owner decline a member's join request.
func (h *InvitationHandler) RejectRequest(c *gin.Context) {
	h.respond(c, services.DecisionReject, models.InvitationTypeRequest)
}

func (h *InvitationHandler) respond(c *gin.Context, decision services.Decision, expected models.InvitationType) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.invitations.Respond(c.Request.Context(), services.RespondInput{
		InvitationID: c.Param("id"),
		ResponderID:  userID,
		Decision:     decision,
		ExpectedType: expected,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, result.Message, gin.H{
		"invitation":           result.Invitation,
		"canceled_invitations": result.CanceledInvitations,
	})
}

// Cancel withdraws a pending proposal initiated by the caller.
func (h *InvitationHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invitation, err := h.invitations.Cancel(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, invitation)
}

type claimTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// ClaimToken binds a pending external invitation to the authenticated user.
func (h *InvitationHandler) ClaimToken(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	req, ok := bindAndValidate[claimTokenRequest](c)
	if !ok {
		return
	}

	invitation, err := h.invitations.ClaimInvitationToken(c.Request.Context(), req.Token, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, invitation)
}

// ListSent returns the invitations the calling owner has sent.
func (h *InvitationHandler) ListSent(c *gin.Context) {
	h.list(c, h.invitations.SentByOwner)
}

// ListReceived returns the invitations addressed to the calling member.
func (h *InvitationHandler) ListReceived(c *gin.Context) {
	h.list(c, h.invitations.ReceivedByMember)
}

// ListPendingRequests returns the open join requests awaiting the calling owner.
func (h *InvitationHandler) ListPendingRequests(c *gin.Context) {
	h.list(c, h.invitations.PendingRequestsForOwner)
}

// ListSentRequests returns the join requests the calling member has made.
func (h *InvitationHandler) ListSentRequests(c *gin.Context) {
	h.list(c, h.invitations.SentRequestsByMember)
}

func (h *InvitationHandler) list(c *gin.Context, fetch func(ctx context.Context, userID string) ([]services.InvitationView, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	views, err := fetch(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, views)
}
