package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workhivehq/workhive/internal/services"
	"github.com/workhivehq/workhive/pkg/response"
)

// OrganizationHandler exposes the managed-member surface: roster listing,
// member removal and role reassignment.
type OrganizationHandler struct {
	memberships *services.MembershipService
	roles       *services.RoleService
}

// NewOrganizationHandler constructs an OrganizationHandler.
func NewOrganizationHandler(memberships *services.MembershipService, roles *services.RoleService) *OrganizationHandler {
	return &OrganizationHandler{memberships: memberships, roles: roles}
}

// ListMembers returns the users managed by the calling business owner.
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	members, err := h.memberships.ListOrganizationMembers(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, members)
}

// RemoveMember detaches a member from the caller's organization and closes
// their memberships in the caller's projects.
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.memberships.RemoveMember(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Member removed from organization", result)
}

type reassignRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// ReassignRole replaces a managed member's organization role.
func (h *OrganizationHandler) ReassignRole(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	req, ok := bindAndValidate[reassignRoleRequest](c)
	if !ok {
		return
	}

	member, err := h.roles.ReassignRole(c.Request.Context(), ownerID, c.Param("id"), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, member)
}
