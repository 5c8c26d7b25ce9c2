package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workhivehq/workhive/internal/auth"
	"github.com/workhivehq/workhive/internal/models"
	"github.com/workhivehq/workhive/internal/services"
	"github.com/workhivehq/workhive/pkg/metrics"
	"github.com/workhivehq/workhive/pkg/response"
)

// AuthHandler exposes registration, login and profile endpoints.
type AuthHandler struct {
	users       *services.UserService
	invitations *services.InvitationService
	jwt         *auth.JWTService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users *services.UserService, invitations *services.InvitationService, jwt *auth.JWTService) *AuthHandler {
	return &AuthHandler{users: users, invitations: invitations, jwt: jwt}
}

type registerRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=64"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	FirstName       string `json:"first_name" validate:"max=100"`
	LastName        string `json:"last_name" validate:"max=100"`
	Organization    string `json:"organization" validate:"max=255"`
	InvitationToken string `json:"invitation_token"`
}

// Register creates an account. Supplying an invitation token binds a pending
// external invitation to the new user.
func (h *AuthHandler) Register(c *gin.Context) {
	req, ok := bindAndValidate[registerRequest](c)
	if !ok {
		return
	}

	user, err := h.users.Create(c.Request.Context(), services.CreateUserInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Organization: req.Organization,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	var claimed *models.OrganizationInvitation
	if req.InvitationToken != "" {
		// The account exists either way; token problems surface in the payload.
		claimed, _ = h.invitations.ClaimInvitationToken(c.Request.Context(), req.InvitationToken, user.ID)
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":               user,
		"claimed_invitation": claimed,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	req, ok := bindAndValidate[loginRequest](c)
	if !ok {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues("success").Inc()

	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, role.ID)
	}

	token, err := h.jwt.GenerateAccessToken(auth.AccessTokenInput{
		UserID: user.ID,
		Roles:  roles,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Avatar    *string `json:"avatar" validate:"omitempty,max=512"`
}

// UpdateMe applies partial profile changes to the authenticated user.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	req, ok := bindAndValidate[updateProfileRequest](c)
	if !ok {
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, services.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
