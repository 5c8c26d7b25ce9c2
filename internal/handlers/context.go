package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/workhivehq/workhive/internal/middleware"
	apperrors "github.com/workhivehq/workhive/pkg/errors"
	"github.com/workhivehq/workhive/pkg/response"
)

// currentUserID fetches the authenticated user id or writes a 401.
func currentUserID(c *gin.Context) (string, bool) {
	id := middleware.UserID(c)
	if id == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return "", false
	}
	return id, true
}
