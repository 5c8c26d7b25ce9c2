package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/workhivehq/workhive/internal/services"
	"github.com/workhivehq/workhive/pkg/response"
)

// AuditHandler exposes read access to the audit trail.
type AuditHandler struct {
	audit *services.AuditService
}

// NewAuditHandler constructs an AuditHandler.
func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List returns paginated audit logs with optional filters.
func (h *AuditHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	logs, total, err := h.audit.List(c.Request.Context(), services.AuditListOptions{
		Page:     page,
		PageSize: perPage,
		Filters: services.AuditFilters{
			UserID:   c.Query("user_id"),
			Action:   c.Query("action"),
			Result:   c.Query("result"),
			Resource: c.Query("resource"),
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	totalPages := 0
	if perPage > 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	response.SuccessWithMeta(c, http.StatusOK, logs, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      int(total),
		TotalPages: totalPages,
	})
}
