package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workhivehq/workhive/internal/services"
	"github.com/workhivehq/workhive/pkg/response"
)

// MeetingHandler exposes meeting scheduling endpoints.
type MeetingHandler struct {
	meetings *services.MeetingService
}

// NewMeetingHandler constructs a MeetingHandler.
func NewMeetingHandler(meetings *services.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetings: meetings}
}

type scheduleMeetingRequest struct {
	ProjectID *string        `json:"project_id"`
	Title     string         `json:"title" validate:"required,min=1,max=255"`
	Location  string         `json:"location" validate:"max=512"`
	StartsAt  time.Time      `json:"starts_at" validate:"required"`
	EndsAt    time.Time      `json:"ends_at" validate:"required"`
	Agenda    map[string]any `json:"agenda"`
}

// Schedule creates a meeting organized by the caller.
func (h *MeetingHandler) Schedule(c *gin.Context) {
	organizerID, ok := currentUserID(c)
	if !ok {
		return
	}
	req, ok := bindAndValidate[scheduleMeetingRequest](c)
	if !ok {
		return
	}

	meeting, err := h.meetings.Schedule(c.Request.Context(), services.ScheduleMeetingInput{
		OrganizerID: organizerID,
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Agenda:      req.Agenda,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, meeting)
}

// Get returns a single meeting.
func (h *MeetingHandler) Get(c *gin.Context) {
	meeting, err := h.meetings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, meeting)
}

// ListByProject returns a project's meetings in chronological order.
func (h *MeetingHandler) ListByProject(c *gin.Context) {
	meetings, err := h.meetings.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, meetings)
}

// ListUpcoming returns the caller's upcoming meetings.
func (h *MeetingHandler) ListUpcoming(c *gin.Context) {
	organizerID, ok := currentUserID(c)
	if !ok {
		return
	}

	meetings, err := h.meetings.ListUpcomingForOrganizer(c.Request.Context(), organizerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, meetings)
}

// Cancel marks a meeting as canceled.
func (h *MeetingHandler) Cancel(c *gin.Context) {
	organizerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.meetings.Cancel(c.Request.Context(), organizerID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}
