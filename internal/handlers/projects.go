package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workhivehq/workhive/internal/services"
	"github.com/workhivehq/workhive/pkg/response"
)

// ProjectHandler exposes project CRUD and roster management.
type ProjectHandler struct {
	projects *services.ProjectService
}

// NewProjectHandler constructs a ProjectHandler.
func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

// Create registers a new project owned by the caller.
func (h *ProjectHandler) Create(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	req, ok := bindAndValidate[createProjectRequest](c)
	if !ok {
		return
	}

	project, err := h.projects.Create(c.Request.Context(), services.CreateProjectInput{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, project)
}

// List returns the caller's projects: owned ones for business owners plus
// those joined through membership.
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	includeArchived := c.Query("archived") == "true"

	owned, err := h.projects.ListByOwner(c.Request.Context(), userID, includeArchived)
	if err != nil {
		response.Error(c, err)
		return
	}
	joined, err := h.projects.ListForMember(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"owned":  owned,
		"joined": joined,
	})
}

// Get returns a single project.
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, project)
}

type updateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// Update applies partial changes to a project owned by the caller.
func (h *ProjectHandler) Update(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	req, ok := bindAndValidate[updateProjectRequest](c)
	if !ok {
		return
	}

	project, err := h.projects.Update(c.Request.Context(), ownerID, c.Param("id"), services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, project)
}

// Archive marks a project as archived.
func (h *ProjectHandler) Archive(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.projects.Archive(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}

type addProjectMemberRequest struct {
	MemberID string `json:"member_id" validate:"required"`
}

// AddMember enrolls an organization member into the project.
func (h *ProjectHandler) AddMember(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	req, ok := bindAndValidate[addProjectMemberRequest](c)
	if !ok {
		return
	}

	membership, err := h.projects.AddMember(c.Request.Context(), ownerID, c.Param("id"), req.MemberID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, membership)
}

// RemoveMember closes a member's open membership in the project.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.projects.RemoveMember(c.Request.Context(), ownerID, c.Param("id"), c.Param("memberId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}

// ListMembers returns the project roster. Pass all=true to include closed
// memberships.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	activeOnly := c.Query("all") != "true"

	members, err := h.projects.ListMembers(c.Request.Context(), c.Param("id"), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, members)
}
