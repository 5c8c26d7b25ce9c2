package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workhivehq/workhive/internal/models"
	"github.com/workhivehq/workhive/internal/services"
	"github.com/workhivehq/workhive/pkg/response"
)

// TaskHandler exposes task CRUD within projects.
type TaskHandler struct {
	tasks *services.TaskService
}

// NewTaskHandler constructs a TaskHandler.
func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=255"`
	Description string     `json:"description" validate:"max=4000"`
	AssigneeID  *string    `json:"assignee_id"`
	DueAt       *time.Time `json:"due_at"`
}

// Create adds a task to the project in the route.
func (h *TaskHandler) Create(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	req, ok := bindAndValidate[createTaskRequest](c)
	if !ok {
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), services.CreateTaskInput{
		ProjectID:   c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		DueAt:       req.DueAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, task)
}

// ListByProject returns the project's tasks, optionally filtered by status.
func (h *TaskHandler) ListByProject(c *gin.Context) {
	tasks, err := h.tasks.ListByProject(c.Request.Context(), c.Param("id"), models.TaskStatus(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, tasks)
}

// Get returns a single task.
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, task)
}

type updateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=4000"`
	DueAt       *time.Time `json:"due_at"`
}

// Update applies partial changes to a task.
func (h *TaskHandler) Update(c *gin.Context) {
	req, ok := bindAndValidate[updateTaskRequest](c)
	if !ok {
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), c.Param("id"), services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, task)
}

type updateTaskStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus moves a task to a new workflow state.
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	req, ok := bindAndValidate[updateTaskStatusRequest](c)
	if !ok {
		return
	}

	task, err := h.tasks.UpdateStatus(c.Request.Context(), c.Param("id"), models.TaskStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, task)
}

type assignTaskRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// Assign hands a task to a project participant; an empty assignee clears it.
func (h *TaskHandler) Assign(c *gin.Context) {
	req, ok := bindAndValidate[assignTaskRequest](c)
	if !ok {
		return
	}

	task, err := h.tasks.Assign(c.Request.Context(), c.Param("id"), req.AssigneeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, task)
}

// Delete removes a task.
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}
