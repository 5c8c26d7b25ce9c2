package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/workhivehq/workhive/internal/models"
	apperrors "github.com/workhivehq/workhive/pkg/errors"
)

// ErrTaskNotFound indicates the referenced task does not exist.
var ErrTaskNotFound = apperrors.New("TASK_NOT_FOUND", "Task not found", 404)

// ErrAssigneeNotParticipant indicates the proposed assignee does not
// participate in the task's project.
var ErrAssigneeNotParticipant = apperrors.New("ASSIGNEE_NOT_PARTICIPANT", "Assignee is not a participant of this project", 400)

var validTaskStatuses = map[models.TaskStatus]struct{}{
	models.TaskStatusTodo:       {},
	models.TaskStatusInProgress: {},
	models.TaskStatusDone:       {},
}

// CreateTaskInput describes a task to create inside a project.
type CreateTaskInput struct {
	ProjectID   string
	Title       string
	Description string
	AssigneeID  *string
	DueAt       *time.Time
}

// UpdateTaskInput carries optional task changes.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueAt       *time.Time
}

// TaskService manages tasks within projects. Assignment is restricted to
// project participants so tasks never point at outsiders.
type TaskService struct {
	db       *gorm.DB
	projects *ProjectService
	audit    *AuditService
}

// NewTaskService constructs a TaskService.
func NewTaskService(db *gorm.DB, projects *ProjectService, audit *AuditService) (*TaskService, error) {
	if db == nil {
		return nil, errors.New("task service: db is required")
	}
	if projects == nil {
		return nil, errors.New("task service: project service is required")
	}
	return &TaskService{db: db, projects: projects, audit: audit}, nil
}

// Create adds a task to an active project.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("Task title is required")
	}

	project, err := s.projects.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.IsArchived {
		return nil, apperrors.ErrInvalidState.WithMessage("Project is archived")
	}

	task := models.Task{
		ProjectID:   project.ID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      models.TaskStatusTodo,
		DueAt:       input.DueAt,
	}

	if input.AssigneeID != nil && *input.AssigneeID != "" {
		if err := s.ensureParticipant(ctx, project, *input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
	}

	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("task service: create task: %w", err)
	}

	return &task, nil
}

// GetByID loads a task together with its assignee.
func (s *TaskService) GetByID(ctx context.Context, id string) (*models.Task, error) {
	ctx = ensureContext(ctx)

	var task models.Task
	err := s.db.WithContext(ctx).Preload("Assignee").First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("task service: load task: %w", err)
	}
	return &task, nil
}

// ListByProject returns the project's tasks, optionally filtered by status.
func (s *TaskService) ListByProject(ctx context.Context, projectID string, status models.TaskStatus) ([]models.Task, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Preload("Assignee").Where("project_id = ?", projectID)
	if status != "" {
		if _, ok := validTaskStatuses[status]; !ok {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("Unknown task status %q", status))
		}
		query = query.Where("status = ?", status)
	}

	var tasks []models.Task
	if err := query.Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task service: list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies partial changes to the task.
func (s *TaskService) Update(ctx context.Context, taskID string, input UpdateTaskInput) (*models.Task, error) {
	ctx = ensureContext(ctx)

	task, err := s.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewBadRequest("Task title cannot be empty")
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.DueAt != nil {
		updates["due_at"] = *input.DueAt
	}
	if len(updates) == 0 {
		return task, nil
	}

	if err := s.db.WithContext(ctx).Model(task).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("task service: update task: %w", err)
	}
	return task, nil
}

// UpdateStatus moves the task to a new workflow state.
func (s *TaskService) UpdateStatus(ctx context.Context, taskID string, status models.TaskStatus) (*models.Task, error) {
	ctx = ensureContext(ctx)

	if _, ok := validTaskStatuses[status]; !ok {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("Unknown task status %q", status))
	}

	task, err := s.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(task).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("task service: update status: %w", err)
	}
	task.Status = status
	return task, nil
}

// Assign hands the task to a project participant. An empty assignee clears
// the assignment.
func (s *TaskService) Assign(ctx context.Context, taskID, assigneeID string) (*models.Task, error) {
	ctx = ensureContext(ctx)

	task, err := s.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if assigneeID == "" {
		if err := s.db.WithContext(ctx).Model(task).Update("assignee_id", nil).Error; err != nil {
			return nil, fmt.Errorf("task service: clear assignee: %w", err)
		}
		task.AssigneeID = nil
		task.Assignee = nil
		return task, nil
	}

	project, err := s.projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureParticipant(ctx, project, assigneeID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(task).Update("assignee_id", assigneeID).Error; err != nil {
		return nil, fmt.Errorf("task service: assign task: %w", err)
	}
	task.AssigneeID = &assigneeID
	return task, nil
}

// Delete removes a task permanently.
func (s *TaskService) Delete(ctx context.Context, taskID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", taskID)
	if result.Error != nil {
		return fmt.Errorf("task service: delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *TaskService) ensureParticipant(ctx context.Context, project *models.Project, userID string) error {
	participant, err := s.projects.hasOpenMembership(ctx, project, userID)
	if err != nil {
		return err
	}
	if !participant {
		return ErrAssigneeNotParticipant
	}
	return nil
}
