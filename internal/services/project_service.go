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
	"github.com/workhivehq/workhive/pkg/metrics"
)

var (
	// ErrProjectNotFound indicates the referenced project does not exist.
	ErrProjectNotFound = apperrors.New("PROJECT_NOT_FOUND", "Project not found", 404)

	// ErrNotProjectOwner indicates the caller does not own the project.
	ErrNotProjectOwner = apperrors.New("NOT_PROJECT_OWNER", "Only the project owner can perform this action", 403)

	// ErrAlreadyProjectMember indicates the user already holds an open membership.
	ErrAlreadyProjectMember = apperrors.New("ALREADY_PROJECT_MEMBER", "User is already a member of this project", 409)
)

// CreateProjectInput describes a project to create.
type CreateProjectInput struct {
	OwnerID     string
	Name        string
	Description string
}

// UpdateProjectInput carries optional project changes.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// ProjectService manages projects and their membership roster. Organization
// affiliation gates enrollment: only users managed by the project owner can
// be added.
type ProjectService struct {
	db    *gorm.DB
	audit *AuditService
	now   func() time.Time
}

// ProjectOption customises ProjectService construction.
type ProjectOption func(*ProjectService)

// WithProjectClock overrides the time source, mainly for tests.
func WithProjectClock(clock func() time.Time) ProjectOption {
	return func(s *ProjectService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *gorm.DB, audit *AuditService, opts ...ProjectOption) (*ProjectService, error) {
	if db == nil {
		return nil, errors.New("project service: db is required")
	}
	svc := &ProjectService{db: db, audit: audit, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create registers a new project for a business owner.
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("Project name is required")
	}

	owner, err := loadUserWithRoles(ctx, s.db, input.OwnerID)
	if err != nil {
		return nil, err
	}
	if !owner.HasRole(models.RoleBusinessOwner) {
		return nil, ErrNotBusinessOwner.WithMessage("Only business owners can create projects")
	}

	project := models.Project{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		OwnerID:     owner.ID,
	}
	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, fmt.Errorf("project service: create project: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &owner.ID,
		Username: owner.Username,
		Action:   "project.create",
		Resource: "project:" + project.ID,
		Result:   "success",
	})

	return &project, nil
}

// GetByID loads a project together with its owner.
func (s *ProjectService) GetByID(ctx context.Context, id string) (*models.Project, error) {
	ctx = ensureContext(ctx)

	var project models.Project
	err := s.db.WithContext(ctx).Preload("Owner").First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("project service: load project: %w", err)
	}
	return &project, nil
}

// ListByOwner returns the owner's projects, optionally including archived ones.
func (s *ProjectService) ListByOwner(ctx context.Context, ownerID string, includeArchived bool) ([]models.Project, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("project service: list projects: %w", err)
	}
	return projects, nil
}

// ListForMember returns the projects in which the user holds an open membership.
func (s *ProjectService) ListForMember(ctx context.Context, memberID string) ([]models.Project, error) {
	ctx = ensureContext(ctx)

	var projects []models.Project
	err := s.db.WithContext(ctx).
		Where("id IN (?)",
			s.db.Model(&models.ProjectMember{}).Select("project_id").
				Where("member_id = ? AND left_at IS NULL", memberID)).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("project service: list member projects: %w", err)
	}
	return projects, nil
}

// Update applies partial changes to a project owned by the caller.
func (s *ProjectService) Update(ctx context.Context, ownerID, projectID string, input UpdateProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	project, err := s.ownedProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("Project name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if len(updates) == 0 {
		return project, nil
	}

	if err := s.db.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("project service: update project: %w", err)
	}
	return project, nil
}

// Archive marks a project as archived. Archived projects reject new tasks
// and roster changes but keep their history readable.
func (s *ProjectService) Archive(ctx context.Context, ownerID, projectID string) error {
	ctx = ensureContext(ctx)

	project, err := s.ownedProject(ctx, ownerID, projectID)
	if err != nil {
		return err
	}
	if project.IsArchived {
		return apperrors.ErrInvalidState.WithMessage("Project is already archived")
	}

	if err := s.db.WithContext(ctx).Model(project).Update("is_archived", true).Error; err != nil {
		return fmt.Errorf("project service: archive project: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &ownerID,
		Action:   "project.archive",
		Resource: "project:" + projectID,
		Result:   "success",
	})
	return nil
}

// AddMember enrolls an organization member into the project.
func (s *ProjectService) AddMember(ctx context.Context, ownerID, projectID, memberID string) (*models.ProjectMember, error) {
	ctx = ensureContext(ctx)

	project, err := s.ownedProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	if project.IsArchived {
		return nil, apperrors.ErrInvalidState.WithMessage("Project is archived")
	}

	var member models.User
	if err := s.db.WithContext(ctx).First(&member, "id = ?", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("project service: load member: %w", err)
	}
	if member.ManagedByID == nil || *member.ManagedByID != ownerID {
		return nil, ErrNotOrganizationMember
	}

	var open int64
	err = s.db.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("project_id = ? AND member_id = ? AND left_at IS NULL", projectID, memberID).
		Count(&open).Error
	if err != nil {
		return nil, fmt.Errorf("project service: check membership: %w", err)
	}
	if open > 0 {
		return nil, ErrAlreadyProjectMember
	}

	membership := models.ProjectMember{
		ProjectID: projectID,
		MemberID:  memberID,
		JoinedAt:  s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&membership).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrAlreadyProjectMember
		}
		return nil, fmt.Errorf("project service: enroll member: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &ownerID,
		Action:   "project.add_member",
		Resource: "project:" + projectID,
		Result:   "success",
		Metadata: map[string]any{"member_id": memberID},
	})

	return &membership, nil
}

// RemoveMember closes the member's open membership in the project without
// touching the organization affiliation.
func (s *ProjectService) RemoveMember(ctx context.Context, ownerID, projectID, memberID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.ownedProject(ctx, ownerID, projectID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("project_id = ? AND member_id = ? AND left_at IS NULL", projectID, memberID).
		Update("left_at", s.now())
	if result.Error != nil {
		return fmt.Errorf("project service: remove member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotOrganizationMember.WithMessage("User has no open membership in this project")
	}

	metrics.MembershipsClosed.WithLabelValues("project").Add(float64(result.RowsAffected))

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &ownerID,
		Action:   "project.remove_member",
		Resource: "project:" + projectID,
		Result:   "success",
		Metadata: map[string]any{"member_id": memberID},
	})
	return nil
}

// ListMembers returns the project roster, optionally restricted to open
// memberships.
func (s *ProjectService) ListMembers(ctx context.Context, projectID string, activeOnly bool) ([]models.ProjectMember, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Preload("Member").Where("project_id = ?", projectID)
	if activeOnly {
		query = query.Where("left_at IS NULL")
	}

	var memberships []models.ProjectMember
	if err := query.Order("joined_at ASC").Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("project service: list members: %w", err)
	}
	return memberships, nil
}

// hasOpenMembership reports whether the user currently participates in the
// project, either as its owner or through an open membership row.
func (s *ProjectService) hasOpenMembership(ctx context.Context, project *models.Project, userID string) (bool, error) {
	if project.OwnerID == userID {
		return true, nil
	}

	var open int64
	err := s.db.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("project_id = ? AND member_id = ? AND left_at IS NULL", project.ID, userID).
		Count(&open).Error
	if err != nil {
		return false, fmt.Errorf("project service: check participation: %w", err)
	}
	return open > 0, nil
}

func (s *ProjectService) ownedProject(ctx context.Context, ownerID, projectID string) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).First(&project, "id = ?", projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("project service: load project: %w", err)
	}
	if project.OwnerID != ownerID {
		return nil, ErrNotProjectOwner
	}
	return &project, nil
}
