package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/workhivehq/workhive/internal/models"
	apperrors "github.com/workhivehq/workhive/pkg/errors"
)

// ErrMeetingNotFound indicates the referenced meeting does not exist.
var ErrMeetingNotFound = apperrors.New("MEETING_NOT_FOUND", "Meeting not found", 404)

// ScheduleMeetingInput describes a meeting to schedule. ProjectID is optional;
// when set, the organizer must participate in that project.
type ScheduleMeetingInput struct {
	OrganizerID string
	ProjectID   *string
	Title       string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	Agenda      map[string]any
}

// MeetingService schedules and cancels meetings, optionally scoped to projects.
type MeetingService struct {
	db       *gorm.DB
	projects *ProjectService
	now      func() time.Time
}

// MeetingOption customises MeetingService construction.
type MeetingOption func(*MeetingService)

// WithMeetingClock overrides the time source, mainly for tests.
func WithMeetingClock(clock func() time.Time) MeetingOption {
	return func(s *MeetingService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewMeetingService constructs a MeetingService.
func NewMeetingService(db *gorm.DB, projects *ProjectService, opts ...MeetingOption) (*MeetingService, error) {
	if db == nil {
		return nil, errors.New("meeting service: db is required")
	}
	if projects == nil {
		return nil, errors.New("meeting service: project service is required")
	}
	svc := &MeetingService{db: db, projects: projects, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Schedule creates a meeting after validating the time window and, for
// project meetings, the organizer's participation.
func (s *MeetingService) Schedule(ctx context.Context, input ScheduleMeetingInput) (*models.Meeting, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("Meeting title is required")
	}
	if input.StartsAt.IsZero() || input.EndsAt.IsZero() {
		return nil, apperrors.NewBadRequest("Meeting start and end times are required")
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, apperrors.NewBadRequest("Meeting must end after it starts")
	}

	if _, err := loadUserWithRoles(ctx, s.db, input.OrganizerID); err != nil {
		return nil, err
	}

	meeting := models.Meeting{
		OrganizerID: input.OrganizerID,
		Title:       title,
		Location:    strings.TrimSpace(input.Location),
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
	}

	if input.ProjectID != nil && *input.ProjectID != "" {
		project, err := s.projects.GetByID(ctx, *input.ProjectID)
		if err != nil {
			return nil, err
		}
		participant, err := s.projects.hasOpenMembership(ctx, project, input.OrganizerID)
		if err != nil {
			return nil, err
		}
		if !participant {
			return nil, apperrors.ErrForbidden.WithMessage("Organizer does not participate in this project")
		}
		meeting.ProjectID = &project.ID
	}

	if input.Agenda != nil {
		encoded, err := json.Marshal(input.Agenda)
		if err != nil {
			return nil, fmt.Errorf("meeting service: marshal agenda: %w", err)
		}
		meeting.Agenda = encoded
	}

	if err := s.db.WithContext(ctx).Create(&meeting).Error; err != nil {
		return nil, fmt.Errorf("meeting service: create meeting: %w", err)
	}

	return &meeting, nil
}

// GetByID loads a meeting together with its organizer.
func (s *MeetingService) GetByID(ctx context.Context, id string) (*models.Meeting, error) {
	ctx = ensureContext(ctx)

	var meeting models.Meeting
	err := s.db.WithContext(ctx).Preload("Organizer").First(&meeting, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMeetingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("meeting service: load meeting: %w", err)
	}
	return &meeting, nil
}

// ListByProject returns the project's meetings in chronological order.
func (s *MeetingService) ListByProject(ctx context.Context, projectID string) ([]models.Meeting, error) {
	ctx = ensureContext(ctx)

	var meetings []models.Meeting
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("starts_at ASC").
		Find(&meetings).Error
	if err != nil {
		return nil, fmt.Errorf("meeting service: list project meetings: %w", err)
	}
	return meetings, nil
}

// ListUpcomingForOrganizer returns the organizer's future, non-canceled meetings.
func (s *MeetingService) ListUpcomingForOrganizer(ctx context.Context, organizerID string) ([]models.Meeting, error) {
	ctx = ensureContext(ctx)

	var meetings []models.Meeting
	err := s.db.WithContext(ctx).
		Where("organizer_id = ? AND is_canceled = ? AND starts_at >= ?", organizerID, false, s.now()).
		Order("starts_at ASC").
		Find(&meetings).Error
	if err != nil {
		return nil, fmt.Errorf("meeting service: list upcoming meetings: %w", err)
	}
	return meetings, nil
}

// Cancel marks a meeting as canceled. Only the organizer may cancel.
func (s *MeetingService) Cancel(ctx context.Context, organizerID, meetingID string) error {
	ctx = ensureContext(ctx)

	meeting, err := s.GetByID(ctx, meetingID)
	if err != nil {
		return err
	}
	if meeting.OrganizerID != organizerID {
		return apperrors.ErrForbidden.WithMessage("Only the organizer can cancel this meeting")
	}
	if meeting.IsCanceled {
		return apperrors.ErrInvalidState.WithMessage("Meeting is already canceled")
	}

	if err := s.db.WithContext(ctx).Model(meeting).Update("is_canceled", true).Error; err != nil {
		return fmt.Errorf("meeting service: cancel meeting: %w", err)
	}
	return nil
}
