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

// ErrNotificationNotFound indicates the requested notification does not exist
// or belongs to another user.
var ErrNotificationNotFound = apperrors.New("NOTIFICATION_NOT_FOUND", "Notification not found", 404)

// CreateNotificationInput describes a notification to store for a user.
type CreateNotificationInput struct {
	UserID   string
	Type     string
	Title    string
	Message  string
	Severity string
	Metadata map[string]any
}

// NotificationListOptions controls pagination and filtering for notification queries.
type NotificationListOptions struct {
	Page       int
	PageSize   int
	UnreadOnly bool
}

// NotificationService stores and retrieves per-user in-app notifications.
type NotificationService struct {
	db  *gorm.DB
	now func() time.Time
}

// NotificationOption customises NotificationService construction.
type NotificationOption func(*NotificationService)

// WithNotificationClock overrides the time source, mainly for tests.
func WithNotificationClock(clock func() time.Time) NotificationOption {
	return func(s *NotificationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB, opts ...NotificationOption) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	svc := &NotificationService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create persists a notification for the target user.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*models.Notification, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.UserID) == "" {
		return nil, apperrors.NewBadRequest("User id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewBadRequest("Title is required")
	}

	notification := models.Notification{
		UserID:   strings.TrimSpace(input.UserID),
		Type:     defaultIfEmpty(input.Type, "general"),
		Title:    strings.TrimSpace(input.Title),
		Message:  input.Message,
		Severity: defaultIfEmpty(input.Severity, "info"),
	}

	if input.Metadata != nil {
		encoded, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, fmt.Errorf("notification service: marshal metadata: %w", err)
		}
		notification.Metadata = encoded
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("notification service: create notification: %w", err)
	}

	return &notification, nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, opts NotificationListOptions) ([]models.Notification, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}

	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if opts.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("notification service: count notifications: %w", err)
	}

	var notifications []models.Notification
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("notification service: list notifications: %w", err)
	}

	return notifications, total, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	ctx = ensureContext(ctx)

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("notification service: count unread: %w", err)
	}
	return count, nil
}

// MarkRead marks a single notification as read for the user.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	ctx = ensureContext(ctx)

	now := s.now()
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", notificationID, userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if result.Error != nil {
		return fmt.Errorf("notification service: mark read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).
			Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", notificationID, userID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("notification service: mark read lookup: %w", err)
		}
		if count == 0 {
			return ErrNotificationNotFound
		}
	}
	return nil
}

// MarkAllRead marks every unread notification for the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	ctx = ensureContext(ctx)

	now := s.now()
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: mark all read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes a notification belonging to the user.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("notification service: delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// CleanupRead removes read notifications older than the retention window (in days).
func (s *NotificationService) CleanupRead(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, errors.New("notification service: retentionDays must be positive")
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	result := s.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: cleanup read: %w", result.Error)
	}
	return result.RowsAffected, nil
}
