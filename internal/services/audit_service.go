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
)

// AuditEntry is one audit event to persist. UserID is optional; system
// actions (the maintenance sweep, token claims during registration) log
// without an acting user.
type AuditEntry struct {
	UserID   *string
	Username string
	Action   string
	Resource string
	Result   string
	Metadata map[string]any
}

// AuditFilters narrows an audit query.
type AuditFilters struct {
	UserID   string
	Action   string
	Result   string
	Resource string
	Since    *time.Time
	Until    *time.Time
}

// AuditListOptions paginates and filters audit queries.
type AuditListOptions struct {
	Page     int
	PageSize int
	Filters  AuditFilters
}

// AuditService writes and reads the append-only audit trail.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) (*AuditService, error) {
	if db == nil {
		return nil, errors.New("audit service: db is required")
	}
	return &AuditService{db: db}, nil
}

// Log appends one entry. Metadata is stored as JSON.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	ctx = ensureContext(ctx)

	record := models.AuditLog{
		Action:   strings.TrimSpace(entry.Action),
		Resource: strings.TrimSpace(entry.Resource),
		Result:   strings.TrimSpace(entry.Result),
		Username: strings.TrimSpace(entry.Username),
	}
	if record.Action == "" {
		return errors.New("audit service: action is required")
	}
	if record.Result == "" {
		return errors.New("audit service: result is required")
	}

	if entry.Metadata != nil {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("audit service: marshal metadata: %w", err)
		}
		record.Metadata = string(encoded)
	}
	if entry.UserID != nil {
		if id := strings.TrimSpace(*entry.UserID); id != "" {
			record.UserID = &id
		}
	}

	return s.db.WithContext(ctx).Create(&record).Error
}

// List returns a page of audit logs, newest first, with the unpaginated
// total for the same filters.
func (s *AuditService) List(ctx context.Context, opts AuditListOptions) ([]models.AuditLog, int64, error) {
	ctx = ensureContext(ctx)

	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.PageSize <= 0 || opts.PageSize > 200 {
		opts.PageSize = 50
	}

	query := applyAuditFilters(s.db.WithContext(ctx).Model(&models.AuditLog{}), opts.Filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("audit service: count logs: %w", err)
	}

	var logs []models.AuditLog
	err := query.
		Order("created_at DESC").
		Offset((opts.Page - 1) * opts.PageSize).
		Limit(opts.PageSize).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("audit service: list logs: %w", err)
	}
	return logs, total, nil
}

// CleanupOlderThan drops entries older than the retention window in days and
// reports how many were removed.
func (s *AuditService) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, errors.New("audit service: retentionDays must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("audit service: cleanup logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func applyAuditFilters(query *gorm.DB, filters AuditFilters) *gorm.DB {
	for column, value := range map[string]string{
		"user_id":  filters.UserID,
		"action":   filters.Action,
		"result":   filters.Result,
		"resource": filters.Resource,
	} {
		if value != "" {
			query = query.Where(column+" = ?", value)
		}
	}
	if filters.Since != nil {
		query = query.Where("created_at >= ?", *filters.Since)
	}
	if filters.Until != nil {
		query = query.Where("created_at <= ?", *filters.Until)
	}
	return query
}

// recordAudit logs best-effort: audit failures never fail the operation
// being recorded.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	_ = audit.Log(ctx, entry)
}
