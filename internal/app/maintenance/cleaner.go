package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/workhivehq/workhive/internal/services"
	"github.com/workhivehq/workhive/pkg/logger"
)

// Options configures the periodic maintenance sweep.
type Options struct {
	Schedule                  string
	AuditRetentionDays        int
	NotificationRetentionDays int
	RunTimeout                time.Duration
}

// Cleaner runs the recurring background jobs: membership reconciliation,
// audit retention and notification retention.
type Cleaner struct {
	memberships   *services.MembershipService
	audit         *services.AuditService
	notifications *services.NotificationService
	opts          Options
	cron          *cron.Cron
	log           *zap.Logger
}

// NewCleaner constructs a Cleaner.
func NewCleaner(memberships *services.MembershipService, audit *services.AuditService, notifications *services.NotificationService, opts Options) (*Cleaner, error) {
	if memberships == nil {
		return nil, errors.New("maintenance: membership service is required")
	}
	if opts.Schedule == "" {
		opts.Schedule = "@every 10m"
	}
	if opts.AuditRetentionDays <= 0 {
		opts.AuditRetentionDays = 90
	}
	if opts.NotificationRetentionDays <= 0 {
		opts.NotificationRetentionDays = 30
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 5 * time.Minute
	}

	return &Cleaner{
		memberships:   memberships,
		audit:         audit,
		notifications: notifications,
		opts:          opts,
		log:           logger.WithModule("maintenance"),
	}, nil
}

// Start schedules the sweep and begins running it in the background.
func (c *Cleaner) Start() error {
	if c.cron != nil {
		return errors.New("maintenance: already started")
	}

	runner := cron.New()
	_, err := runner.AddFunc(c.opts.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.RunTimeout)
		defer cancel()

		if err := c.RunOnce(ctx); err != nil {
			c.log.Warn("maintenance sweep finished with errors", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("maintenance: schedule %q: %w", c.opts.Schedule, err)
	}

	c.cron = runner
	c.cron.Start()
	c.log.Info("maintenance scheduled", zap.String("schedule", c.opts.Schedule))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (c *Cleaner) Stop() {
	if c.cron == nil {
		return
	}
	<-c.cron.Stop().Done()
	c.cron = nil
}

// RunOnce executes every maintenance job, collecting their errors instead of
// stopping at the first failure.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	var errs error

	closed, err := c.memberships.ReconcileOrphanedMemberships(ctx)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("reconcile memberships: %w", err))
	} else if closed > 0 {
		c.log.Info("reconciled orphaned memberships", zap.Int64("closed", closed))
	}

	if c.audit != nil {
		removed, err := c.audit.CleanupOlderThan(ctx, c.opts.AuditRetentionDays)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("audit retention: %w", err))
		} else if removed > 0 {
			c.log.Info("pruned audit logs", zap.Int64("removed", removed))
		}
	}

	if c.notifications != nil {
		removed, err := c.notifications.CleanupRead(ctx, c.opts.NotificationRetentionDays)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("notification retention: %w", err))
		} else if removed > 0 {
			c.log.Info("pruned read notifications", zap.Int64("removed", removed))
		}
	}

	return errs
}
