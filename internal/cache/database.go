package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/workhivehq/workhive/internal/models"
)

// DatabaseStore implements the cache Store interface using the primary SQL
// database. It is the fallback when Redis is not configured.
type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDatabaseStore constructs a database-backed Store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db, now: time.Now}
}

// IncrementWithTTL increments a counter for the supplied key inside a transaction.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s == nil {
		return 0, 0, errors.New("cache: database store is nil")
	}

	now := s.now()
	var count int64
	var remaining time.Duration

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.CacheEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&entry, "key = ?", key).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && entry.ExpiresAt.Before(now)):
			count = 1
			remaining = window
			entry = models.CacheEntry{
				Key:       key,
				Value:     []byte("1"),
				ExpiresAt: now.Add(window),
			}
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				UpdateAll: true,
			}).Create(&entry).Error
		case err != nil:
			return err
		default:
			current, _ := strconv.ParseInt(string(entry.Value), 10, 64)
			count = current + 1
			remaining = time.Until(entry.ExpiresAt)
			entry.Value = []byte(strconv.FormatInt(count, 10))
			return tx.Model(&models.CacheEntry{}).
				Where("key = ?", key).
				Update("value", entry.Value).Error
		}
	})
	if err != nil {
		return 0, 0, err
	}

	return count, remaining, nil
}

// Set stores a value with the provided TTL, replacing any existing entry.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s == nil {
		return errors.New("cache: database store is nil")
	}

	entry := models.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: s.now().Add(ttl),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&entry).Error
}

// Get fetches a value, treating expired entries as absent.
func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s == nil {
		return nil, false, errors.New("cache: database store is nil")
	}

	var entry models.CacheEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if entry.ExpiresAt.Before(s.now()) {
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Delete removes the supplied keys.
func (s *DatabaseStore) Delete(ctx context.Context, keys ...string) error {
	if s == nil {
		return errors.New("cache: database store is nil")
	}
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("key IN ?", keys).Delete(&models.CacheEntry{}).Error
}
