package ratelimit

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type RateLimitRecord struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	IPAddress       string    `json:"ip_address" gorm:"size:45;not null;uniqueIndex:idx_rate_limits_ip_action"`
	ActionType      string    `json:"action_type" gorm:"size:64;not null;uniqueIndex:idx_rate_limits_ip_action"`
	AttemptCount    int       `json:"attempt_count" gorm:"not null;default:0"`
	WindowExpiresAt time.Time `json:"window_expires_at" gorm:"not null"`
}

func (RateLimitRecord) TableName() string {
	return "rate_limits"
}

// DatabaseStore persists attempt counts so limits survive restarts and are
// shared across instances.
type DatabaseStore struct {
	db *gorm.DB
}

func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) IsLimited(ip, action string, maxAttempts int) (bool, error) {
	var record RateLimitRecord
	err := s.db.Where("ip_address = ? AND action_type = ?", ip, action).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read rate limit record: %w", err)
	}

	// lazy reset once the window has elapsed
	if time.Now().After(record.WindowExpiresAt) {
		if err := s.db.Delete(&record).Error; err != nil {
			return false, fmt.Errorf("failed to clear expired rate limit record: %w", err)
		}
		return false, nil
	}

	return record.AttemptCount >= maxAttempts, nil
}

func (s *DatabaseStore) RecordAttempt(ip, action string, window time.Duration) error {
	now := time.Now()

	var record RateLimitRecord
	err := s.db.Where("ip_address = ? AND action_type = ?", ip, action).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			record = RateLimitRecord{
				IPAddress:       ip,
				ActionType:      action,
				AttemptCount:    1,
				WindowExpiresAt: now.Add(window),
			}
			if err := s.db.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to create rate limit record: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to read rate limit record: %w", err)
	}

	count := record.AttemptCount + 1
	if now.After(record.WindowExpiresAt) {
		count = 1
	}

	err = s.db.Model(&record).Updates(map[string]any{
		"attempt_count":     count,
		"window_expires_at": now.Add(window),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update rate limit record: %w", err)
	}
	return nil
}

func (s *DatabaseStore) ClearAttempts(ip, action string) error {
	err := s.db.Where("ip_address = ? AND action_type = ?", ip, action).Delete(&RateLimitRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear rate limit record: %w", err)
	}
	return nil
}
