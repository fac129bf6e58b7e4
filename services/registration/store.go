package registration

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrPendingNotFound = errors.New("pending registration not found")

// Store is the credential-store contract for staged registrations. All
// implementations must use parameterized queries only.
type Store interface {
	FindByEmail(email string) (*PendingRegistration, error)
	Create(p *PendingRegistration) error
	DeleteByEmail(email string) error
	Delete(id uint) error
	IncrementAttempts(id uint) error
	Refresh(id uint, otpCode string, expiresAt time.Time) error
	DeleteExpired(now time.Time) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) FindByEmail(email string) (*PendingRegistration, error) {
	var p PendingRegistration
	if err := s.db.Where("email = ?", email).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("failed to find pending registration: %w", err)
	}
	return &p, nil
}

func (s *gormStore) Create(p *PendingRegistration) error {
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("failed to create pending registration: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteByEmail(email string) error {
	if err := s.db.Where("email = ?", email).Unscoped().Delete(&PendingRegistration{}).Error; err != nil {
		return fmt.Errorf("failed to delete pending registration: %w", err)
	}
	return nil
}

func (s *gormStore) Delete(id uint) error {
	if err := s.db.Unscoped().Delete(&PendingRegistration{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete pending registration: %w", err)
	}
	return nil
}

func (s *gormStore) IncrementAttempts(id uint) error {
	err := s.db.Model(&PendingRegistration{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to increment verification attempts: %w", err)
	}
	return nil
}

// Refresh replaces the OTP for a resend: new code, new expiry, attempt
// counter back to zero, creation time moved forward for cooldown accounting.
func (s *gormStore) Refresh(id uint, otpCode string, expiresAt time.Time) error {
	err := s.db.Model(&PendingRegistration{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"otp_code":       otpCode,
			"otp_expires_at": expiresAt,
			"attempts":       0,
			"created_at":     time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to refresh pending registration: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteExpired(now time.Time) error {
	if err := s.db.Where("otp_expires_at < ?", now).Unscoped().Delete(&PendingRegistration{}).Error; err != nil {
		return fmt.Errorf("failed to delete expired pending registrations: %w", err)
	}
	return nil
}
