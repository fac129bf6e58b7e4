package auth

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (s *Service) IsRememberMeEnabled() bool {
	return s.config.Auth.RememberMeEnabled
}

// CreateRememberToken replaces any existing tokens for the user with a fresh
// one, so a stolen old cookie cannot be replayed after a new login.
func (s *Service) CreateRememberToken(userID uint) (*RememberToken, error) {
	if !s.config.Auth.RememberMeEnabled {
		return nil, ErrRememberMeDisabled
	}

	result := s.db.Where("user_id = ?", userID).Delete(&RememberToken{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove previous remember tokens: %w", result.Error)
	}

	token, err := s.generateToken(s.config.Auth.RememberMeTokenLength)
	if err != nil {
		return nil, err
	}

	rememberToken := &RememberToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.config.Auth.RememberMeExpiry),
	}

	if err := s.db.Create(rememberToken).Error; err != nil {
		return nil, fmt.Errorf("failed to create remember token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("remember token created",
			zap.Uint("user_id", userID),
			zap.Time("expires_at", rememberToken.ExpiresAt))
	}
	return rememberToken, nil
}

func (s *Service) ValidateRememberToken(token string) (*RememberToken, error) {
	if !s.config.Auth.RememberMeEnabled {
		return nil, ErrRememberMeDisabled
	}

	var rememberToken RememberToken
	if err := s.db.Where("token = ?", token).First(&rememberToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.logger != nil {
				s.logger.Warn("invalid remember token attempted")
			}
			return nil, ErrRememberTokenInvalid
		}
		return nil, fmt.Errorf("failed to validate remember token: %w", err)
	}

	if time.Now().After(rememberToken.ExpiresAt) {
		if s.logger != nil {
			s.logger.Warn("expired remember token attempted",
				zap.Uint("user_id", rememberToken.UserID),
				zap.Time("expired_at", rememberToken.ExpiresAt))
		}
		return nil, ErrRememberTokenExpired
	}

	return &rememberToken, nil
}

// RotateRememberToken refreshes a token on use: the old row is replaced by a
// newly expiring one for the same user.
func (s *Service) RotateRememberToken(oldToken string) (*RememberToken, error) {
	rememberToken, err := s.ValidateRememberToken(oldToken)
	if err != nil {
		return nil, err
	}

	return s.CreateRememberToken(rememberToken.UserID)
}

func (s *Service) InvalidateRememberTokens(userID uint) error {
	if !s.config.Auth.RememberMeEnabled {
		return ErrRememberMeDisabled
	}

	result := s.db.Where("user_id = ?", userID).Delete(&RememberToken{})
	if result.Error != nil {
		return fmt.Errorf("failed to invalidate remember tokens: %w", result.Error)
	}
	return nil
}

func (s *Service) CleanupExpiredRememberTokens() error {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&RememberToken{})
	if result.Error != nil {
		return fmt.Errorf("failed to cleanup expired remember tokens: %w", result.Error)
	}
	if s.logger != nil && result.RowsAffected > 0 {
		s.logger.Info("expired remember tokens cleaned up", zap.Int64("tokens_removed", result.RowsAffected))
	}
	return nil
}

func (s *Service) RememberMeExpiry() time.Duration {
	return s.config.Auth.RememberMeExpiry
}

func (s *Service) RememberMeCookieSecure() bool {
	return s.config.Auth.RememberMeCookieSecure
}

func (s *Service) RememberMeCookieSameSite() string {
	return s.config.Auth.RememberMeCookieSameSite
}
