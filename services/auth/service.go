package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/pulsefit/gymhub/config"
	"github.com/pulsefit/gymhub/services/logging"
	"github.com/pulsefit/gymhub/services/user"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrPasswordHashingFailed  = errors.New("failed to hash password")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountPendingApproval = errors.New("account is awaiting admin approval")
	ErrResetTokenNotFound     = errors.New("invalid password reset token")
	ErrResetTokenExpired      = errors.New("password reset token has expired")
	ErrPasswordMismatch       = errors.New("passwords do not match")
	ErrRememberMeDisabled     = errors.New("remember me functionality is disabled")
	ErrRememberTokenInvalid   = errors.New("invalid or expired remember token")
	ErrRememberTokenExpired   = errors.New("remember token has expired")
)

var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// PasswordPolicyError reports why a candidate password fails the policy. It
// is safe to show to the user, unlike wrapped infrastructure errors.
type PasswordPolicyError struct {
	Reason string
}

func (e *PasswordPolicyError) Error() string {
	return e.Reason
}

type MailService interface {
	SendTemplate(templateName string, to []string, subject string, data map[string]any) error
}

type Service struct {
	config      *config.Config
	db          *gorm.DB
	users       user.Store
	mailService MailService
	logger      *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, users user.Store, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config: cfg,
		db:     db,
		users:  users,
		logger: logger,
	}
}

func (s *Service) SetMailService(mailService MailService) {
	s.mailService = mailService
}

func (s *Service) ValidatePassword(password string) error {
	if len(password) < s.config.Auth.MinLength {
		if s.logger != nil {
			s.logger.Warn("password validation failed: insufficient length",
				zap.Int("length", len(password)),
				zap.Int("min_required", s.config.Auth.MinLength))
		}
		return &PasswordPolicyError{Reason: fmt.Sprintf("password must be at least %d characters", s.config.Auth.MinLength)}
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	var missing []string

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if s.config.Auth.RequireUpper && !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if s.config.Auth.RequireLower && !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if s.config.Auth.RequireNumber && !hasNumber {
		missing = append(missing, "one number")
	}
	if s.config.Auth.RequireSpecial && !hasSpecial {
		missing = append(missing, "one special character")
	}

	if len(missing) > 0 {
		if s.logger != nil {
			s.logger.Warn("password validation failed: missing requirements",
				zap.Strings("missing_requirements", missing))
		}
		return &PasswordPolicyError{Reason: "password must contain at least " + strings.Join(missing, ", ")}
	}

	return nil
}

func (s *Service) HashPassword(password string) (string, error) {
	if err := s.ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("password hashing failed", zap.Error(err))
		}
		return "", ErrPasswordHashingFailed
	}

	return string(hash), nil
}

func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		if s.logger != nil {
			s.logger.Warn("password verification failed")
		}
		return ErrInvalidCredentials
	}
	return nil
}

// Authenticate resolves login credentials to an account. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(email, password string) (*user.User, error) {
	u, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// keep login timing comparable for unknown emails
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, err
	}

	if u.Status == user.StatusPendingAdminApproval {
		if s.logger != nil {
			s.logger.Info("login blocked: account pending approval", zap.String("email", email))
		}
		return nil, ErrAccountPendingApproval
	}

	return u, nil
}

func (s *Service) generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// CreatePasswordResetToken issues a fresh token for the user, replacing any
// previously issued tokens so at most one is live per account.
func (s *Service) CreatePasswordResetToken(u *user.User) (*PasswordResetToken, error) {
	result := s.db.Where("user_id = ?", u.ID).Delete(&PasswordResetToken{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove previous reset tokens: %w", result.Error)
	}
	if s.logger != nil && result.RowsAffected > 0 {
		s.logger.Debug("removed previous password reset tokens",
			zap.Uint("user_id", u.ID),
			zap.Int64("tokens_removed", result.RowsAffected))
	}

	token, err := s.generateToken(s.config.Auth.PasswordResetTokenLength)
	if err != nil {
		return nil, err
	}

	resetToken := &PasswordResetToken{
		UserID:    u.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.config.Auth.PasswordResetExpiry),
	}

	if err := s.db.Create(resetToken).Error; err != nil {
		return nil, fmt.Errorf("failed to create password reset token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("password reset token created",
			zap.Uint("user_id", u.ID),
			zap.Time("expires_at", resetToken.ExpiresAt))
	}
	return resetToken, nil
}

// RequestPasswordReset issues and mails a reset link when the email matches a
// known account. Unknown emails return nil so callers can respond identically
// either way.
func (s *Service) RequestPasswordReset(email string) error {
	u, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			if s.logger != nil {
				s.logger.Debug("password reset requested for unknown email")
			}
			return nil
		}
		return err
	}

	resetToken, err := s.CreatePasswordResetToken(u)
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.config.App.URL, resetToken.Token)

	if err := s.SendPasswordResetEmail(u.Email, resetURL, s.config.Auth.PasswordResetExpiry); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to send password reset email", zap.Error(err), zap.String("email", email))
		}
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("password reset email sent", zap.String("email", email))
	}
	return nil
}

func (s *Service) findResetToken(token string) (*PasswordResetToken, error) {
	var resetToken PasswordResetToken
	if err := s.db.Where("token = ?", token).First(&resetToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.logger != nil {
				s.logger.Warn("invalid password reset token attempted")
			}
			return nil, ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("failed to look up password reset token: %w", err)
	}

	if time.Now().After(resetToken.ExpiresAt) {
		if s.logger != nil {
			s.logger.Warn("expired password reset token attempted",
				zap.Uint("user_id", resetToken.UserID),
				zap.Time("expired_at", resetToken.ExpiresAt))
		}
		_ = s.db.Delete(&resetToken).Error
		return nil, ErrResetTokenExpired
	}

	return &resetToken, nil
}

// ResetPassword consumes a reset token and stores the new password. Tokens
// are single use: the row is deleted once the password has been updated.
func (s *Service) ResetPassword(token, newPassword, confirmPassword string) error {
	resetToken, err := s.findResetToken(token)
	if err != nil {
		return err
	}

	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePasswordHash(resetToken.UserID, hashedPassword); err != nil {
		return err
	}

	if err := s.db.Delete(resetToken).Error; err != nil {
		return fmt.Errorf("failed to consume password reset token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("password reset completed", zap.Uint("user_id", resetToken.UserID))
	}

	if u, err := s.users.FindByID(resetToken.UserID); err == nil {
		if err := s.SendPasswordResetSuccessEmail(u.Email); err != nil && s.logger != nil {
			s.logger.Error("failed to send password reset confirmation email", zap.Error(err))
		}
	}

	return nil
}

func (s *Service) CleanupExpiredResetTokens() error {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&PasswordResetToken{})
	if result.Error != nil {
		return fmt.Errorf("failed to cleanup expired password reset tokens: %w", result.Error)
	}
	if s.logger != nil && result.RowsAffected > 0 {
		s.logger.Info("expired password reset tokens cleaned up", zap.Int64("tokens_removed", result.RowsAffected))
	}
	return nil
}

func (s *Service) SendPasswordResetEmail(email, resetURL string, expiryDuration time.Duration) error {
	if s.mailService == nil {
		return fmt.Errorf("mail service is not configured")
	}

	data := map[string]any{
		"Email":          email,
		"ResetURL":       resetURL,
		"ExpiryDuration": expiryDuration.String(),
		"AppName":        s.config.App.Name,
	}

	return s.mailService.SendTemplate("password_reset", []string{email}, "Password Reset Request", data)
}

func (s *Service) SendPasswordResetSuccessEmail(email string) error {
	if s.mailService == nil {
		return fmt.Errorf("mail service is not configured")
	}

	data := map[string]any{
		"Email":   email,
		"AppName": s.config.App.Name,
	}

	return s.mailService.SendTemplate("password_reset_success", []string{email}, "Password Reset Successful", data)
}
