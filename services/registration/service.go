package registration

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"time"

	"github.com/pulsefit/gymhub/config"
	"github.com/pulsefit/gymhub/services/auth"
	"github.com/pulsefit/gymhub/services/logging"
	"github.com/pulsefit/gymhub/services/user"
	"go.uber.org/zap"
)

type MailService interface {
	SendTemplate(templateName string, to []string, subject string, data map[string]any) error
}

// Service drives the registration state machine: a submitted form becomes a
// pending registration, an emailed OTP proves address ownership, and a
// successful verification materializes the account.
type Service struct {
	config      *config.Config
	pending     Store
	users       user.Store
	authService *auth.Service
	mailService MailService
	logger      *logging.Service
}

type SubmitInput struct {
	Name              string
	Email             string
	Password          string
	ConfirmPassword   string
	Role              user.Role
	ExperienceLevel   string
	FitnessGoals      string
	PreferredRoutines string
}

func NewService(cfg *config.Config, pending Store, users user.Store, authService *auth.Service, mailService MailService, logger *logging.Service) *Service {
	return &Service{
		config:      cfg,
		pending:     pending,
		users:       users,
		authService: authService,
		mailService: mailService,
		logger:      logger,
	}
}

func (s *Service) validate(in SubmitInput) error {
	var violations []string

	if in.Name == "" {
		violations = append(violations, "name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		violations = append(violations, "a valid email address is required")
	}
	if err := s.authService.ValidatePassword(in.Password); err != nil {
		violations = append(violations, err.Error())
	}
	if in.Password != in.ConfirmPassword {
		violations = append(violations, "passwords do not match")
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// Submit stages a registration and emails the OTP. Any prior pending
// registration for the email is replaced, keeping at most one live row.
func (s *Service) Submit(in SubmitInput) (*PendingRegistration, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	taken, err := s.users.EmailExists(in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		if s.logger != nil {
			s.logger.Info("registration rejected: email already registered", zap.String("email", in.Email))
		}
		return nil, ErrEmailTaken
	}

	if err := s.pending.DeleteByEmail(in.Email); err != nil {
		return nil, err
	}

	passwordHash, err := s.authService.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	otp, err := s.generateOTP()
	if err != nil {
		return nil, err
	}

	p := &PendingRegistration{
		Email:             in.Email,
		Name:              in.Name,
		PasswordHash:      passwordHash,
		Role:              in.Role,
		OTPCode:           otp,
		OTPExpiresAt:      time.Now().Add(s.config.Registration.OTPExpiry),
		ExperienceLevel:   in.ExperienceLevel,
		FitnessGoals:      in.FitnessGoals,
		PreferredRoutines: in.PreferredRoutines,
	}

	if err := s.pending.Create(p); err != nil {
		return nil, err
	}

	if err := s.sendOTPEmail(p); err != nil {
		// remove the staged row so a failed send cannot silently succeed later
		_ = s.pending.Delete(p.ID)
		if s.logger != nil {
			s.logger.Error("failed to send registration OTP", zap.Error(err), zap.String("email", in.Email))
		}
		return nil, &NotificationError{Err: err}
	}

	if s.logger != nil {
		s.logger.Info("registration submitted, OTP sent",
			zap.String("email", in.Email),
			zap.String("role", string(in.Role)),
			zap.Time("otp_expires_at", p.OTPExpiresAt))
	}
	return p, nil
}

// VerifyOTP checks a submitted code against the staged registration. The
// attempt counter is incremented before the comparison, so the deciding
// attempt counts even when its code is correct.
func (s *Service) VerifyOTP(email, submittedCode string) (*user.User, error) {
	p, err := s.pending.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrPendingNotFound) {
			return nil, ErrExpiredOrMissing
		}
		return nil, err
	}

	if time.Now().After(p.OTPExpiresAt) {
		_ = s.pending.Delete(p.ID)
		return nil, ErrExpiredOrMissing
	}

	if err := s.pending.IncrementAttempts(p.ID); err != nil {
		return nil, err
	}
	attempts := p.Attempts + 1

	if attempts >= s.config.Registration.MaxAttempts {
		if err := s.pending.Delete(p.ID); err != nil {
			return nil, err
		}
		if s.logger != nil {
			s.logger.Warn("registration locked after too many OTP attempts",
				zap.String("email", email),
				zap.Int("attempts", attempts))
		}
		return nil, ErrTooManyAttempts
	}

	if submittedCode != p.OTPCode {
		remaining := s.config.Registration.MaxAttempts - attempts
		if s.logger != nil {
			s.logger.Info("incorrect OTP submitted",
				zap.String("email", email),
				zap.Int("remaining", remaining))
		}
		return nil, &InvalidCodeError{Remaining: remaining}
	}

	return s.activate(p)
}

// activate materializes the account. User creation is the commit point;
// profile-row creation afterwards is best effort and only logged on failure.
func (s *Service) activate(p *PendingRegistration) (*user.User, error) {
	now := time.Now()
	u := &user.User{
		Name:            p.Name,
		Email:           p.Email,
		PasswordHash:    p.PasswordHash,
		Role:            p.Role,
		Status:          user.InitialStatus(p.Role),
		EmailVerifiedAt: &now,
	}

	if err := s.users.Create(u); err != nil {
		return nil, err
	}

	if p.Role == user.RoleMember {
		profile := &user.MemberProfile{
			UserID:            u.ID,
			ExperienceLevel:   p.ExperienceLevel,
			FitnessGoals:      p.FitnessGoals,
			PreferredRoutines: p.PreferredRoutines,
		}
		if err := s.users.CreateMemberProfile(profile); err != nil && s.logger != nil {
			s.logger.Error("failed to create member profile", zap.Error(err), zap.Uint("user_id", u.ID))
		}
	}

	if err := s.pending.Delete(p.ID); err != nil && s.logger != nil {
		s.logger.Error("failed to remove pending registration after activation",
			zap.Error(err), zap.String("email", p.Email))
	}

	if s.logger != nil {
		s.logger.Info("account activated",
			zap.String("email", u.Email),
			zap.String("role", string(u.Role)),
			zap.String("status", string(u.Status)))
	}
	return u, nil
}

// Resend issues a replacement OTP unless the current one was created within
// the cooldown window.
func (s *Service) Resend(email string) error {
	p, err := s.pending.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrPendingNotFound) {
			return ErrExpiredOrMissing
		}
		return err
	}

	cooldown := s.config.Registration.ResendCooldown
	if since := time.Since(p.CreatedAt); since < cooldown {
		return &CooldownError{RetryAfter: (cooldown - since).Round(time.Second).String()}
	}

	otp, err := s.generateOTP()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.config.Registration.OTPExpiry)
	if err := s.pending.Refresh(p.ID, otp, expiresAt); err != nil {
		return err
	}

	p.OTPCode = otp
	p.OTPExpiresAt = expiresAt
	if err := s.sendOTPEmail(p); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to resend registration OTP", zap.Error(err), zap.String("email", email))
		}
		return &NotificationError{Err: err}
	}

	if s.logger != nil {
		s.logger.Info("registration OTP resent", zap.String("email", email))
	}
	return nil
}

// CleanupExpired removes pending registrations whose OTP has lapsed.
func (s *Service) CleanupExpired() error {
	return s.pending.DeleteExpired(time.Now())
}

func (s *Service) generateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < s.config.Registration.OTPLength; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	return fmt.Sprintf("%0*d", s.config.Registration.OTPLength, n), nil
}

func (s *Service) sendOTPEmail(p *PendingRegistration) error {
	if s.mailService == nil {
		return fmt.Errorf("mail service is not configured")
	}

	data := map[string]any{
		"Name":           p.Name,
		"OTPCode":        p.OTPCode,
		"ExpiryDuration": s.config.Registration.OTPExpiry.String(),
		"AppName":        s.config.App.Name,
	}

	subject := fmt.Sprintf("%s verification code: %s", s.config.App.Name, p.OTPCode)
	return s.mailService.SendTemplate("registration_otp", []string{p.Email}, subject, data)
}
