package testutils

import (
	"time"

	"github.com/pulsefit/gymhub/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "PulseFit Test",
			URL:  "http://localhost:8080",
		},
		Auth: config.AuthConfig{
			MinLength:                8,
			RequireUpper:             true,
			RequireLower:             true,
			RequireNumber:            true,
			RequireSpecial:           true,
			BcryptCost:               bcrypt.MinCost,
			PasswordResetTokenLength: 32,
			PasswordResetExpiry:      time.Hour,
			RememberMeEnabled:        true,
			RememberMeTokenLength:    32,
			RememberMeExpiry:         30 * 24 * time.Hour,
			RememberMeCookieSecure:   false,
			RememberMeCookieSameSite: "lax",
		},
		Registration: config.RegistrationConfig{
			OTPLength:      6,
			OTPExpiry:      15 * time.Minute,
			MaxAttempts:    5,
			ResendCooldown: 2 * time.Minute,
		},
		RateLimit: config.RateLimitConfig{
			Store:    "memory",
			FailOpen: true,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
	}
}

var TestPasswords = struct {
	Valid     string
	TooShort  string
	NoUpper   string
	NoNumber  string
	NoSpecial string
}{
	Valid:     "Abcdef1!",
	TooShort:  "abc",
	NoUpper:   "abcdef1!",
	NoNumber:  "Abcdefg!",
	NoSpecial: "Abcdef12",
}
