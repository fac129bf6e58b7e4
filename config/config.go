package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig          `envPrefix:"GYMHUB_APP_"`
	Server       ServerConfig       `envPrefix:"GYMHUB_SERVER_"`
	Log          LogConfig          `envPrefix:"GYMHUB_LOG_"`
	Database     DatabaseConfig     `envPrefix:"GYMHUB_DB_"`
	Session      SessionConfig      `envPrefix:"GYMHUB_SESSION_"`
	Mail         MailConfig         `envPrefix:"GYMHUB_MAIL_"`
	Auth         AuthConfig         `envPrefix:"GYMHUB_AUTH_"`
	Registration RegistrationConfig `envPrefix:"GYMHUB_REGISTRATION_"`
	RateLimit    RateLimitConfig    `envPrefix:"GYMHUB_RATELIMIT_"`
	CSRF         CSRFConfig         `envPrefix:"GYMHUB_CSRF_"`
	Templates    TemplatesConfig    `envPrefix:"GYMHUB_TEMPLATES_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"PulseFit"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"gymhub.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type SessionConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	Store    string        `env:"STORE" envDefault:"database"`
	Name     string        `env:"NAME" envDefault:"gymhub_session"`
	MaxAge   time.Duration `env:"MAX_AGE" envDefault:"24h"`
	Path     string        `env:"PATH" envDefault:"/"`
	Domain   string        `env:"DOMAIN" envDefault:""`
	Secure   bool          `env:"SECURE" envDefault:"false"`
	HttpOnly bool          `env:"HTTP_ONLY" envDefault:"true"`
	SameSite string        `env:"SAME_SITE" envDefault:"lax"`
}

type MailConfig struct {
	Host         string        `env:"HOST" envDefault:"localhost"`
	Port         int           `env:"PORT" envDefault:"587"`
	Username     string        `env:"USERNAME" envDefault:""`
	Password     string        `env:"PASSWORD" envDefault:""`
	Encryption   string        `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress  string        `env:"FROM_ADDRESS" envDefault:""`
	FromName     string        `env:"FROM_NAME" envDefault:""`
	TemplatesDir string        `env:"TEMPLATES_DIR" envDefault:"templates/mail"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

type AuthConfig struct {
	MinLength                int           `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	RequireUpper             bool          `env:"PASSWORD_REQUIRE_UPPER" envDefault:"true"`
	RequireLower             bool          `env:"PASSWORD_REQUIRE_LOWER" envDefault:"true"`
	RequireNumber            bool          `env:"PASSWORD_REQUIRE_NUMBER" envDefault:"true"`
	RequireSpecial           bool          `env:"PASSWORD_REQUIRE_SPECIAL" envDefault:"true"`
	BcryptCost               int           `env:"BCRYPT_COST" envDefault:"10"`
	PasswordResetTokenLength int           `env:"PASSWORD_RESET_TOKEN_LENGTH" envDefault:"32"`
	PasswordResetExpiry      time.Duration `env:"PASSWORD_RESET_EXPIRY" envDefault:"1h"`
	RememberMeEnabled        bool          `env:"REMEMBER_ME_ENABLED" envDefault:"true"`
	RememberMeTokenLength    int           `env:"REMEMBER_ME_TOKEN_LENGTH" envDefault:"32"`
	RememberMeExpiry         time.Duration `env:"REMEMBER_ME_EXPIRY" envDefault:"720h"`
	RememberMeCookieSecure   bool          `env:"REMEMBER_ME_COOKIE_SECURE" envDefault:"false"`
	RememberMeCookieSameSite string        `env:"REMEMBER_ME_COOKIE_SAME_SITE" envDefault:"lax"`
}

type RegistrationConfig struct {
	OTPLength      int           `env:"OTP_LENGTH" envDefault:"6"`
	OTPExpiry      time.Duration `env:"OTP_EXPIRY" envDefault:"15m"`
	MaxAttempts    int           `env:"MAX_ATTEMPTS" envDefault:"5"`
	ResendCooldown time.Duration `env:"RESEND_COOLDOWN" envDefault:"2m"`
}

type RateLimitConfig struct {
	Store    string `env:"STORE" envDefault:"database"`
	FailOpen bool   `env:"FAIL_OPEN" envDefault:"true"`
}

type CSRFConfig struct {
	Enabled        bool   `env:"ENABLED" envDefault:"true"`
	TokenLength    uint8  `env:"TOKEN_LENGTH" envDefault:"32"`
	TokenLookup    string `env:"TOKEN_LOOKUP" envDefault:"form:_csrf"`
	ContextKey     string `env:"CONTEXT_KEY" envDefault:"csrf"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"_gymhub_csrf"`
	CookieDomain   string `env:"COOKIE_DOMAIN" envDefault:""`
	CookiePath     string `env:"COOKIE_PATH" envDefault:"/"`
	CookieMaxAge   int    `env:"COOKIE_MAX_AGE" envDefault:"86400"`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	CookieHTTPOnly bool   `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite string `env:"COOKIE_SAME_SITE" envDefault:"lax"`
}

type TemplatesConfig struct {
	Dir         string `env:"DIR" envDefault:"templates/pages"`
	Extension   string `env:"EXTENSION" envDefault:".html"`
	Development bool   `env:"DEVELOPMENT" envDefault:"false"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
