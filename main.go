package main

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pulsefit/gymhub/config"
	"github.com/pulsefit/gymhub/database"
	"github.com/pulsefit/gymhub/handlers"
	"github.com/pulsefit/gymhub/middleware/csrf"
	"github.com/pulsefit/gymhub/middleware/ratelimit"
	"github.com/pulsefit/gymhub/middleware/rememberme"
	"github.com/pulsefit/gymhub/server"
	"github.com/pulsefit/gymhub/services/auth"
	"github.com/pulsefit/gymhub/services/logging"
	"github.com/pulsefit/gymhub/services/mail"
	"github.com/pulsefit/gymhub/services/registration"
	"github.com/pulsefit/gymhub/services/templates"
	"github.com/pulsefit/gymhub/services/user"
	"github.com/pulsefit/gymhub/session"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.NewProvider(nil),
		logging.Module,
		fx.Supply(database.WithModels(
			&user.User{},
			&user.MemberProfile{},
			&registration.PendingRegistration{},
			&auth.PasswordResetToken{},
			&auth.RememberToken{},
			&ratelimit.RateLimitRecord{},
			&session.UserSession{},
		)),
		database.Module,
		fx.Provide(func() *session.Options { return nil }),
		session.Module,
		mail.Module,
		user.Module,
		auth.Module,
		registration.Module,
		ratelimit.Module,
		templates.Module,
		handlers.Module,
		server.NewProvider(),
		fx.Invoke(registerRoutes),
		fx.Invoke(startMaintenance),
	).Run()
}

// startMaintenance periodically sweeps expired pending registrations, reset
// tokens, remember tokens, and tracked sessions.
func startMaintenance(
	lc fx.Lifecycle,
	logger *logging.Service,
	reg *registration.Service,
	authSvc *auth.Service,
	sessionSvc session.SessionService,
) {
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ticker := time.NewTicker(15 * time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-done:
						return
					case <-ticker.C:
						if err := reg.CleanupExpired(); err != nil {
							logger.Errorf("pending registration cleanup failed: %v", err)
						}
						if err := authSvc.CleanupExpiredResetTokens(); err != nil {
							logger.Errorf("reset token cleanup failed: %v", err)
						}
						if err := authSvc.CleanupExpiredRememberTokens(); err != nil {
							logger.Errorf("remember token cleanup failed: %v", err)
						}
						if sessionSvc != nil {
							if err := sessionSvc.CleanupExpiredSessions(); err != nil {
								logger.Errorf("session cleanup failed: %v", err)
							}
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			close(done)
			return nil
		},
	})
}

func registerRoutes(
	srv *server.Server,
	cfg *config.Config,
	logger *logging.Service,
	manager *session.Manager,
	sessionSvc session.SessionService,
	templatesSvc *templates.Service,
	authSvc *auth.Service,
	users user.Store,
	h *handlers.Handlers,
) {
	srv.SetRenderer(templatesSvc.Renderer())

	srv.Use(logging.RequestLogger(logger))
	srv.Use(session.Middleware(manager))
	srv.Use(session.SessionServiceMiddleware(sessionSvc))
	srv.Use(csrf.Middleware(&cfg.CSRF))
	srv.Use(rememberme.Middleware(rememberme.Config{
		AuthService: authSvc,
		Users:       users,
		Logger:      logger,
	}))

	h.RegisterRoutes(srv.Echo())

	srv.Echo().GET("/healthz", func(c echo.Context) error {
		return c.NoContent(200)
	})
}
