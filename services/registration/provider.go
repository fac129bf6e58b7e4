package registration

import (
	"github.com/pulsefit/gymhub/config"
	"github.com/pulsefit/gymhub/services/auth"
	"github.com/pulsefit/gymhub/services/logging"
	"github.com/pulsefit/gymhub/services/mail"
	"github.com/pulsefit/gymhub/services/user"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideRegistrationStore(db *gorm.DB) Store {
	return NewStore(db)
}

func ProvideRegistrationService(cfg *config.Config, pending Store, users user.Store, authSvc *auth.Service, mailSvc *mail.Service, logger *logging.Service) *Service {
	return NewService(cfg, pending, users, authSvc, mailSvc, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideRegistrationStore),
	fx.Provide(ProvideRegistrationService),
)
