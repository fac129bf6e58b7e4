package auth

import (
	"github.com/pulsefit/gymhub/config"
	"github.com/pulsefit/gymhub/services/logging"
	"github.com/pulsefit/gymhub/services/mail"
	"github.com/pulsefit/gymhub/services/user"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideAuthService(cfg *config.Config, db *gorm.DB, users user.Store, logger *logging.Service, mailSvc *mail.Service) *Service {
	svc := NewService(cfg, db, users, logger)
	if mailSvc != nil {
		svc.SetMailService(mailSvc)
	}
	return svc
}

var Module = fx.Options(
	fx.Provide(ProvideAuthService),
)
