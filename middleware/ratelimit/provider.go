package ratelimit

import (
	"github.com/pulsefit/gymhub/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideRateLimitStore(cfg *config.Config, db *gorm.DB) Store {
	switch cfg.RateLimit.Store {
	case "database":
		return NewDatabaseStore(db)
	case "memory":
		fallthrough
	default:
		return NewMemoryStore()
	}
}

var Module = fx.Options(
	fx.Provide(ProvideRateLimitStore),
)
