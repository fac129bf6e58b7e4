package templates

import (
	"github.com/pulsefit/gymhub/config"
	"go.uber.org/fx"
)

func ProvideTemplatesService(cfg *config.Config) (*Service, error) {
	svc := New(&cfg.Templates)
	if err := svc.LoadTemplates(); err != nil {
		return nil, err
	}
	return svc, nil
}

var Module = fx.Options(
	fx.Provide(ProvideTemplatesService),
)
