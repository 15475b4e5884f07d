package service

import (
	"github.com/pkg/errors"

	"seventvbot/internal/config"
	"seventvbot/internal/infrastructure/storage"
	"seventvbot/internal/infrastructure/webapi"
	"seventvbot/internal/service/emote"
	"seventvbot/internal/service/registry"
)

type Services struct {
	Resolver *emote.Resolver
	Registry *registry.Registry
	Store    *storage.Store
}

func New(cfg *config.Config, apis *webapi.WebAPIs) (*Services, error) {
	store, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "Services.New")
	}

	return &Services{
		Resolver: emote.NewResolver(apis.SevenTV, emote.Options{
			TopPages:        cfg.Provider.TopPages,
			PagesPerRequest: cfg.Provider.PagesPerRequest,
			PageLimit:       cfg.Provider.PageLimit,
		}),
		Registry: registry.New(),
		Store:    store,
	}, nil
}
