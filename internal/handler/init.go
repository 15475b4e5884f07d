package handler

import (
	"seventvbot/internal/config"
	"seventvbot/internal/handler/command"
	"seventvbot/internal/handler/general"
	"seventvbot/internal/handler/triage"
	"seventvbot/internal/infrastructure/webapi"
	"seventvbot/internal/service"
)

type Handlers struct {
	Triage  *triage.Handler
	Command *command.Handler
	General *general.Handler
}

func New(cfg *config.Config, apis *webapi.WebAPIs, services *service.Services) *Handlers {
	return &Handlers{
		Triage: triage.New(apis.Bot, services.Registry, triage.Options{
			CDNHost:         cfg.Provider.CDNHost,
			TransformChance: cfg.Triage.TransformChance,
			LinkDelay:       cfg.Triage.LinkDelay,
		}),
		Command: command.New(services.Resolver, services.Store, services.Registry),
		General: general.New(cfg),
	}
}
