package app

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"seventvbot/internal/config"
	"seventvbot/internal/handler"
	"seventvbot/internal/infrastructure/webapi"
	"seventvbot/internal/metrics"
	"seventvbot/internal/server"
	"seventvbot/internal/service"
)

type App struct {
	cfg      *config.Config
	services *service.Services
	server   *server.Server
}

func New(cfg *config.Config) (*App, error) {
	const errMsg = "App.New"

	webAPI, err := webapi.New(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	services, err := service.New(cfg, webAPI)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	handlers := handler.New(cfg, webAPI, services)

	s := server.New(
		&server.InitParams{
			Config:  cfg,
			Api:     webAPI.Bot,
			Triage:  handlers.Triage,
			Command: handlers.Command,
			General: handlers.General,
		},
	)

	return &App{
		cfg:      cfg,
		services: services,
		server:   s,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.cfg.MetricsListen != "" {
		go metrics.Serve(ctx, a.cfg.MetricsListen)
	}

	a.seed(ctx)

	return a.server.Start(ctx)
}

// seed fills the registry before any event is served. A failed seed leaves
// the registry empty; emotes can still be added with the command.
func (a *App) seed(ctx context.Context) {
	n, err := a.services.Resolver.Seed(ctx, a.services.Store, a.services.Registry)
	if err != nil {
		slog.Error("App.seed", slog.Any("err", err))

		return
	}

	slog.Info(
		"App.seed",
		slog.Int("written", n),
		slog.Int("registrySize", a.services.Registry.Len()),
	)
}
