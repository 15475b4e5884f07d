package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"seventvbot/internal/config"
	"seventvbot/internal/domain"
	"seventvbot/internal/handler/command"
	"seventvbot/internal/handler/triage"
)

type (
	botApi interface {
		Events() (<-chan domain.Event, error)
		Shutdown()
	}

	triageHandler interface {
		Handle(ctx context.Context, msg domain.Message) triage.Action
	}

	commandHandler interface {
		AddEmote(ctx context.Context, cmd domain.Command)
	}

	generalHandler interface {
		StartResponse(cmd domain.Command)
		HelpResponse(cmd domain.Command)
	}
)

type (
	InitParams struct {
		Config  *config.Config
		Api     botApi
		Triage  triageHandler
		Command commandHandler
		General generalHandler
	}
	Server struct {
		cfg     *config.Config
		api     botApi
		triage  triageHandler
		command commandHandler
		general generalHandler
	}
)

func New(p *InitParams) *Server {
	return &Server{
		cfg:     p.Config,
		api:     p.Api,
		triage:  p.Triage,
		command: p.Command,
		general: p.General,
	}
}

// Start dispatches platform events until ctx is done, SIGINT/SIGTERM arrives
// or the platform closes its event stream. In-flight events are drained
// before the platform connection is shut down.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := s.api.Events()
	if err != nil {
		return errors.Wrap(err, "Server.Start")
	}

	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		s.api.Shutdown()
		slog.Info("Server stopped")
	}()

	slog.Info("Server started", slog.String("platform", s.cfg.Platform))

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				s.handleEvent(ctx, ev)
			}()
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Server) handleEvent(ctx context.Context, ev domain.Event) {
	eventID := uuid.NewString()

	switch {
	case ev.Message != nil:
		action := s.triage.Handle(ctx, *ev.Message)

		slog.Debug(
			"Server.handleEvent",
			slog.String("eventID", eventID),
			slog.String("messageID", ev.Message.ID),
			slog.String("action", string(action)),
		)
	case ev.Command != nil:
		slog.Debug(
			"Server.handleEvent",
			slog.String("eventID", eventID),
			slog.String("command", ev.Command.Name),
			slog.String("guildID", ev.Command.GuildID),
		)

		switch ev.Command.Name {
		case command.Name:
			s.command.AddEmote(ctx, *ev.Command)
		case "start":
			s.general.StartResponse(*ev.Command)
		case "help":
			s.general.HelpResponse(*ev.Command)
		}
	}
}
