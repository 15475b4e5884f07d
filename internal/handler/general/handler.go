package general

import (
	"fmt"
	"log/slog"

	"seventvbot/internal/config"
	"seventvbot/internal/domain"
)

type Handler struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Handler {
	return &Handler{
		cfg: cfg,
	}
}

func (h *Handler) StartResponse(cmd domain.Command) {
	message := "Hi! I replace messages that are exactly a 7TV emote name with the emote itself.\n" +
		"Browse https://7tv.app/emotes for names. " + h.usage()

	h.MessageResponse(cmd, message)
}

func (h *Handler) HelpResponse(cmd domain.Command) {
	h.MessageResponse(cmd, h.usage())
}

func (h *Handler) MessageResponse(cmd domain.Command, message string) {
	if cmd.Reply == nil {
		return
	}

	err := cmd.Reply(message)
	if err != nil {
		slog.Error("GeneralHandler.MessageResponse", slog.String("guildID", cmd.GuildID), slog.Any("err", err))
	}
}

func (h *Handler) usage() string {
	if h.cfg.Platform == config.PlatformTelegram {
		return "Admins add emotes with one of:\n" +
			"/addemote id=<id>[, <id>...]\n" +
			"/addemote name=<name>[, <name>...]\n" +
			"/addemote channel_id=<twitch id>[, <twitch id>...]"
	}

	return fmt.Sprintf(
		"Admins add emotes with /addemote and exactly one of the options %s, %s or %s (comma-separated).",
		"id", "name", "channel_id",
	)
}
