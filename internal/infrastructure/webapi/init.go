package webapi

import (
	"context"

	"github.com/pkg/errors"

	"seventvbot/internal/config"
	"seventvbot/internal/domain"
	"seventvbot/internal/infrastructure/webapi/discord"
	"seventvbot/internal/infrastructure/webapi/seventv"
	"seventvbot/internal/infrastructure/webapi/tgbot"
)

// ChatAPI is the chat platform the bot is connected to.
type ChatAPI interface {
	SendMessage(ctx context.Context, channelID, message string) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	Events() (<-chan domain.Event, error)
	Shutdown()
}

type WebAPIs struct {
	Bot     ChatAPI
	SevenTV *seventv.API
}

func New(cfg *config.Config) (*WebAPIs, error) {
	const errMsg = "WebAPIs.New"

	var (
		bot ChatAPI
		err error
	)

	switch cfg.Platform {
	case config.PlatformTelegram:
		bot, err = tgbot.New(cfg.Debug, cfg.BotApiKey)
	default:
		bot, err = discord.New(cfg.Debug, cfg.BotApiKey, cfg.GuildID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	return &WebAPIs{
		Bot:     bot,
		SevenTV: seventv.New(cfg.Provider.URL, cfg.Provider.Timeout),
	}, nil
}
