package tgbot

import (
	"context"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"seventvbot/internal/domain"
)

const eventBuffer = 100

type API struct {
	bot *tgbotapi.BotAPI
}

func New(debug bool, apiKey string) (*API, error) {
	bot, err := tgbotapi.NewBotAPI(apiKey)
	if err != nil {
		return nil, errors.Wrap(err, "BotAPI.New")
	}

	bot.Debug = debug

	return &API{
		bot: bot,
	}, nil
}

func (b *API) SendMessage(ctx context.Context, channelID, message string) error {
	const errMsg = "BotAPI.SendMessage"

	chatID, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return errors.Wrap(err, errMsg)
	}

	if err = ctx.Err(); err != nil {
		return errors.Wrap(err, errMsg)
	}

	_, err = b.bot.Send(tgbotapi.NewMessage(chatID, message))

	return errors.Wrap(err, errMsg)
}

func (b *API) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	const errMsg = "BotAPI.DeleteMessage"

	chatID, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return errors.Wrap(err, errMsg)
	}

	msgID, err := strconv.Atoi(messageID)
	if err != nil {
		return errors.Wrap(err, errMsg)
	}

	if err = ctx.Err(); err != nil {
		return errors.Wrap(err, errMsg)
	}

	_, err = b.bot.Request(tgbotapi.NewDeleteMessage(chatID, msgID))

	return errors.Wrap(err, errMsg)
}

// Events starts long polling and converts updates into platform-neutral events.
func (b *API) Events() (<-chan domain.Event, error) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	events := make(chan domain.Event, eventBuffer)

	go func() {
		defer close(events)

		for update := range updates {
			if ev, ok := b.toEvent(update); ok {
				events <- ev
			}
		}
	}()

	return events, nil
}

func (b *API) Shutdown() {
	slog.Info("Stopping bot...")

	b.bot.StopReceivingUpdates()
}

func (b *API) toEvent(update tgbotapi.Update) (domain.Event, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return domain.Event{}, false
	}

	if msg.IsCommand() {
		chatID := msg.Chat.ID
		replyTo := msg.MessageID

		return domain.Event{Command: &domain.Command{
			Name:    msg.Command(),
			GuildID: strconv.FormatInt(chatID, 10),
			Options: ParseOptions(msg.CommandArguments()),
			Reply: func(text string) error {
				reply := tgbotapi.NewMessage(chatID, text)
				reply.ReplyToMessageID = replyTo
				_, err := b.bot.Send(reply)

				return errors.Wrap(err, "BotAPI.Reply")
			},
		}}, true
	}

	if b.bot.Self.ID != 0 && msg.From != nil && msg.From.ID == b.bot.Self.ID {
		return domain.Event{}, false
	}

	m := ToMessage(msg)

	return domain.Event{Message: &m}, true
}
