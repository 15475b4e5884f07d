package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"

	"seventvbot/internal/domain"
)

const eventBuffer = 100

var addEmoteCommand = &discordgo.ApplicationCommand{
	Name:        "addemote",
	Description: "Add an emote to the bot by name, id or channel id",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "id",
			Description: "Comma-separated emote ids",
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "name",
			Description: "Comma-separated emote names",
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "channel_id",
			Description: "Comma-separated Twitch channel ids to import",
		},
	},
}

type API struct {
	session *discordgo.Session
	guildID string
	events  chan domain.Event
}

func New(debug bool, token, guildID string) (*API, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, errors.Wrap(err, "DiscordAPI.New")
	}

	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	if debug {
		s.LogLevel = discordgo.LogDebug
	}

	return &API{
		session: s,
		guildID: guildID,
		events:  make(chan domain.Event, eventBuffer),
	}, nil
}

func (a *API) SendMessage(ctx context.Context, channelID, message string) error {
	_, err := a.session.ChannelMessageSend(channelID, message, discordgo.WithContext(ctx))

	return errors.Wrap(err, "DiscordAPI.SendMessage")
}

func (a *API) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	err := a.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))

	return errors.Wrap(err, "DiscordAPI.DeleteMessage")
}

// Events opens the gateway session; messages and slash commands are
// delivered on the returned channel.
func (a *API) Events() (<-chan domain.Event, error) {
	a.session.AddHandler(a.onReady)
	a.session.AddHandler(a.onMessage)
	a.session.AddHandler(a.onInteraction)

	err := a.session.Open()
	if err != nil {
		return nil, errors.Wrap(err, "DiscordAPI.Events")
	}

	return a.events, nil
}

func (a *API) Shutdown() {
	slog.Info("Stopping bot...")

	_ = a.session.Close()
}

func (a *API) onReady(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("Connected", slog.String("user", r.User.Username))

	_, err := s.ApplicationCommandCreate(r.User.ID, a.guildID, addEmoteCommand)
	if err != nil {
		slog.Error(
			"DiscordAPI.onReady",
			slog.String("guildID", a.guildID),
			slog.Any("err", err),
		)
	}
}

func (a *API) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}

	msg := ToMessage(m.Message)
	a.events <- domain.Event{Message: &msg}
}

func (a *API) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	// Resolving may outlive the 3s interaction deadline, so acknowledge first.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		slog.Error("DiscordAPI.onInteraction", slog.String("interactionID", i.ID), slog.Any("err", err))

		return
	}

	data := i.ApplicationCommandData()
	opts := make(map[string]string, len(data.Options))
	for _, o := range data.Options {
		opts[o.Name] = o.StringValue()
	}

	a.events <- domain.Event{Command: &domain.Command{
		Name:    data.Name,
		GuildID: i.GuildID,
		Options: opts,
		Reply: func(text string) error {
			_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &text})

			return errors.Wrap(err, "DiscordAPI.Reply")
		},
	}}
}
