package command

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"seventvbot/internal/domain"
	"seventvbot/internal/metrics"
)

const (
	Name = "addemote"

	OptionID        = "id"
	OptionName      = "name"
	OptionChannelID = "channel_id"

	UsageMessage   = "Please provide either an emote id or name or channel id"
	FailureMessage = "Failed to get emotes"
	BusyMessage    = "Another addemote is still running in this server, please wait"
)

// UsageError reports malformed command input. Nothing is resolved or stored.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Reason
}

type (
	resolver interface {
		ResolveByID(ctx context.Context, ids []string) (map[string]domain.Emote, error)
		ResolveByName(ctx context.Context, names []string) (map[string]domain.Emote, error)
		ResolveByChannel(ctx context.Context, channelIDs []string) (map[string]domain.Emote, error)
	}

	overrideStore interface {
		UpsertAll(ctx context.Context, guildID string, emotes []domain.Emote) error
	}

	emoteRegistry interface {
		Upsert(e domain.Emote)
		Len() int
	}

	Handler struct {
		resolver resolver
		store    overrideStore
		registry emoteRegistry

		activityCache *cache.Cache
	}

	request struct {
		option string
		values []string
	}
)

func New(r resolver, store overrideStore, reg emoteRegistry) *Handler {
	return &Handler{
		resolver:      r,
		store:         store,
		registry:      reg,
		activityCache: cache.New(cache.NoExpiration, cache.NoExpiration),
	}
}

// AddEmote resolves the requested emotes, persists them for the invoking
// guild and makes them live. Exactly one reply is sent per invocation.
func (h *Handler) AddEmote(ctx context.Context, cmd domain.Command) {
	if _, hit := h.activityCache.Get(cmd.GuildID); hit {
		h.reply(cmd, BusyMessage)
		metrics.CommandInvocations.WithLabelValues("busy").Inc()

		return
	}

	h.activityCache.Set(cmd.GuildID, struct{}{}, cache.NoExpiration)
	defer h.activityCache.Delete(cmd.GuildID)

	added, err := h.addEmote(ctx, cmd)

	var usageErr *UsageError
	switch {
	case errors.As(err, &usageErr):
		h.reply(cmd, UsageMessage)
		metrics.CommandInvocations.WithLabelValues("usage").Inc()
	case err != nil:
		slog.Error(
			"CommandHandler.AddEmote",
			slog.String("guildID", cmd.GuildID),
			slog.Any("options", cmd.Options),
			slog.Any("err", err),
		)
		h.reply(cmd, FailureMessage)
		metrics.CommandInvocations.WithLabelValues("failure").Inc()
	default:
		h.reply(cmd, addedMessage(added))
		metrics.CommandInvocations.WithLabelValues("success").Inc()
	}

	slog.Info(
		"CommandHandler.AddEmote",
		slog.String("guildID", cmd.GuildID),
		slog.Int("registrySize", h.registry.Len()),
	)
}

func (h *Handler) addEmote(ctx context.Context, cmd domain.Command) ([]domain.Emote, error) {
	const errMsg = "CommandHandler.addEmote"

	req, err := parse(cmd.Options)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	var found map[string]domain.Emote

	switch req.option {
	case OptionID:
		found, err = h.resolver.ResolveByID(ctx, req.values)
	case OptionName:
		found, err = h.resolver.ResolveByName(ctx, req.values)
	case OptionChannelID:
		found, err = h.resolver.ResolveByChannel(ctx, req.values)
	}
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	emotes := make([]domain.Emote, 0, len(found))
	for _, e := range found {
		emotes = append(emotes, e)
	}
	sort.Slice(emotes, func(i, j int) bool { return emotes[i].Name < emotes[j].Name })

	err = h.store.UpsertAll(ctx, cmd.GuildID, emotes)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	for _, e := range emotes {
		h.registry.Upsert(e)
	}

	return emotes, nil
}

// parse accepts exactly one recognized option with at least one non-empty
// comma-separated value.
func parse(opts map[string]string) (request, error) {
	if len(opts) != 1 {
		return request{}, &UsageError{Reason: fmt.Sprintf("expected one option, got %d", len(opts))}
	}

	for option, raw := range opts {
		switch option {
		case OptionID, OptionName, OptionChannelID:
		default:
			return request{}, &UsageError{Reason: fmt.Sprintf("unknown option %q", option)}
		}

		values := splitList(raw)
		if len(values) == 0 {
			return request{}, &UsageError{Reason: fmt.Sprintf("option %q is empty", option)}
		}

		return request{option: option, values: values}, nil
	}

	return request{}, &UsageError{Reason: "no option"}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			values = append(values, p)
		}
	}

	return values
}

func addedMessage(emotes []domain.Emote) string {
	var sb strings.Builder
	sb.WriteString("Added emotes:\n")

	for _, e := range emotes {
		sb.WriteString(" - ")
		sb.WriteString(e.Name)
		sb.WriteString("\n")
	}

	return sb.String()
}

func (h *Handler) reply(cmd domain.Command, text string) {
	if cmd.Reply == nil {
		return
	}

	err := cmd.Reply(text)
	if err != nil {
		slog.Error("CommandHandler.reply", slog.String("guildID", cmd.GuildID), slog.Any("err", err))
	}
}
