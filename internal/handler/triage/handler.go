package triage

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"seventvbot/internal/domain"
	"seventvbot/internal/infrastructure/webapi/seventv"
	"seventvbot/internal/metrics"
	"seventvbot/internal/service/transform"
)

type Action string

const (
	ActionEmote     Action = "emote"
	ActionTransform Action = "transform"
	ActionNone      Action = "none"
)

type (
	botApi interface {
		SendMessage(ctx context.Context, channelID, message string) error
		DeleteMessage(ctx context.Context, channelID, messageID string) error
	}

	emoteLookup interface {
		Get(trigger string) (domain.Emote, bool)
	}

	Options struct {
		CDNHost         string
		TransformChance float64
		// LinkDelay holds back the last message of a bundle so it usually
		// lands after the attribution. Ordering is not guaranteed.
		LinkDelay time.Duration
	}

	Handler struct {
		api    botApi
		emotes emoteLookup
		opts   Options

		transform func(string) string
		random    func() float64
	}

	step struct {
		name  string
		delay time.Duration
		run   func(ctx context.Context) error
	}
)

func New(api botApi, emotes emoteLookup, opts Options) *Handler {
	return &Handler{
		api:       api,
		emotes:    emotes,
		opts:      opts,
		transform: transform.Uwuify,
		random:    rand.Float64,
	}
}

// Handle picks exactly one action for msg and performs it. Side effects are
// best effort: failures are logged and never returned.
func (h *Handler) Handle(ctx context.Context, msg domain.Message) Action {
	action := h.handle(ctx, msg)
	metrics.TriageActions.WithLabelValues(string(action)).Inc()

	return action
}

func (h *Handler) handle(ctx context.Context, msg domain.Message) Action {
	if e, hit := h.emotes.Get(msg.Content); hit {
		link := seventv.EmoteURL(h.opts.CDNHost, e)
		h.repost(ctx, msg, step{
			name:  "sendEmoteLink",
			delay: h.opts.LinkDelay,
			run: func(ctx context.Context) error {
				return h.api.SendMessage(ctx, msg.ChannelID, link)
			},
		})

		return ActionEmote
	}

	text, ok := h.transformed(msg)
	if !ok {
		return ActionNone
	}

	h.repost(ctx, msg, step{
		name:  "sendTransformed",
		delay: h.opts.LinkDelay,
		run: func(ctx context.Context) error {
			return h.api.SendMessage(ctx, msg.ChannelID, text)
		},
	})

	return ActionTransform
}

// eligible reports whether msg is plain human chatter.
func eligible(msg domain.Message) bool {
	return msg.Content != "" &&
		!strings.HasPrefix(msg.Content, "http://") &&
		!strings.HasPrefix(msg.Content, "https://") &&
		!msg.HasAttachments &&
		!msg.HasEmbeds &&
		!msg.HasActivity &&
		!msg.HasApplication &&
		!msg.IsReply &&
		msg.Regular &&
		!msg.AuthorIsBot
}

// transformed returns the text to post for the probabilistic branch. The
// change check runs on the raw content; the posted text is the transform of
// the content with a trailing period.
func (h *Handler) transformed(msg domain.Message) (string, bool) {
	if !eligible(msg) {
		return "", false
	}

	if h.transform(msg.Content) == msg.Content {
		return "", false
	}

	if h.random() >= h.opts.TransformChance {
		return "", false
	}

	return h.transform(msg.Content + "."), true
}

// repost deletes msg, attributes its author and runs last. All three start
// together and none cancels another.
func (h *Handler) repost(ctx context.Context, msg domain.Message, last step) {
	ctx = context.WithoutCancel(ctx)

	steps := []step{
		{
			name: "deleteOriginal",
			run: func(ctx context.Context) error {
				return h.api.DeleteMessage(ctx, msg.ChannelID, msg.ID)
			},
		},
		{
			name: "sendAttribution",
			run: func(ctx context.Context) error {
				return h.api.SendMessage(ctx, msg.ChannelID, fmt.Sprintf("**%s**", msg.AuthorName))
			},
		},
		last,
	}

	var wg sync.WaitGroup

	for _, s := range steps {
		s := s
		wg.Add(1)

		go func() {
			defer wg.Done()

			if s.delay > 0 {
				time.Sleep(s.delay)
			}

			err := s.run(ctx)
			if err != nil {
				metrics.BestEffortFailures.WithLabelValues(s.name).Inc()
				slog.Error(
					"TriageHandler."+s.name,
					slog.String("channelID", msg.ChannelID),
					slog.String("messageID", msg.ID),
					slog.Any("err", err),
				)
			}
		}()
	}

	wg.Wait()
}
