package tgbot

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"seventvbot/internal/domain"
)

func ToMessage(msg *tgbotapi.Message) domain.Message {
	m := domain.Message{
		ID:             strconv.Itoa(msg.MessageID),
		ChannelID:      strconv.FormatInt(msg.Chat.ID, 10),
		GuildID:        strconv.FormatInt(msg.Chat.ID, 10),
		Content:        msg.Text,
		HasAttachments: hasAttachments(msg),
		HasEmbeds:      hasLinks(msg),
		HasActivity:    msg.Game != nil,
		HasApplication: msg.ViaBot != nil,
		IsReply:        msg.ReplyToMessage != nil,
		Regular:        isRegular(msg),
	}

	if msg.From != nil {
		m.AuthorIsBot = msg.From.IsBot
		m.AuthorName = msg.From.FirstName
		if m.AuthorName == "" {
			m.AuthorName = msg.From.UserName
		}
	}

	return m
}

func hasAttachments(msg *tgbotapi.Message) bool {
	return len(msg.Photo) > 0 ||
		msg.Document != nil ||
		msg.Animation != nil ||
		msg.Video != nil ||
		msg.VideoNote != nil ||
		msg.Audio != nil ||
		msg.Voice != nil ||
		msg.Sticker != nil
}

func hasLinks(msg *tgbotapi.Message) bool {
	for _, e := range msg.Entities {
		if e.IsURL() || e.IsTextLink() {
			return true
		}
	}

	return false
}

// isRegular rejects service messages and forwards.
func isRegular(msg *tgbotapi.Message) bool {
	return msg.ForwardDate == 0 &&
		len(msg.NewChatMembers) == 0 &&
		msg.LeftChatMember == nil &&
		msg.NewChatTitle == "" &&
		msg.PinnedMessage == nil &&
		!msg.GroupChatCreated
}

// ParseOptions reads "key=value" pairs from command arguments. A value runs
// until the next key, so "name=a, b id=c" yields name:"a, b" and id:"c".
// Text before the first key is kept under the empty key.
func ParseOptions(args string) map[string]string {
	opts := make(map[string]string)

	var (
		key     string
		started bool
	)

	for _, tok := range strings.Fields(args) {
		if k, v, ok := strings.Cut(tok, "="); ok && isOptionName(k) {
			key, started = k, true
			opts[key] = v

			continue
		}

		if !started {
			started = true
			opts[key] = tok

			continue
		}

		if opts[key] == "" {
			opts[key] = tok
		} else {
			opts[key] += " " + tok
		}
	}

	return opts
}

func isOptionName(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}

	return true
}
