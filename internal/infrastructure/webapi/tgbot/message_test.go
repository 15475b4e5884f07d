package tgbot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"

	"seventvbot/internal/domain"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		args string
		want map[string]string
	}{
		{"", map[string]string{}},
		{"name=foo,bar", map[string]string{"name": "foo,bar"}},
		{"name=foo, bar", map[string]string{"name": "foo, bar"}},
		{"id=1 name=x", map[string]string{"id": "1", "name": "x"}},
		{"channel_id= 22", map[string]string{"channel_id": "22"}},
		{"pepe", map[string]string{"": "pepe"}},
		{"hello name=x", map[string]string{"": "hello", "name": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOptions(tt.args))
		})
	}
}

func TestToMessage(t *testing.T) {
	msg := &tgbotapi.Message{
		MessageID: 42,
		Chat:      &tgbotapi.Chat{ID: -100},
		From:      &tgbotapi.User{ID: 7, FirstName: "Alice", UserName: "alice"},
		Text:      "KEKW",
	}

	assert.Equal(t, domain.Message{
		ID:         "42",
		ChannelID:  "-100",
		GuildID:    "-100",
		Content:    "KEKW",
		AuthorName: "Alice",
		Regular:    true,
	}, ToMessage(msg))
}

func TestToMessageFlags(t *testing.T) {
	msg := &tgbotapi.Message{
		MessageID:      1,
		Chat:           &tgbotapi.Chat{ID: 1},
		From:           &tgbotapi.User{IsBot: true, UserName: "helper_bot"},
		Photo:          []tgbotapi.PhotoSize{{FileID: "f"}},
		Entities:       []tgbotapi.MessageEntity{{Type: "url"}},
		ViaBot:         &tgbotapi.User{ID: 2},
		ReplyToMessage: &tgbotapi.Message{MessageID: 0},
		ForwardDate:    1700000000,
	}

	m := ToMessage(msg)

	assert.True(t, m.AuthorIsBot)
	assert.Equal(t, "helper_bot", m.AuthorName)
	assert.True(t, m.HasAttachments)
	assert.True(t, m.HasEmbeds)
	assert.True(t, m.HasApplication)
	assert.True(t, m.IsReply)
	assert.False(t, m.Regular)
	assert.False(t, m.HasActivity)
}
