package discord

import (
	"github.com/bwmarrin/discordgo"

	"seventvbot/internal/domain"
)

func ToMessage(m *discordgo.Message) domain.Message {
	msg := domain.Message{
		ID:             m.ID,
		ChannelID:      m.ChannelID,
		GuildID:        m.GuildID,
		Content:        m.Content,
		HasAttachments: len(m.Attachments) > 0,
		HasEmbeds:      len(m.Embeds) > 0,
		HasActivity:    m.Activity != nil,
		HasApplication: m.Application != nil,
		IsReply:        m.MessageReference != nil || m.ReferencedMessage != nil,
		Regular:        m.Type == discordgo.MessageTypeDefault,
	}

	if m.Author != nil {
		msg.AuthorIsBot = m.Author.Bot
		msg.AuthorName = displayName(m)
	}

	return msg
}

// displayName prefers the guild nickname, then the global display name.
func displayName(m *discordgo.Message) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}

	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}

	return m.Author.Username
}
