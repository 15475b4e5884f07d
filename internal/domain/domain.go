package domain

// Emote is the record a trigger resolves to. Values are never mutated after
// construction; a newer record for the same trigger replaces the old one whole.
type Emote struct {
	ID       string
	Name     string
	Animated bool
}

// Override is an admin-curated trigger persisted per guild.
type Override struct {
	GuildID   string
	EmoteName string
	EmoteID   string
}

// Message is the platform-neutral view of an inbound chat message.
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	Content   string

	AuthorName  string
	AuthorIsBot bool

	HasAttachments bool
	HasEmbeds      bool
	HasActivity    bool
	HasApplication bool
	IsReply        bool
	// Regular is false for service, system and forwarded messages.
	Regular bool
}

// Command is an administrative command invocation. Options holds every
// option the user supplied, recognized or not.
type Command struct {
	Name    string
	GuildID string
	Options map[string]string
	Reply   func(text string) error
}

// Event is one inbound platform event; exactly one field is set.
type Event struct {
	Message *Message
	Command *Command
}
