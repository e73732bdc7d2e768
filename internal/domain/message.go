package domain

// Channel identifies the source a message arrived on. Channels are
// independent correlation domains: the same two parties talking over email
// and SMS produce two separate threads.
type Channel string

const (
	ChannelChat  Channel = "chat"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// EmailFields carries the correlation headers of an inbound email.
type EmailFields struct {
	InReplyTo  string
	MessageID  string
	References []string // oldest first; the first entry is the thread root
}

// SMSFields carries the correlation fields of an inbound text message.
type SMSFields struct {
	ConversationID string
	From           string
	MessageID      string
	To             string
}

// ChatFields carries the correlation fields of an inbound chat message.
type ChatFields struct {
	MessageID string
	ThreadID  string
}

// InboundMessage is one message received from a channel. Only the variant
// matching Channel is populated. Messages are immutable once received.
type InboundMessage struct {
	Body    string
	Channel Channel

	Chat  ChatFields
	Email EmailFields
	SMS   SMSFields
}
