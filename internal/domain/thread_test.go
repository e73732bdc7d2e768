package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var urlSafe = regexp.MustCompile(`^[A-Za-z0-9_-]{8}$`)

func emailMsg(messageID, inReplyTo string, references ...string) InboundMessage {
	return InboundMessage{
		Channel: ChannelEmail,
		Email: EmailFields{
			InReplyTo:  inReplyTo,
			MessageID:  messageID,
			References: references,
		},
	}
}

func smsMsg(from, to, conversationID string) InboundMessage {
	return InboundMessage{
		Channel: ChannelSMS,
		SMS: SMSFields{
			ConversationID: conversationID,
			From:           from,
			MessageID:      "sms-1",
			To:             to,
		},
	}
}

func TestExtractThreadID_EmailSharesRootReference(t *testing.T) {
	// Replies anywhere in the thread share the first References entry and
	// must land on the same thread regardless of their own Message-ID
	first := ExtractThreadID(emailMsg("<new@x>", "<mid@x>", "<orig@x>", "<mid@x>"))
	second := ExtractThreadID(emailMsg("<other@x>", "<new@x>", "<orig@x>", "<mid@x>", "<new@x>"))

	assert.Equal(t, first, second)
}

func TestExtractThreadID_EmailFallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		msg  InboundMessage
		want string
	}{
		{
			name: "references beats in-reply-to",
			msg:  emailMsg("<m@x>", "<reply@x>", "<root@x>"),
			want: ExtractThreadID(emailMsg("<z@x>", "", "<root@x>")),
		},
		{
			name: "in-reply-to beats message-id",
			msg:  emailMsg("<m@x>", "<reply@x>"),
			want: ExtractThreadID(emailMsg("<q@x>", "<reply@x>")),
		},
		{
			name: "message-id used last",
			msg:  emailMsg("<only@x>", ""),
			want: ExtractThreadID(emailMsg("<only@x>", "")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractThreadID(tt.msg))
		})
	}
}

func TestExtractThreadID_AngleBracketsStripped(t *testing.T) {
	bare := ExtractThreadID(emailMsg("root@x", ""))
	wrapped := ExtractThreadID(emailMsg("<root@x>", ""))
	padded := ExtractThreadID(emailMsg("  <root@x>  ", ""))

	assert.Equal(t, bare, wrapped)
	assert.Equal(t, bare, padded)
}

func TestExtractThreadID_SMSDirectionIndependent(t *testing.T) {
	aToB := ExtractThreadID(smsMsg("+15550001", "+15550002", ""))
	bToA := ExtractThreadID(smsMsg("+15550002", "+15550001", ""))

	assert.Equal(t, aToB, bToA)
}

func TestExtractThreadID_SMSConversationIDWins(t *testing.T) {
	withID := ExtractThreadID(smsMsg("+15550001", "+15550002", "conv-42"))
	sameID := ExtractThreadID(smsMsg("+15550009", "+15550008", "conv-42"))
	without := ExtractThreadID(smsMsg("+15550001", "+15550002", ""))

	assert.Equal(t, withID, sameID)
	assert.NotEqual(t, withID, without)
}

func TestExtractThreadID_ChannelsAreIndependentDomains(t *testing.T) {
	// Same parties, different channels: no implicit bridging
	email := ExtractThreadID(emailMsg("<new@x>", "", "<orig@x>", "<mid@x>"))
	sms := ExtractThreadID(smsMsg("+15550002", "+15550001", ""))

	assert.NotEqual(t, email, sms)
}

func TestExtractThreadID_ChatThreadIDPreferred(t *testing.T) {
	withThread := InboundMessage{
		Channel: ChannelChat,
		Chat:    ChatFields{MessageID: "m1", ThreadID: "t1"},
	}
	sameThread := InboundMessage{
		Channel: ChannelChat,
		Chat:    ChatFields{MessageID: "m2", ThreadID: "t1"},
	}
	messageOnly := InboundMessage{
		Channel: ChannelChat,
		Chat:    ChatFields{MessageID: "m1"},
	}

	assert.Equal(t, ExtractThreadID(withThread), ExtractThreadID(sameThread))
	assert.NotEqual(t, ExtractThreadID(withThread), ExtractThreadID(messageOnly))
}

func TestExtractThreadID_AlwaysEightURLSafeChars(t *testing.T) {
	messages := []InboundMessage{
		emailMsg("<a@x>", "<b@x>", "<c@x>"),
		emailMsg("", ""),
		smsMsg("+15550001", "+15550002", ""),
		smsMsg("", "", ""),
		{Channel: ChannelChat, Chat: ChatFields{ThreadID: "t"}},
		{Channel: ChannelChat},
	}

	for _, msg := range messages {
		id := ExtractThreadID(msg)
		assert.Regexp(t, urlSafe, id, "channel %s", msg.Channel)
	}
}

func TestExtractThreadID_NoMetadataNeverErrors(t *testing.T) {
	// The fallback generates distinct random ids rather than dropping the
	// message
	first := ExtractThreadID(InboundMessage{Channel: ChannelEmail})
	second := ExtractThreadID(InboundMessage{Channel: ChannelEmail})

	require.Len(t, first, ThreadIDLength)
	require.Len(t, second, ThreadIDLength)
	assert.NotEqual(t, first, second)
	assert.Regexp(t, `^[a-z0-9]{8}$`, first)
}

func TestExtractThreadID_Deterministic(t *testing.T) {
	msg := emailMsg("<new@x>", "", "<orig@x>")
	want := ExtractThreadID(msg)
	for i := 0; i < 100; i++ {
		assert.Equal(t, want, ExtractThreadID(msg))
	}
}
