package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"math/rand"
	"sort"
	"strings"
)

// ThreadIDLength is the fixed length of every thread identifier.
const ThreadIDLength = 8

const fallbackAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// ExtractThreadID resolves an inbound message to its stable thread
// identifier. Messages belonging to the same logical conversation on the
// same channel always map to the same id. When a message carries no usable
// correlation metadata a fresh random id is generated instead of failing,
// so the message is never dropped.
func ExtractThreadID(msg InboundMessage) string {
	var key string
	switch msg.Channel {
	case ChannelEmail:
		key = emailCorrelationKey(msg.Email)
	case ChannelSMS:
		key = smsCorrelationKey(msg.SMS)
	case ChannelChat:
		key = chatCorrelationKey(msg.Chat)
	}
	if key == "" {
		return randomThreadID()
	}
	return hashThreadID(key)
}

// emailCorrelationKey prefers the thread root (first References entry) so
// every reply in the conversation hashes to the same value regardless of
// its own Message-ID.
func emailCorrelationKey(f EmailFields) string {
	if len(f.References) > 0 {
		if root := normalizeMessageID(f.References[0]); root != "" {
			return "email:" + root
		}
	}
	if id := normalizeMessageID(f.InReplyTo); id != "" {
		return "email:" + id
	}
	if id := normalizeMessageID(f.MessageID); id != "" {
		return "email:" + id
	}
	return ""
}

// smsCorrelationKey uses the carrier conversation id when one exists,
// otherwise the sorted phone pair so A→B and B→A land on the same thread.
func smsCorrelationKey(f SMSFields) string {
	if id := strings.TrimSpace(f.ConversationID); id != "" {
		return "sms:" + id
	}
	from := strings.TrimSpace(f.From)
	to := strings.TrimSpace(f.To)
	if from == "" && to == "" {
		return ""
	}
	pair := []string{from, to}
	sort.Strings(pair)
	return "sms:" + pair[0] + "|" + pair[1]
}

func chatCorrelationKey(f ChatFields) string {
	if id := strings.TrimSpace(f.ThreadID); id != "" {
		return "chat:thread:" + id
	}
	if id := strings.TrimSpace(f.MessageID); id != "" {
		return "chat:message:" + id
	}
	return ""
}

// normalizeMessageID strips whitespace and the surrounding angle brackets
// of an RFC 5322 identifier, so <x@y> and x@y hash identically.
func normalizeMessageID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "<")
	id = strings.TrimSuffix(id, ">")
	return strings.TrimSpace(id)
}

func hashThreadID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return base64.RawURLEncoding.EncodeToString(sum[:])[:ThreadIDLength]
}

func randomThreadID() string {
	b := make([]byte, ThreadIDLength)
	for i := range b {
		b[i] = fallbackAlphabet[rand.Intn(len(fallbackAlphabet))]
	}
	return string(b)
}
