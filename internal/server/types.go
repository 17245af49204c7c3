// Package server defines the server notices and the identity rules shared by
// the hub and its transports.
package server

import (
	"strings"
	"unicode/utf8"
)

// NoticePrefix marks server-generated notices on the wire. It is the only
// structure the protocol has.
const NoticePrefix = ">>> "

// BroadcastMessage encapsulates a message being broadcast by the hub,
// including the originating peer so it can be excluded from delivery.
// Notice marks server announcements, which are queued with extra headroom.
type BroadcastMessage struct {
	Sender  *peer
	Payload []byte
	Notice  bool
}

func joinNotice(identity string) []byte {
	return []byte(NoticePrefix + identity + " joined the chat!")
}

func leaveNotice(identity string) []byte {
	return []byte(NoticePrefix + identity + " left the chat.")
}

func fullNotice() []byte {
	return []byte(NoticePrefix + "Server is full, try again later.")
}

// IsNotice reports whether payload is a server notice.
func IsNotice(payload []byte) bool {
	return strings.HasPrefix(string(payload), NoticePrefix)
}

// normalizeIdentity turns a registration payload into an identity: line
// terminators are trimmed and the result is cut to maxLen bytes without
// splitting a UTF-8 sequence.
func normalizeIdentity(payload []byte, maxLen int) string {
	identity := strings.TrimRight(string(payload), "\r\n")
	if maxLen <= 0 || len(identity) <= maxLen {
		return identity
	}

	cut := maxLen
	for cut > 0 && !utf8.RuneStart(identity[cut]) {
		cut--
	}
	return identity[:cut]
}
