package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotices(t *testing.T) {
	assert.Equal(t, ">>> alice joined the chat!", string(joinNotice("alice")))
	assert.Equal(t, ">>> alice left the chat.", string(leaveNotice("alice")))
	assert.True(t, IsNotice(fullNotice()))
	assert.False(t, IsNotice([]byte("bob: >>> not a notice")))
}

func TestNormalizeIdentity(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		maxLen  int
		want    string
	}{
		{"verbatim", "alice", 50, "alice"},
		{"keeps inner spaces", "alice smith", 50, "alice smith"},
		{"trims newline", "bob\n", 50, "bob"},
		{"trims crlf", "bob\r\n", 50, "bob"},
		{"only newline", "\n", 50, ""},
		{"truncates", "abcdefgh", 5, "abcde"},
		{"truncates on rune boundary", "abcdé", 5, "abcd"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeIdentity([]byte(tc.payload), tc.maxLen))
		})
	}
}
