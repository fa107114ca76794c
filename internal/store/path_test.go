package store

import "testing"

func TestPathStrings(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"user doc", UserDoc("u1").String(), "users/u1"},
		{"conversation doc", ConversationDoc("u1", "c1").String(), "users/u1/chat-history/c1"},
		{"messages", Messages("u1", "c1").String(), "users/u1/chat-history/c1/messages"},
		{"refresh token", RefreshTokenDoc("tok").String(), "refresh_tokens/tok"},
		{"prompt config", PromptConfigDoc("cfg").String(), "history/cfg"},
		{"daily verse", DailyVerseDoc("2025-06-01").String(), "daily-verses/2025-06-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("path = %q, want %q", tc.got, tc.want)
			}
		})
	}
}

func TestInvalidSegmentsTaintThePath(t *testing.T) {
	if !UserDoc("").Invalid() {
		t.Error("empty uid accepted")
	}
	if !UserDoc("a/b").Invalid() {
		t.Error("slash in uid accepted")
	}
	// Taint propagates through later valid segments.
	if !ConversationDoc("", "c1").Invalid() {
		t.Error("invalid parent did not taint child")
	}
	if !Messages("u1", "c/1").Invalid() {
		t.Error("invalid conversation id did not taint messages path")
	}
	if UserDoc("u1").Invalid() || Messages("u1", "c1").Invalid() {
		t.Error("valid path flagged invalid")
	}
}

func TestDocPathID(t *testing.T) {
	if got := ConversationDoc("u1", "c1").ID(); got != "c1" {
		t.Errorf("ID() = %q", got)
	}
}
