package services

import (
	"os"
	"path/filepath"
	"testing"
)

func strptr(s string) *string { return &s }

func TestCreateShoutRequest_IsValid(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(full, []byte("RIFF"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	empty := filepath.Join(dir, "empty.wav")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cases := []struct {
		name string
		file string
		want bool
	}{
		{"no file", "", false},
		{"missing file", filepath.Join(dir, "nope.wav"), false},
		{"empty file", empty, false},
		{"directory", dir, false},
		{"non-empty file", full, true},
	}
	for _, tc := range cases {
		if got := (CreateShoutRequest{File: tc.file}).IsValid(); got != tc.want {
			t.Fatalf("%s: IsValid = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCreateShoutRequest_ToEntity(t *testing.T) {
	lat, lon := 45.5, -122.6
	req := CreateShoutRequest{
		File:        "/tmp/clip.wav",
		Text:        "hello",
		Description: "desc",
		Topic:       "news",
		Tags:        []string{"a", "b"},
		Lat:         &lat,
		Lon:         &lon,
		ChannelID:   "chan-1",
		ReplyToID:   "s0",
	}
	sh := req.ToEntity()

	if sh.Text != "hello" || sh.Description != "desc" || sh.Topic != "news" ||
		sh.ChannelID != "chan-1" || sh.ReplyToID != "s0" {
		t.Fatalf("fields not mapped: %+v", sh)
	}
	if sh.Tags != "a,b" {
		t.Fatalf("tags = %q, want a,b", sh.Tags)
	}
	if sh.Lat == nil || *sh.Lat != lat || sh.Lon == nil || *sh.Lon != lon {
		t.Fatalf("coordinates not mapped: %+v", sh)
	}
	if sh.ID != "" || sh.MediaURL != "" {
		t.Fatalf("server-assigned fields should be empty: %+v", sh)
	}
}

func TestToEntity_TagsKeptVerbatim(t *testing.T) {
	if got := (CreateShoutRequest{Tags: []string{" a", "b ", ""}}).ToEntity().Tags; got != " a,b ," {
		t.Fatalf("shout tags = %q, want %q", got, " a,b ,")
	}
	patch := UpdateUserRequest{TopicPreferences: []string{"Sports ", "", "news"}}.ToEntity()
	if patch.TopicPreferences == nil || *patch.TopicPreferences != "Sports ,,news" {
		t.Fatalf("topic preferences = %v", patch.TopicPreferences)
	}
}

func TestJoinTags(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{}, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "a,b"},
		{[]string{" a", "b ", ""}, " a,b ,"},
		{[]string{"cafe\u0301"}, "cafe\u0301"},
	}
	for _, tc := range cases {
		if got := JoinTags(tc.in); got != tc.want {
			t.Fatalf("JoinTags(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUpdateUserRequest_IsValid(t *testing.T) {
	cases := []struct {
		name string
		req  UpdateUserRequest
		want bool
	}{
		{"all unset", UpdateUserRequest{}, false},
		{"handle", UpdateUserRequest{Handle: strptr("neo")}, true},
		{"email", UpdateUserRequest{Email: strptr("n@example.com")}, true},
		{"phone", UpdateUserRequest{Phone: strptr("+15555550100")}, true},
		{"gender", UpdateUserRequest{Gender: strptr("f")}, true},
		{"empty string counts as set", UpdateUserRequest{Handle: strptr("")}, true},
		{"topics", UpdateUserRequest{TopicPreferences: []string{"x"}}, true},
		{"empty topics clear", UpdateUserRequest{TopicPreferences: []string{}}, true},
	}
	for _, tc := range cases {
		if got := tc.req.IsValid(); got != tc.want {
			t.Fatalf("%s: IsValid = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUpdateUserRequest_ToEntity(t *testing.T) {
	p := UpdateUserRequest{Email: strptr("n@example.com"), TopicPreferences: []string{"sports", "news"}}.ToEntity()
	if p.Email == nil || *p.Email != "n@example.com" {
		t.Fatalf("email not mapped: %+v", p)
	}
	if p.Handle != nil || p.Phone != nil || p.Gender != nil {
		t.Fatalf("unset fields should stay nil: %+v", p)
	}
	if p.TopicPreferences == nil || *p.TopicPreferences != "sports,news" {
		t.Fatalf("topics = %v", p.TopicPreferences)
	}

	if p := (UpdateUserRequest{Handle: strptr("x")}).ToEntity(); p.TopicPreferences != nil {
		t.Fatalf("nil topic list should stay unset")
	}
}

func TestSubscribeRequest_IsValid(t *testing.T) {
	if (SubscribeRequest{}).IsValid() || (SubscribeRequest{ChannelID: "  "}).IsValid() {
		t.Fatalf("blank channel should be invalid")
	}
	if !(SubscribeRequest{ChannelID: "c1"}).IsValid() {
		t.Fatalf("channel c1 should be valid")
	}
}
