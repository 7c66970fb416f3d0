package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTableName(t *testing.T) {
	if got := (GeofenceNotification{}).TableName(); got != "geofence" {
		t.Fatalf("GeofenceNotification.TableName() = %q; want %q", got, "geofence")
	}
}

func TestGeofenceNotification_Expired(t *testing.T) {
	exp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := GeofenceNotification{ExpirationDate: exp.UnixMilli()}

	if !g.ExpiresAt().Equal(exp) {
		t.Fatalf("ExpiresAt = %v, want %v", g.ExpiresAt(), exp)
	}
	if g.Expired(exp.Add(-time.Millisecond)) {
		t.Fatalf("record must not be expired before its expiration date")
	}
	if g.Expired(exp) {
		t.Fatalf("record must not be expired exactly at its expiration date")
	}
	if !g.Expired(exp.Add(time.Millisecond)) {
		t.Fatalf("record must be expired after its expiration date")
	}
}

func TestSerializationKeys(t *testing.T) {
	cases := []struct {
		e         Entity
		one, many string
	}{
		{Shout{}, "shout", "shouts"},
		{User{}, "user", "users"},
		{UserPatch{}, "user", "users"},
		{Subscription{}, "subscription", "subscriptions"},
		{Channel{}, "channel", "channels"},
	}
	for _, tc := range cases {
		if tc.e.SerializationKey() != tc.one || tc.e.ListSerializationKey() != tc.many {
			t.Fatalf("%T keys = (%q,%q), want (%q,%q)", tc.e,
				tc.e.SerializationKey(), tc.e.ListSerializationKey(), tc.one, tc.many)
		}
	}
}

func TestUserPatch_OmitsUnsetFields(t *testing.T) {
	email := "a@b.c"
	raw, err := json.Marshal(UserPatch{Email: &email})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"email":"a@b.c"}` {
		t.Fatalf("unexpected patch json: %s", raw)
	}

	empty := ""
	raw, _ = json.Marshal(UserPatch{Handle: &empty})
	if string(raw) != `{"handle":""}` {
		t.Fatalf("explicitly set empty field must be sent: %s", raw)
	}
}
