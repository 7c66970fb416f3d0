// Package notify packages notification data for display by the host
// application.
package notify

import (
	"maps"

	"golang.org/x/text/cases"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/domain"
)

// ActionNotification is the action of every intent built by this package.
const ActionNotification = "me.shoutto.sdk.NOTIFICATION"

// Extra names.
const (
	ExtraChannelID            = "channel_id"
	ExtraMessageID            = "message_id"
	ExtraNotificationBody     = "notification_body"
	ExtraNotificationType     = "notification_type"
	ExtraNotificationCategory = "notification_category"
	ExtraNotificationTitle    = "notification_title"
	ExtraChannelImageURL      = "channel_image_url"
)

// CategoryGeofence marks notifications raised by a geofence transition.
const CategoryGeofence = "geofence"

// Intent is a platform-neutral notification intent: an action plus named
// string extras.
type Intent struct {
	Action string            `json:"action"`
	Extras map[string]string `json:"extras"`
}

// NewNotificationIntent stores the five values under their fixed extra names.
// Values are kept exactly as given.
func NewNotificationIntent(channelID, messageID, body, notificationType, category string) Intent {
	return Intent{
		Action: ActionNotification,
		Extras: map[string]string{
			ExtraChannelID:            channelID,
			ExtraMessageID:            messageID,
			ExtraNotificationBody:     body,
			ExtraNotificationType:     notificationType,
			ExtraNotificationCategory: category,
		},
	}
}

// NewGeofenceIntent builds the intent posted when the geofence for rec fires.
// Markup in the body and title is stripped.
func NewGeofenceIntent(rec domain.GeofenceNotification) Intent {
	in := NewNotificationIntent(rec.ChannelID, rec.ConversationID, PlainText(rec.MessageBody), rec.MessageType, CategoryGeofence)
	in.Extras[ExtraNotificationTitle] = PlainText(rec.MessageTitle)
	if rec.ChannelImageURL != "" {
		in.Extras[ExtraChannelImageURL] = rec.ChannelImageURL
	}
	return in
}

// StringExtra returns the extra stored under name, or "" if absent.
func (i Intent) StringExtra(name string) string {
	return i.Extras[name]
}

// HasExtra reports whether name is set.
func (i Intent) HasExtra(name string) bool {
	_, ok := i.Extras[name]
	return ok
}

// HasCategory compares the category extra case-insensitively.
func (i Intent) HasCategory(category string) bool {
	f := cases.Fold()
	return f.String(i.StringExtra(ExtraNotificationCategory)) == f.String(category)
}

// Clone returns a deep copy.
func (i Intent) Clone() Intent {
	return Intent{Action: i.Action, Extras: maps.Clone(i.Extras)}
}
