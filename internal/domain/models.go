// Package domain defines the persistence model of the geofence cache and the
// wire entities exchanged with the Shout service. These types are shared by
// the repository, API adapter and service layers.
package domain

import "time"

// GeofenceNotification is a pending location-triggered notification, cached
// until the OS reports the fence transition or the record expires.
//
// Fields:
//   - ConversationID: primary key, the sole identity of a cached record.
//   - Lat / Lon: geofence center (double precision).
//   - Radius: trigger radius in meters (single precision).
//   - ChannelID: channel that issued the notification.
//   - ChannelImageURL: optional avatar/icon.
//   - MessageBody / MessageTitle / MessageType: payload shown on firing.
//   - ExpirationDate: epoch milliseconds after which the record is stale.
//
// The record is self-contained so firing needs no network round trip.
type GeofenceNotification struct {
	ConversationID  string  `json:"conversation_id"   gorm:"column:conversation_id;type:TEXT;primaryKey"`
	Lat             float64 `json:"lat"               gorm:"column:lat;type:REAL"`
	Lon             float64 `json:"lon"               gorm:"column:lon;type:REAL"`
	Radius          float32 `json:"radius"            gorm:"column:radius;type:REAL"`
	ChannelID       string  `json:"channel_id"        gorm:"column:channel_id;type:TEXT"`
	ChannelImageURL string  `json:"channel_image_url,omitempty" gorm:"column:channel_image_url;type:TEXT"`
	MessageBody     string  `json:"message_body"      gorm:"column:message_body;type:TEXT"`
	MessageTitle    string  `json:"message_title"     gorm:"column:message_title;type:TEXT"`
	MessageType     string  `json:"message_type"      gorm:"column:message_type;type:TEXT"`
	ExpirationDate  int64   `json:"expiration_date"   gorm:"column:expiration_date;type:INTEGER"`
}

// TableName returns the database table name for GeofenceNotification.
func (GeofenceNotification) TableName() string { return "geofence" }

// ExpiresAt returns ExpirationDate as a time.Time.
func (g GeofenceNotification) ExpiresAt() time.Time { return time.UnixMilli(g.ExpirationDate) }

// Expired reports whether now is past the expiration date.
func (g GeofenceNotification) Expired(now time.Time) bool {
	return now.UnixMilli() > g.ExpirationDate
}
