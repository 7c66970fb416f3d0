package repo

import "strings"

// Geofence cache file name and schema version. Bumping DatabaseVersion
// discards every cached row on the next Open.
const (
	DatabaseName    = "me.shoutto.sdk.geofence.db"
	DatabaseVersion = 1
)

// Table and column names of the geofence cache.
const (
	GeofenceTable = "geofence"

	ColumnConversationID  = "conversation_id"
	ColumnLat             = "lat"
	ColumnLon             = "lon"
	ColumnRadius          = "radius"
	ColumnChannelID       = "channel_id"
	ColumnChannelImageURL = "channel_image_url"
	ColumnMessageBody     = "message_body"
	ColumnMessageTitle    = "message_title"
	ColumnMessageType     = "message_type"
	ColumnExpirationDate  = "expiration_date"
)

// geofenceColumns lists column name and SQLite type in DDL order.
var geofenceColumns = [...][2]string{
	{ColumnConversationID, "TEXT PRIMARY KEY"},
	{ColumnLat, "REAL"},
	{ColumnLon, "REAL"},
	{ColumnRadius, "REAL"},
	{ColumnChannelID, "TEXT"},
	{ColumnChannelImageURL, "TEXT"},
	{ColumnMessageBody, "TEXT"},
	{ColumnMessageTitle, "TEXT"},
	{ColumnMessageType, "TEXT"},
	{ColumnExpirationDate, "INTEGER"},
}

// GeofenceColumns returns the cache's column names in DDL order.
func GeofenceColumns() []string {
	out := make([]string, len(geofenceColumns))
	for i, c := range geofenceColumns {
		out[i] = c[0]
	}
	return out
}

// CreateGeofenceTableStatement returns the DDL creating the geofence table.
func CreateGeofenceTableStatement() string {
	defs := make([]string, len(geofenceColumns))
	for i, c := range geofenceColumns {
		defs[i] = c[0] + " " + c[1]
	}
	return "CREATE TABLE " + GeofenceTable + " (" + strings.Join(defs, ", ") + ")"
}

// DeleteGeofenceTableStatement returns an idempotent DROP of the geofence table.
func DeleteGeofenceTableStatement() string {
	return "DROP TABLE IF EXISTS " + GeofenceTable
}
