package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/domain"
)

// GeofenceRegistrar is the OS geofencing service: it watches a circular
// region and later reports the transition back to the SDK.
type GeofenceRegistrar interface {
	Register(ctx context.Context, rec domain.GeofenceNotification) error
	Unregister(ctx context.Context, conversationID string) error
}

// LogRegistrar only logs registrations. It is used when the host has no
// native geofencing and transitions are reported over the receiver instead.
type LogRegistrar struct{}

func (LogRegistrar) Register(_ context.Context, rec domain.GeofenceNotification) error {
	log.Info().
		Str("component", "geofence").
		Str("conversation_id", rec.ConversationID).
		Float64("lat", rec.Lat).
		Float64("lon", rec.Lon).
		Float32("radius_m", rec.Radius).
		Time("expires_at", rec.ExpiresAt()).
		Msg("geofence registered")
	return nil
}

func (LogRegistrar) Unregister(_ context.Context, conversationID string) error {
	log.Info().
		Str("component", "geofence").
		Str("conversation_id", conversationID).
		Msg("geofence unregistered")
	return nil
}
