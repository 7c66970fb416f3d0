// Package services defines the SDK operations callers use: creating shouts,
// managing the user profile and channel subscriptions, and keeping the
// geofence cache. This file centralizes service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Request errors.
var (
	// ErrInvalidRequest is returned, before any I/O, when a request object
	// fails its validity check.
	ErrInvalidRequest = errors.New("invalid request")
)

// Geofence cache errors.
var (
	// ErrGeofenceExists is returned when a geofence is armed for a
	// conversation that is already cached. Re-arming never overwrites.
	ErrGeofenceExists = errors.New("geofence already armed for conversation")

	// ErrGeofenceNotFound indicates no cached geofence for the conversation.
	ErrGeofenceNotFound = errors.New("geofence not found")

	// ErrGeofenceExpired is returned when the cached geofence is past its
	// expiration date. The record is removed as a side effect.
	ErrGeofenceExpired = errors.New("geofence expired")

	// ErrInvalidGeofence is returned when an arm instruction has a blank id,
	// out-of-range coordinates or a non-positive radius.
	ErrInvalidGeofence = errors.New("invalid geofence")
)
