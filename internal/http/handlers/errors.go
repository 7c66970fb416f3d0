package handlers

// Error codes carried in ErrorResponse.Code. Clients branch on these, never
// on the message text.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	// Geofence lifecycle:
	ErrCodeGeofenceExists  = "geofence_exists"
	ErrCodeGeofenceExpired = "geofence_expired"
	ErrCodeArmFailed       = "arm_failed"
	ErrCodeTriggerFailed   = "trigger_failed"
	ErrCodeListFailed      = "list_failed"
	ErrCodeRemoveFailed    = "remove_failed"
	ErrCodePurgeFailed     = "purge_failed"
)
