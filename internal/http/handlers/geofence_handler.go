// Geofence HTTP handlers.
//
// The receiver is how a host without native geofencing drives the cache:
//   - POST   /geofences              (arm)
//   - GET    /geofences              (list, paginated)
//   - GET    /geofences/stats        (cache summary)
//   - GET    /geofences/{id}         (read)
//   - DELETE /geofences/{id}         (remove)
//   - POST   /geofences/{id}/trigger (OS transition)
//   - POST   /geofences/purge        (drop expired records)
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/domain"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/notify"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/repo"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/services"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/utils"
)

// GeofenceService is the cache lifecycle consumed by the handlers.
// Implementations must be safe for concurrent use and honor ctx.
type GeofenceService interface {
	Arm(ctx context.Context, rec domain.GeofenceNotification) (*domain.GeofenceNotification, error)
	Trigger(ctx context.Context, conversationID string) (*notify.Intent, error)
	Get(ctx context.Context, conversationID string) (*domain.GeofenceNotification, error)
	List(ctx context.Context, page, pageSize int) ([]domain.GeofenceNotification, int64, error)
	Remove(ctx context.Context, conversationID string) error
	PurgeExpired(ctx context.Context) (int, error)
	Stats(ctx context.Context) (repo.CacheStats, error)
}

// Handlers groups the receiver endpoints.
type Handlers struct {
	geo GeofenceService
}

// New returns Handlers bound to geo.
func New(geo GeofenceService) *Handlers {
	return &Handlers{geo: geo}
}

// ArmGeofenceRequest is the server-pushed instruction to watch a region.
// Lat and Lon are pointers so that a missing coordinate is told apart from
// the equator or the prime meridian.
type ArmGeofenceRequest struct {
	ConversationID  string   `json:"conversation_id" binding:"required" example:"5f1b2c3d4e"`
	Lat             *float64 `json:"lat" binding:"required" example:"45.523064"`
	Lon             *float64 `json:"lon" binding:"required" example:"-122.676483"`
	Radius          float32  `json:"radius" example:"150"`
	ChannelID       string   `json:"channel_id" example:"ch-42"`
	ChannelImageURL string   `json:"channel_image_url,omitempty" example:"https://cdn.example.com/ch-42.png"`
	MessageBody     string   `json:"message_body" example:"Free coffee at the corner store"`
	MessageTitle    string   `json:"message_title" example:"Nearby"`
	MessageType     string   `json:"message_type" example:"user_message"`
	// Epoch milliseconds
	ExpirationDate int64 `json:"expiration_date" binding:"required" example:"1767225600000"`
}

func (r ArmGeofenceRequest) record() domain.GeofenceNotification {
	return domain.GeofenceNotification{
		ConversationID:  strings.TrimSpace(r.ConversationID),
		Lat:             *r.Lat,
		Lon:             *r.Lon,
		Radius:          r.Radius,
		ChannelID:       r.ChannelID,
		ChannelImageURL: r.ChannelImageURL,
		MessageBody:     r.MessageBody,
		MessageTitle:    r.MessageTitle,
		MessageType:     r.MessageType,
		ExpirationDate:  r.ExpirationDate,
	}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListGeofencesResponse wraps a page of cached geofences.
type ListGeofencesResponse struct {
	Geofences  []domain.GeofenceNotification `json:"geofences"`
	Pagination Pagination                    `json:"pagination"`
}

// PurgeResponse reports how many expired records were removed.
type PurgeResponse struct {
	Deleted int `json:"deleted" example:"3"`
}

// ArmGeofence godoc
// @ID          armGeofence
// @Summary     Arm a geofence
// @Description Caches a location-triggered notification and registers its fence. Re-arming a cached conversation is rejected; the cached record is kept.
// @Tags        Geofences
// @Accept      json
// @Produce     json
// @Param       X-Device-ID  header  string  false  "Device identifier"  example(device-1)
// @Param       body         body    handlers.ArmGeofenceRequest  true  "Arm instruction"
// @Success     201  {object}  domain.GeofenceNotification
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid instruction"
// @Failure     409  {object}  handlers.ErrorResponse  "Already armed"
// @Failure     422  {object}  handlers.ErrorResponse  "Already expired"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /geofences [post]
func (h *Handlers) ArmGeofence(c *gin.Context) {
	var req ArmGeofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation_id, lat, lon and expiration_date are required")
		return
	}

	rec, err := h.geo.Arm(c.Request.Context(), req.record())
	if err != nil {
		if errors.Is(err, services.ErrGeofenceExpired) {
			fail(c, http.StatusUnprocessableEntity, ErrCodeGeofenceExpired, err.Error())
			return
		}
		failFor(c, err, ErrCodeArmFailed)
		return
	}
	ok(c, http.StatusCreated, rec)
}

// ListGeofences godoc
// @ID          listGeofences
// @Summary     List cached geofences (paginated)
// @Description Returns cached geofences, soonest expiration first.
// @Tags        Geofences
// @Produce     json
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListGeofencesResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /geofences [get]
func (h *Handlers) ListGeofences(c *gin.Context) {
	page, pageSize := utils.ClampPage(c.Query("page"), c.Query("page_size"))

	items, total, err := h.geo.List(c.Request.Context(), page, pageSize)
	if err != nil {
		failFor(c, err, ErrCodeListFailed)
		return
	}
	if items == nil {
		items = []domain.GeofenceNotification{}
	}

	totalPages := utils.TotalPages(total, pageSize)
	ok(c, http.StatusOK, ListGeofencesResponse{
		Geofences: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GeofenceStats godoc
// @ID          geofenceStats
// @Summary     Summarize the geofence cache
// @Tags        Geofences
// @Produce     json
// @Success     200  {object}  repo.CacheStats
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /geofences/stats [get]
func (h *Handlers) GeofenceStats(c *gin.Context) {
	st, err := h.geo.Stats(c.Request.Context())
	if err != nil {
		failFor(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, st)
}

// GetGeofence godoc
// @ID          getGeofence
// @Summary     Read a cached geofence
// @Tags        Geofences
// @Produce     json
// @Param       id  path  string  true  "Conversation ID"
// @Success     200  {object}  domain.GeofenceNotification
// @Failure     404  {object}  handlers.ErrorResponse  "Not cached"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /geofences/{id} [get]
func (h *Handlers) GetGeofence(c *gin.Context) {
	rec, err := h.geo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFor(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, rec)
}

// RemoveGeofence godoc
// @ID          removeGeofence
// @Summary     Remove a cached geofence
// @Description Deletes the record and unregisters its fence.
// @Tags        Geofences
// @Param       id  path  string  true  "Conversation ID"
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Not cached"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /geofences/{id} [delete]
func (h *Handlers) RemoveGeofence(c *gin.Context) {
	if err := h.geo.Remove(c.Request.Context(), c.Param("id")); err != nil {
		failFor(c, err, ErrCodeRemoveFailed)
		return
	}
	noContent(c)
}

// TriggerGeofence godoc
// @ID          triggerGeofence
// @Summary     Report a geofence transition
// @Description Posts the cached notification as an intent and removes the record. Expired records are removed without posting.
// @Tags        Geofences
// @Produce     json
// @Param       X-Device-ID  header  string  false  "Device identifier"  example(device-1)
// @Param       id           path    string  true   "Conversation ID"
// @Success     200  {object}  notify.Intent
// @Failure     404  {object}  handlers.ErrorResponse  "Not cached"
// @Failure     410  {object}  handlers.ErrorResponse  "Expired"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /geofences/{id}/trigger [post]
func (h *Handlers) TriggerGeofence(c *gin.Context) {
	in, err := h.geo.Trigger(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrGeofenceExpired) {
			fail(c, http.StatusGone, ErrCodeGeofenceExpired, "geofence expired")
			return
		}
		failFor(c, err, ErrCodeTriggerFailed)
		return
	}
	ok(c, http.StatusOK, in)
}

// PurgeGeofences godoc
// @ID          purgeGeofences
// @Summary     Purge expired geofences
// @Tags        Geofences
// @Produce     json
// @Success     200  {object}  handlers.PurgeResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /geofences/purge [post]
func (h *Handlers) PurgeGeofences(c *gin.Context) {
	n, err := h.geo.PurgeExpired(c.Request.Context())
	if err != nil {
		failFor(c, err, ErrCodePurgeFailed)
		return
	}
	ok(c, http.StatusOK, PurgeResponse{Deleted: n})
}
