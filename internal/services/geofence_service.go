// Package services – GeofenceService
//
// GeofenceService owns the caller-side lifecycle of the geofence cache. A
// server-pushed instruction arms a fence: the record is cached and the fence
// registered with the OS in one transaction. When the OS reports the
// transition the record is claimed, packaged into a notification intent and
// posted. Records past their expiration are dropped instead of fired.
//
// Cache errors are translated to the sentinels in errors.go so handlers can
// map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/domain"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/notify"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/repo"
)

// geofenceEvents counts cache lifecycle events by kind: armed, duplicate,
// rejected, triggered, expired, removed, purged.
var geofenceEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "stm_geofence_events_total",
		Help: "Geofence cache lifecycle events.",
	},
	[]string{"event"},
)

func init() {
	prometheus.MustRegister(geofenceEvents)
}

// GeofenceService coordinates the geofence cache, the OS registrar and the
// notification poster.
type GeofenceService struct {
	DB        *gorm.DB
	Registrar GeofenceRegistrar
	Poster    notify.Poster

	// Now is the clock used for expiry checks; nil means time.Now.
	Now func() time.Time
}

// NewGeofenceService constructs a GeofenceService. A nil registrar or poster
// falls back to the logging implementations.
func NewGeofenceService(db *gorm.DB, reg GeofenceRegistrar, p notify.Poster) *GeofenceService {
	if reg == nil {
		reg = LogRegistrar{}
	}
	if p == nil {
		p = notify.LogPoster{}
	}
	return &GeofenceService{DB: db, Registrar: reg, Poster: p, Now: time.Now}
}

func (s *GeofenceService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *GeofenceService) logger() *zerolog.Logger {
	l := log.With().Str("component", "geofence").Logger()
	return &l
}

// Arm validates rec, caches it and registers the fence. If registration fails
// the cached row is rolled back. A conversation that is already cached yields
// ErrGeofenceExists; the existing record is left untouched.
func (s *GeofenceService) Arm(ctx context.Context, rec domain.GeofenceNotification) (*domain.GeofenceNotification, error) {
	ctx, span := otel.Tracer("services/GeofenceService").Start(ctx, "Arm",
		trace.WithAttributes(attribute.String("geofence.conversation_id", rec.ConversationID)))
	defer span.End()

	rec.ConversationID = strings.TrimSpace(rec.ConversationID)
	if err := validateGeofence(rec); err != nil {
		geofenceEvents.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if rec.Expired(s.now()) {
		geofenceEvents.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: %s expired at %s", ErrGeofenceExpired, rec.ConversationID, rec.ExpiresAt().UTC().Format(time.RFC3339))
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.InsertGeofence(ctx, tx, &rec); err != nil {
			return err
		}
		return s.Registrar.Register(ctx, rec)
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, repo.ErrDuplicateGeofence) {
			geofenceEvents.WithLabelValues("duplicate").Inc()
			return nil, fmt.Errorf("%w: %s", ErrGeofenceExists, rec.ConversationID)
		}
		return nil, err
	}

	geofenceEvents.WithLabelValues("armed").Inc()
	s.logger().Debug().Str("conversation_id", rec.ConversationID).Msg("geofence armed")
	return &rec, nil
}

// Trigger handles the OS transition for conversationID. The record is
// claimed and deleted in one transaction; a live record is then posted as a
// notification intent, its fence unregistered, and the posted intent
// returned. An expired record is removed without posting and
// ErrGeofenceExpired returned. If posting fails the delete rolls back and the
// record stays cached. Concurrent transitions for one conversation fire at
// most once; the losers see ErrGeofenceNotFound.
func (s *GeofenceService) Trigger(ctx context.Context, conversationID string) (*notify.Intent, error) {
	ctx, span := otel.Tracer("services/GeofenceService").Start(ctx, "Trigger",
		trace.WithAttributes(attribute.String("geofence.conversation_id", conversationID)))
	defer span.End()

	conversationID = strings.TrimSpace(conversationID)
	var (
		in      notify.Intent
		expired bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := repo.GetGeofence(ctx, tx, conversationID)
		if err != nil {
			return err
		}
		claimed, err := repo.DeleteGeofence(ctx, tx, conversationID)
		if err != nil {
			return err
		}
		if !claimed {
			return repo.ErrNotFound
		}
		if rec.Expired(s.now()) {
			expired = true
			return nil
		}
		in = notify.NewGeofenceIntent(*rec)
		if err := s.Poster.Post(ctx, in); err != nil {
			return fmt.Errorf("post notification %s: %w", conversationID, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrGeofenceNotFound
		}
		span.RecordError(err)
		return nil, err
	}

	s.unregister(ctx, conversationID)
	if expired {
		geofenceEvents.WithLabelValues("expired").Inc()
		return nil, fmt.Errorf("%w: %s", ErrGeofenceExpired, conversationID)
	}
	geofenceEvents.WithLabelValues("triggered").Inc()
	return &in, nil
}

// unregister releases the OS fence. Failures are logged; the record is gone
// either way.
func (s *GeofenceService) unregister(ctx context.Context, conversationID string) {
	if err := s.Registrar.Unregister(ctx, conversationID); err != nil {
		s.logger().Warn().Err(err).Str("conversation_id", conversationID).Msg("unregister geofence failed")
	}
}

// Get returns the cached record for conversationID.
func (s *GeofenceService) Get(ctx context.Context, conversationID string) (*domain.GeofenceNotification, error) {
	rec, err := repo.GetGeofence(ctx, s.DB, strings.TrimSpace(conversationID))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrGeofenceNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List returns a page of cached records, soonest expiration first, plus the
// total count. Invalid page/pageSize fall back to 1 and 20.
func (s *GeofenceService) List(ctx context.Context, page, pageSize int) ([]domain.GeofenceNotification, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountGeofences(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.GeofenceNotification{}, 0, nil
	}
	items, err := repo.ListGeofences(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// Remove unregisters and deletes the fence for conversationID.
func (s *GeofenceService) Remove(ctx context.Context, conversationID string) error {
	conversationID = strings.TrimSpace(conversationID)
	ok, err := repo.DeleteGeofence(ctx, s.DB, conversationID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGeofenceNotFound
	}
	s.unregister(ctx, conversationID)
	geofenceEvents.WithLabelValues("removed").Inc()
	return nil
}

// PurgeExpired deletes every expired record, unregisters the fences and
// returns how many were removed.
func (s *GeofenceService) PurgeExpired(ctx context.Context) (int, error) {
	ids, err := repo.DeleteExpiredGeofences(ctx, s.DB, s.now())
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.unregister(ctx, id)
	}
	if len(ids) > 0 {
		geofenceEvents.WithLabelValues("purged").Add(float64(len(ids)))
		s.logger().Info().Int("count", len(ids)).Msg("expired geofences purged")
	}
	return len(ids), nil
}

// RunPurger calls PurgeExpired every interval until ctx is done. A
// non-positive interval disables the sweeper.
func (s *GeofenceService) RunPurger(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
				s.logger().Error().Err(err).Msg("purge expired geofences failed")
			}
		}
	}
}

// Stats summarizes the cache at the current instant.
func (s *GeofenceService) Stats(ctx context.Context) (repo.CacheStats, error) {
	return repo.GeofenceStats(ctx, s.DB, s.now())
}

func validateGeofence(rec domain.GeofenceNotification) error {
	switch {
	case rec.ConversationID == "":
		return fmt.Errorf("%w: conversation id is blank", ErrInvalidGeofence)
	case math.IsNaN(rec.Lat) || rec.Lat < -90 || rec.Lat > 90:
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidGeofence, rec.Lat)
	case math.IsNaN(rec.Lon) || rec.Lon < -180 || rec.Lon > 180:
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidGeofence, rec.Lon)
	case !(rec.Radius > 0) || math.IsInf(float64(rec.Radius), 0):
		return fmt.Errorf("%w: radius must be positive", ErrInvalidGeofence)
	}
	return nil
}
