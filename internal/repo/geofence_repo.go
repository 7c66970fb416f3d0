package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicateGeofence is returned when a record for the conversation is
// already cached. Inserts never overwrite.
var ErrDuplicateGeofence = errors.New("geofence already cached for conversation")

// InsertGeofence stores rec inside its own transaction. A second insert for
// the same conversation fails with ErrDuplicateGeofence.
func InsertGeofence(ctx context.Context, db *gorm.DB, rec *domain.GeofenceNotification) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(rec).Error
	})
	if err != nil {
		if IsDuplicate(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateGeofence, rec.ConversationID)
		}
		return fmt.Errorf("insert geofence %s: %w", rec.ConversationID, err)
	}
	return nil
}

// GetGeofence reads the record cached for conversationID, or ErrNotFound.
func GetGeofence(ctx context.Context, db *gorm.DB, conversationID string) (*domain.GeofenceNotification, error) {
	var rec domain.GeofenceNotification
	err := db.WithContext(ctx).
		Where(ColumnConversationID+" = ?", conversationID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListGeofences returns a page of cached records ordered by expiration date,
// soonest first.
func ListGeofences(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.GeofenceNotification, error) {
	var out []domain.GeofenceNotification
	err := db.WithContext(ctx).
		Order(ColumnExpirationDate + " asc").
		Order(ColumnConversationID + " asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountGeofences returns the number of cached records.
func CountGeofences(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.GeofenceNotification{}).Count(&total).Error
	return total, err
}

// DeleteGeofence removes the record for conversationID and reports whether a
// row existed.
func DeleteGeofence(ctx context.Context, db *gorm.DB, conversationID string) (bool, error) {
	var affected int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(ColumnConversationID+" = ?", conversationID).
			Delete(&domain.GeofenceNotification{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, fmt.Errorf("delete geofence %s: %w", conversationID, err)
	}
	return affected > 0, nil
}

// DeleteExpiredGeofences removes every record whose expiration date is before
// now and returns the removed conversation ids.
func DeleteExpiredGeofences(ctx context.Context, db *gorm.DB, now time.Time) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&domain.GeofenceNotification{}).
			Where(ColumnExpirationDate+" < ?", now.UnixMilli())
		if err := q.Pluck(ColumnConversationID, &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Where(ColumnConversationID+" IN ?", ids).
			Delete(&domain.GeofenceNotification{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("delete expired geofences: %w", err)
	}
	return ids, nil
}

// IsDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey.
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite: "UNIQUE constraint failed"; Postgres: "duplicate key value".
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
