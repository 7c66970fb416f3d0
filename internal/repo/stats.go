package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/domain"
)

// CacheStats summarizes the geofence cache.
//
//   - Total:          cached records
//   - Expired:        records past their expiration date at the given instant
//   - NextExpiration: soonest expiration among live records, nil when none
type CacheStats struct {
	Total          int64      `json:"total"`
	Expired        int64      `json:"expired"`
	NextExpiration *time.Time `json:"next_expiration,omitempty"`
}

// GeofenceStats computes CacheStats relative to now.
func GeofenceStats(ctx context.Context, db *gorm.DB, now time.Time) (CacheStats, error) {
	var st CacheStats
	base := db.WithContext(ctx).Model(&domain.GeofenceNotification{})

	if err := base.Count(&st.Total).Error; err != nil {
		return CacheStats{}, err
	}
	if st.Total == 0 {
		return st, nil
	}

	nowMS := now.UnixMilli()
	if err := db.WithContext(ctx).Model(&domain.GeofenceNotification{}).
		Where(ColumnExpirationDate+" < ?", nowMS).
		Count(&st.Expired).Error; err != nil {
		return CacheStats{}, err
	}

	var next []int64
	if err := db.WithContext(ctx).Model(&domain.GeofenceNotification{}).
		Where(ColumnExpirationDate+" >= ?", nowMS).
		Order(ColumnExpirationDate+" asc").
		Limit(1).
		Pluck(ColumnExpirationDate, &next).Error; err != nil {
		return CacheStats{}, err
	}
	if len(next) == 1 {
		t := time.UnixMilli(next[0]).UTC()
		st.NextExpiration = &t
	}
	return st, nil
}
