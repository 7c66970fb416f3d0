package repo

import (
	"context"
	"testing"
	"time"
)

func TestGeofenceStats_Empty(t *testing.T) {
	db := newCacheDB(t)
	st, err := GeofenceStats(context.Background(), db, time.Now())
	if err != nil {
		t.Fatalf("GeofenceStats: %v", err)
	}
	if st.Total != 0 || st.Expired != 0 || st.NextExpiration != nil {
		t.Fatalf("unexpected stats for empty cache: %+v", st)
	}
}

func TestGeofenceStats_CountsAndNextExpiration(t *testing.T) {
	db := newCacheDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	exps := map[string]time.Time{
		"gone":  now.Add(-time.Minute),
		"soon":  now.Add(10 * time.Minute),
		"later": now.Add(2 * time.Hour),
	}
	for id, exp := range exps {
		rec := sampleGeofence(id)
		rec.ExpirationDate = exp.UnixMilli()
		if err := InsertGeofence(ctx, db, rec); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	st, err := GeofenceStats(ctx, db, now)
	if err != nil {
		t.Fatalf("GeofenceStats: %v", err)
	}
	if st.Total != 3 || st.Expired != 1 {
		t.Fatalf("unexpected counts: %+v", st)
	}
	if st.NextExpiration == nil || !st.NextExpiration.Equal(exps["soon"]) {
		t.Fatalf("next expiration = %v, want %v", st.NextExpiration, exps["soon"])
	}
}

func TestGeofenceStats_AllExpired(t *testing.T) {
	db := newCacheDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := sampleGeofence("gone")
	rec.ExpirationDate = now.Add(-time.Hour).UnixMilli()
	if err := InsertGeofence(ctx, db, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	st, err := GeofenceStats(ctx, db, now)
	if err != nil || st.Total != 1 || st.Expired != 1 || st.NextExpiration != nil {
		t.Fatalf("unexpected stats: %+v err=%v", st, err)
	}
}
