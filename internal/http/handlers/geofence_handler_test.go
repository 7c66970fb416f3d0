package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/domain"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/notify"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/repo"
	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/services"
)

var handlerNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// ---------- real service over an in-memory cache ----------

func newGeofenceHandlers(t *testing.T) (*gin.Engine, *notify.ChanPoster) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:geofence_handlers_%s?mode=memory&cache=shared", uuid.NewString())
	dbh := repo.NewDBHelper(dsn, repo.DatabaseVersion)
	db, err := dbh.Open(context.Background())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })

	poster := notify.NewChanPoster(4)
	svc := services.NewGeofenceService(db, services.LogRegistrar{}, poster)
	svc.Now = func() time.Time { return handlerNow }

	return routes(New(svc)), poster
}

func routes(h *Handlers) *gin.Engine {
	r := gin.New()
	r.POST("/geofences", h.ArmGeofence)
	r.GET("/geofences", h.ListGeofences)
	r.GET("/geofences/stats", h.GeofenceStats)
	r.POST("/geofences/purge", h.PurgeGeofences)
	r.GET("/geofences/:id", h.GetGeofence)
	r.DELETE("/geofences/:id", h.RemoveGeofence)
	r.POST("/geofences/:id/trigger", h.TriggerGeofence)
	return r
}

func armBody(id string, expiresIn time.Duration) map[string]any {
	return map[string]any{
		"conversation_id": id,
		"lat":             45.523064,
		"lon":             -122.676483,
		"radius":          150,
		"channel_id":      "ch-42",
		"message_body":    "<b>Free</b> coffee",
		"message_title":   "Nearby",
		"message_type":    "user_message",
		"expiration_date": handlerNow.Add(expiresIn).UnixMilli(),
	}
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var rdr *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return er.Code
}

// ---------- tests ----------

func TestArmGeofence_CreatedThenConflict(t *testing.T) {
	r, _ := newGeofenceHandlers(t)

	w := do(r, http.MethodPost, "/geofences", armBody("conv-1", time.Hour))
	if w.Code != http.StatusCreated {
		t.Fatalf("arm: %d %s", w.Code, w.Body.String())
	}
	var rec domain.GeofenceNotification
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.ConversationID != "conv-1" || rec.Radius != 150 || rec.ChannelID != "ch-42" {
		t.Fatalf("unexpected record %+v", rec)
	}

	// Re-arming is rejected and the first instruction survives.
	again := armBody("conv-1", 2*time.Hour)
	again["message_title"] = "Replaced"
	w = do(r, http.MethodPost, "/geofences", again)
	if w.Code != http.StatusConflict || errCode(t, w) != ErrCodeGeofenceExists {
		t.Fatalf("re-arm: %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/geofences/conv-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.MessageTitle != "Nearby" {
		t.Fatalf("cached record overwritten: %+v", rec)
	}
}

func TestArmGeofence_Rejections(t *testing.T) {
	r, _ := newGeofenceHandlers(t)

	noLat := armBody("conv-2", time.Hour)
	delete(noLat, "lat")
	badRadius := armBody("conv-3", time.Hour)
	badRadius["radius"] = 0
	blankID := armBody("   ", time.Hour)

	cases := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"malformed", "not an object", http.StatusBadRequest, ErrCodeBadRequest},
		{"missing lat", noLat, http.StatusBadRequest, ErrCodeBadRequest},
		{"zero radius", badRadius, http.StatusBadRequest, ErrCodeBadRequest},
		{"blank id", blankID, http.StatusBadRequest, ErrCodeBadRequest},
		{"expired", armBody("conv-4", -time.Minute), http.StatusUnprocessableEntity, ErrCodeGeofenceExpired},
	}
	for _, tc := range cases {
		w := do(r, http.MethodPost, "/geofences", tc.body)
		if w.Code != tc.status || errCode(t, w) != tc.code {
			t.Fatalf("%s: %d %s", tc.name, w.Code, w.Body.String())
		}
	}

	w := do(r, http.MethodGet, "/geofences/stats", nil)
	var st repo.CacheStats
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if st.Total != 0 {
		t.Fatalf("rejected instructions were cached: %+v", st)
	}
}

func TestTriggerGeofence(t *testing.T) {
	r, poster := newGeofenceHandlers(t)

	if w := do(r, http.MethodPost, "/geofences", armBody("conv-1", time.Hour)); w.Code != http.StatusCreated {
		t.Fatalf("arm: %d", w.Code)
	}

	w := do(r, http.MethodPost, "/geofences/conv-1/trigger", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("trigger: %d %s", w.Code, w.Body.String())
	}
	var in notify.Intent
	if err := json.Unmarshal(w.Body.Bytes(), &in); err != nil {
		t.Fatalf("decode intent: %v", err)
	}
	if in.Action != notify.ActionNotification ||
		in.StringExtra(notify.ExtraMessageID) != "conv-1" ||
		in.StringExtra(notify.ExtraNotificationBody) != "Free coffee" ||
		in.StringExtra(notify.ExtraNotificationCategory) != notify.CategoryGeofence {
		t.Fatalf("unexpected intent %+v", in)
	}

	select {
	case posted := <-poster.C:
		if posted.StringExtra(notify.ExtraChannelID) != "ch-42" {
			t.Fatalf("unexpected posted intent %+v", posted)
		}
	default:
		t.Fatalf("intent was not posted")
	}

	// Fired once; the record is gone.
	if w := do(r, http.MethodPost, "/geofences/conv-1/trigger", nil); w.Code != http.StatusNotFound {
		t.Fatalf("second trigger: %d", w.Code)
	}
}

func TestRemoveGeofence(t *testing.T) {
	r, _ := newGeofenceHandlers(t)

	if w := do(r, http.MethodDelete, "/geofences/nope", nil); w.Code != http.StatusNotFound || errCode(t, w) != ErrCodeNotFound {
		t.Fatalf("remove missing: %d", w.Code)
	}
	do(r, http.MethodPost, "/geofences", armBody("conv-1", time.Hour))
	if w := do(r, http.MethodDelete, "/geofences/conv-1", nil); w.Code != http.StatusNoContent {
		t.Fatalf("remove: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/geofences/conv-1", nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after remove: %d", w.Code)
	}
}

func TestListGeofences_Pagination(t *testing.T) {
	r, _ := newGeofenceHandlers(t)

	w := do(r, http.MethodGet, "/geofences", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"geofences":[]`)) {
		t.Fatalf("empty list: %d %s", w.Code, w.Body.String())
	}

	for i := 1; i <= 3; i++ {
		do(r, http.MethodPost, "/geofences", armBody(fmt.Sprintf("conv-%d", i), time.Duration(4-i)*time.Hour))
	}

	w = do(r, http.MethodGet, "/geofences?page=1&page_size=2", nil)
	var resp ListGeofencesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Geofences) != 2 || resp.Geofences[0].ConversationID != "conv-3" {
		t.Fatalf("unexpected page %+v", resp.Geofences)
	}
	want := Pagination{Page: 1, PageSize: 2, Total: 3, TotalPages: 2, HasNext: true}
	if resp.Pagination != want {
		t.Fatalf("pagination = %+v; want %+v", resp.Pagination, want)
	}

	// Out-of-range paging is clamped rather than rejected.
	w = do(r, http.MethodGet, "/geofences?page=0&page_size=1000", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Pagination.Page != 1 || resp.Pagination.PageSize != 100 || len(resp.Geofences) != 3 {
		t.Fatalf("clamped page = %+v", resp.Pagination)
	}
}

// ---------- stubbed service for expiry and failure paths ----------

type stubGeo struct {
	GeofenceService
	triggerErr error
	purgeN     int
	purgeErr   error
	listErr    error
}

func (s stubGeo) Trigger(context.Context, string) (*notify.Intent, error) {
	return nil, s.triggerErr
}

func (s stubGeo) PurgeExpired(context.Context) (int, error) { return s.purgeN, s.purgeErr }

func (s stubGeo) List(context.Context, int, int) ([]domain.GeofenceNotification, int64, error) {
	return nil, 0, s.listErr
}

func TestTriggerGeofence_Expired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := routes(New(stubGeo{triggerErr: fmt.Errorf("%w: conv-1", services.ErrGeofenceExpired)}))

	w := do(r, http.MethodPost, "/geofences/conv-1/trigger", nil)
	if w.Code != http.StatusGone || errCode(t, w) != ErrCodeGeofenceExpired {
		t.Fatalf("expired trigger: %d %s", w.Code, w.Body.String())
	}
}

func TestPurgeGeofences(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := do(routes(New(stubGeo{purgeN: 3})), http.MethodPost, "/geofences/purge", nil)
	if w.Code != http.StatusOK || w.Body.String() != `{"deleted":3}` {
		t.Fatalf("purge: %d %s", w.Code, w.Body.String())
	}

	w = do(routes(New(stubGeo{purgeErr: errors.New("locked")})), http.MethodPost, "/geofences/purge", nil)
	if w.Code != http.StatusInternalServerError || errCode(t, w) != ErrCodePurgeFailed {
		t.Fatalf("purge failure: %d %s", w.Code, w.Body.String())
	}
}

func TestListGeofences_Failure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := do(routes(New(stubGeo{listErr: errors.New("locked")})), http.MethodGet, "/geofences", nil)
	if w.Code != http.StatusInternalServerError || errCode(t, w) != ErrCodeListFailed {
		t.Fatalf("list failure: %d %s", w.Code, w.Body.String())
	}
}
