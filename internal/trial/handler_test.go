package trial

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"trialwatch/internal/clock"
)

const testCronSecret = "cron-secret"

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, _, _ := newTestService(false, false)
	h := NewHandler(svc, newTestLogger(), testCronSecret)

	router := gin.New()
	h.RegisterRoutes(router, func(c *gin.Context) { c.Next() })
	return router, svc
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func trialBody(name string, expires time.Time) string {
	return `{
		"serviceName":"` + name + `",
		"email":"me@example.com",
		"cardLast4":"4242",
		"startedAt":"` + testNow.AddDate(0, 0, -7).Format(time.RFC3339) + `",
		"expiresAt":"` + expires.Format(time.RFC3339) + `",
		"category":"streaming",
		"cost":15.49
	}`
}

func TestHandler_CreateAndFetch(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/trials", trialBody("Netflix", testNow.AddDate(0, 0, 14)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data Trial `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Data.ID == uuid.Nil {
		t.Fatal("created trial has no id")
	}
	if created.Data.Status != StatusActive {
		t.Fatalf("derived status = %q, want active", created.Data.Status)
	}
	if created.Data.NotifyDaysBefore != 3 {
		t.Fatalf("NotifyDaysBefore = %d, want default 3", created.Data.NotifyDaysBefore)
	}

	rec = doJSON(router, http.MethodGet, "/api/trials/"+created.Data.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
}

func TestHandler_CreateValidationError(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{
		"serviceName":"Netflix",
		"email":"me@example.com",
		"cardLast4":"42",
		"startedAt":"2026-03-01T00:00:00Z",
		"expiresAt":"2026-03-31T00:00:00Z",
		"category":"streaming",
		"cost":15.49
	}`

	rec := doJSON(router, http.MethodPost, "/api/trials", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cardLast4") {
		t.Fatalf("response does not name the failing field: %s", rec.Body.String())
	}
}

func TestHandler_CreateExplicitZeroNotifyWindow(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{
		"serviceName":"Netflix",
		"email":"me@example.com",
		"cardLast4":"4242",
		"startedAt":"2026-03-01T00:00:00Z",
		"expiresAt":"2026-03-31T00:00:00Z",
		"notifyDaysBefore":0,
		"category":"streaming",
		"cost":15.49
	}`

	rec := doJSON(router, http.MethodPost, "/api/trials", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (zero window must not take the default)", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "notifyDaysBefore") {
		t.Fatalf("response does not name the failing field: %s", rec.Body.String())
	}
}

func TestHandler_GetNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/trials/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_GetInvalidID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/trials/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_UpdatePathWinsOverPayloadID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/trials", trialBody("Netflix", testNow.AddDate(0, 0, 14)))
	var created struct {
		Data Trial `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	body := `{
		"id":"` + uuid.NewString() + `",
		"serviceName":"Netflix Premium",
		"email":"me@example.com",
		"cardLast4":"4242",
		"startedAt":"2026-03-01T00:00:00Z",
		"expiresAt":"` + testNow.AddDate(0, 0, 14).Format(time.RFC3339) + `",
		"category":"streaming",
		"cost":19.99
	}`

	rec = doJSON(router, http.MethodPut, "/api/trials/"+created.Data.ID.String(), body)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	var updated struct {
		Data Trial `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	if updated.Data.ID != created.Data.ID {
		t.Fatalf("update changed the id: %v -> %v", created.Data.ID, updated.Data.ID)
	}
	if updated.Data.ServiceName != "Netflix Premium" {
		t.Fatalf("ServiceName = %q", updated.Data.ServiceName)
	}
}

func TestHandler_Delete(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/trials", trialBody("Netflix", testNow.AddDate(0, 0, 14)))
	var created struct {
		Data Trial `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rec = doJSON(router, http.MethodDelete, "/api/trials/"+created.Data.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("unexpected delete body: %s", rec.Body.String())
	}

	rec = doJSON(router, http.MethodDelete, "/api/trials/"+created.Data.ID.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestHandler_Summary(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(router, http.MethodPost, "/api/trials", trialBody("a", testNow.AddDate(0, 0, 1)))
	doJSON(router, http.MethodPost, "/api/trials", trialBody("b", testNow.AddDate(0, 0, 20)))

	rec := doJSON(router, http.MethodGet, "/api/trials/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Data Summary `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if resp.Data.Active != 1 || resp.Data.ExpiringSoon != 1 {
		t.Fatalf("unexpected summary: %+v", resp.Data)
	}
}

func TestHandler_ClosestEmpty(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/trials/closest", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No active trials found") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_Closest(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(router, http.MethodPost, "/api/trials", trialBody("soon", testNow.Add(48*time.Hour)))
	doJSON(router, http.MethodPost, "/api/trials", trialBody("later", testNow.AddDate(0, 0, 20)))

	rec := doJSON(router, http.MethodGet, "/api/trials/closest", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Trial              Trial `json:"trial"`
		SecondsUntilExpiry int64 `json:"secondsUntilExpiry"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode closest: %v", err)
	}
	if resp.Trial.ServiceName != "soon" {
		t.Fatalf("closest = %q, want soon", resp.Trial.ServiceName)
	}
	if resp.SecondsUntilExpiry != 48*60*60 {
		t.Fatalf("secondsUntilExpiry = %d, want %d", resp.SecondsUntilExpiry, 48*60*60)
	}
}

func TestHandler_CronAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/cron/update-trials", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no secret: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/cron/update-trials", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret: status = %d, want 401", rec.Code)
	}
}

func TestHandler_CronRefresh(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(router, http.MethodPost, "/api/trials", trialBody("a", testNow.AddDate(0, 0, 14)))

	req := httptest.NewRequest(http.MethodPost, "/api/cron/update-trials", nil)
	req.Header.Set("Authorization", "Bearer "+testCronSecret)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success       bool `json:"success"`
		TrialsChecked int  `json:"trialsChecked"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode cron response: %v", err)
	}
	if !resp.Success || resp.TrialsChecked != 1 {
		t.Fatalf("unexpected cron response: %+v", resp)
	}
}

func TestHandler_ScopedAnonymousIsUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := NewMemStore()
	svc := NewService(store, clock.NewFakeClock(testNow), Options{OwnerScoping: true})
	h := NewHandler(svc, newTestLogger(), testCronSecret)

	router := gin.New()
	h.RegisterRoutes(router, func(c *gin.Context) { c.Next() })

	rec := doJSON(router, http.MethodGet, "/api/trials", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
