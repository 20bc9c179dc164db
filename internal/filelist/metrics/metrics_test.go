package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRefresh(t *testing.T) {
	before := testutil.ToFloat64(RefreshesTotal.WithLabelValues("manual", "ok"))
	ObserveRefresh("manual", "ok", 3*time.Millisecond)
	after := testutil.ToFloat64(RefreshesTotal.WithLabelValues("manual", "ok"))

	if after-before != 1 {
		t.Errorf("refresh counter moved by %v, want 1", after-before)
	}
}

func TestObservePublish(t *testing.T) {
	ObservePublish(10, 4, 123, 7)

	if got := testutil.ToFloat64(DirectoryEntries); got != 10 {
		t.Errorf("DirectoryEntries = %v", got)
	}
	if got := testutil.ToFloat64(MatchedEntries); got != 4 {
		t.Errorf("MatchedEntries = %v", got)
	}
	if got := testutil.ToFloat64(SnapshotBytes); got != 123 {
		t.Errorf("SnapshotBytes = %v", got)
	}
	if got := testutil.ToFloat64(SnapshotSequence); got != 7 {
		t.Errorf("SnapshotSequence = %v", got)
	}
}

func TestObserveRetarget(t *testing.T) {
	ObserveRetarget(nil)
	if got := testutil.ToFloat64(WatchArmed); got != 1 {
		t.Errorf("WatchArmed after success = %v", got)
	}
	ObserveRetarget(errors.New("boom"))
	if got := testutil.ToFloat64(WatchArmed); got != 0 {
		t.Errorf("WatchArmed after failure = %v", got)
	}
}

func TestHandlerServesCollectors(t *testing.T) {
	ObserveRefresh("startup", "ok", time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "filelist_refreshes_total") {
		t.Error("metrics output missing filelist_refreshes_total")
	}
}

func TestEchoMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(EchoMiddleware())
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/ping", "200"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/ping", "200"))

	if after-before != 1 {
		t.Errorf("request counter moved by %v, want 1", after-before)
	}
}
