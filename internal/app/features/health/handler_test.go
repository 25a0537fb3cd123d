package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scanmenu/admindesk/internal/app/features/health"
	"github.com/scanmenu/admindesk/internal/testutil"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	API      string `json:"api"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, response) {
	t.Helper()
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.Serve(rec, req)

	var out response
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, out
}

func TestServe_DatabaseAndAPIUp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), fakePinger{}, zap.NewNop())

	rec, out := serve(t, handler)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	if out.Status != "ok" || out.Database != "connected" || out.API != "reachable" {
		t.Errorf("unexpected response %+v", out)
	}
}

func TestServe_APIDown_Degraded(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), fakePinger{err: errors.New("connection refused")}, zap.NewNop())

	rec, out := serve(t, handler)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if out.Status != "degraded" || out.API != "unreachable" {
		t.Errorf("unexpected response %+v", out)
	}
}

func TestLive_NoDependencies(t *testing.T) {
	h := health.NewHandler(nil, fakePinger{err: errors.New("down")}, zap.NewNop())
	rec := httptest.NewRecorder()
	health.Routes(h).ServeHTTP(rec, httptest.NewRequest("GET", "/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got response
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "ok" {
		t.Errorf("status = %q, want ok", got.Status)
	}
	if rec.Header().Get("Cache-Control") == "" {
		t.Error("expected no-cache headers")
	}
}
