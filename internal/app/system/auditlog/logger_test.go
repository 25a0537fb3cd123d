package auditlog_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/scanmenu/admindesk/internal/app/store/audit"
	"github.com/scanmenu/admindesk/internal/app/system/auditlog"
	"github.com/scanmenu/admindesk/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, auditlog.Actor{ID: "a"}, "admin")
	logger.AdminAction(ctx, auditlog.Actor{ID: "a"}, audit.EventUserDeleted, audit.TargetUser, "u1", nil, nil)

	events, err := logger.Activity(ctx, "a", 10)
	if err != nil || len(events) != 0 {
		t.Errorf("Activity() = %v, %v; want empty", events, err)
	}
}

func TestActorFromRequest(t *testing.T) {
	req := httptest.NewRequest("POST", "/admin/businesses/b1/approve", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.7, 172.16.0.1")
	req.Header.Set("User-Agent", "TestBrowser/1.0")
	req.Header.Set("X-Request-ID", "req-1")

	a := auditlog.ActorFromRequest(req, "admin-1", "root@scanmenu.test")
	if a.IP != "10.0.0.7" {
		t.Errorf("IP: got %q, want 10.0.0.7", a.IP)
	}
	if a.UserAgent != "TestBrowser/1.0" || a.RequestID != "req-1" || a.ID != "admin-1" {
		t.Errorf("unexpected actor %+v", a)
	}
}

func observed(cfg auditlog.Config) (*auditlog.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return auditlog.New(nil, zap.New(core), cfg), logs
}

func TestLogger_ConfigLog_WritesZap(t *testing.T) {
	logger, logs := observed(auditlog.Config{Admin: "log"})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.AdminAction(ctx, auditlog.Actor{ID: "admin-1"}, audit.EventBusinessApproved,
		audit.TargetBusiness, "biz-1", nil, map[string]string{"name": "Blue Cup"})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event_type"] != audit.EventBusinessApproved || fields["target_id"] != "biz-1" {
		t.Errorf("unexpected fields %v", fields)
	}
	if fields["detail_name"] != "Blue Cup" {
		t.Errorf("detail_name: got %v", fields["detail_name"])
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Errorf("level: got %v, want info", entries[0].Level)
	}
}

func TestLogger_FailedActionWarns(t *testing.T) {
	logger, logs := observed(auditlog.Config{Admin: "all"})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.AdminAction(ctx, auditlog.Actor{ID: "admin-1"}, audit.EventBusinessApproved,
		audit.TargetBusiness, "biz-1", errors.New("network error"), nil)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level: got %v, want warn", entries[0].Level)
	}
	if entries[0].ContextMap()["failure_reason"] != "network error" {
		t.Errorf("failure_reason: got %v", entries[0].ContextMap()["failure_reason"])
	}
}

func TestLogger_ConfigOff_PerCategory(t *testing.T) {
	logger, logs := observed(auditlog.Config{Auth: "off", Admin: "log"})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.LoginSuccess(ctx, auditlog.Actor{ID: "admin-1"}, "admin")
	logger.Logout(ctx, auditlog.Actor{ID: "admin-1"})
	if logs.Len() != 0 {
		t.Errorf("expected no auth entries, got %d", logs.Len())
	}

	logger.AdminAction(ctx, auditlog.Actor{ID: "admin-1"}, audit.EventUserDeleted, audit.TargetUser, "u1", nil, nil)
	if logs.Len() != 1 {
		t.Errorf("expected 1 admin entry, got %d", logs.Len())
	}
}

func TestLogger_Log_ConfigDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Auth:  "db",
		Admin: "db",
	})

	logger.LoginSuccess(ctx, auditlog.Actor{ID: "admin-1", Email: "root@scanmenu.test"}, "admin")
	logger.AdminAction(ctx, auditlog.Actor{ID: "admin-1"}, audit.EventUserRoleChanged,
		audit.TargetUser, "u7", nil, map[string]string{"role": "admin"})

	events, err := logger.Activity(ctx, "admin-1", 10)
	if err != nil {
		t.Fatalf("Activity failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventType != audit.EventUserRoleChanged {
		t.Errorf("EventType: got %q, want %q", events[0].EventType, audit.EventUserRoleChanged)
	}
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Auth:  "off",
		Admin: "off",
	})

	logger.LoginFailed(ctx, auditlog.Actor{Email: "x@example.com"}, "invalid credentials")
	logger.AdminAction(ctx, auditlog.Actor{ID: "admin-1"}, audit.EventUserDeleted, audit.TargetUser, "u1", nil, nil)

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no events when config is 'off'")
	}
}
