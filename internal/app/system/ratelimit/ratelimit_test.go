package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowsBurstThenBlocks(t *testing.T) {
	l := New(3, time.Minute)
	defer l.Stop()
	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("k") {
		t.Error("4th attempt should be blocked")
	}
	if !l.Allow("other") {
		t.Error("keys must not share a bucket")
	}
}

func TestLimiter_Refills(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, time.Minute)
	defer l.Stop()
	l.now = func() time.Time { return now }

	l.Allow("k")
	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("bucket should be empty")
	}
	now = now.Add(31 * time.Second)
	if !l.Allow("k") {
		t.Error("one token should have refilled after half the window")
	}
}

func TestLimiter_ResetAndSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, time.Minute)
	defer l.Stop()
	l.now = func() time.Time { return now }

	l.Allow("a")
	if l.Allow("a") {
		t.Fatal("expected block")
	}
	l.Reset("a")
	if !l.Allow("a") {
		t.Error("expected allow after Reset")
	}

	l.Allow("b")
	now = now.Add(3 * time.Minute)
	l.sweep()
	if got := l.Len(); got != 0 {
		t.Errorf("Len after sweep = %d, want 0", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{name: "forwarded first hop", header: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, remote: "10.0.0.1:4000", want: "203.0.113.5"},
		{name: "real ip", header: map[string]string{"X-Real-IP": " 198.51.100.7 "}, remote: "10.0.0.1:4000", want: "198.51.100.7"},
		{name: "remote addr", remote: "192.0.2.9:1234", want: "192.0.2.9"},
		{name: "remote without port", remote: "192.0.2.9", want: "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/login", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter_PerEmail(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer ll.Stop()
	r := httptest.NewRequest("POST", "/login", nil)

	for i := 0; i < 2; i++ {
		if ok, _ := ll.Check(r, "Admin@Example.com"); !ok {
			t.Fatalf("attempt %d should pass", i+1)
		}
	}
	ok, msg := ll.Check(r, " admin@example.com ")
	if ok || msg == "" {
		t.Fatalf("third attempt for same email should be blocked with a message, got ok=%v msg=%q", ok, msg)
	}

	ll.ResetEmail("ADMIN@example.com")
	if ok, _ := ll.Check(r, "admin@example.com"); !ok {
		t.Error("expected allow after ResetEmail")
	}
}

func TestLoginLimiter_PerIP(t *testing.T) {
	ll := NewLoginLimiterWithConfig(1, time.Minute, 100, time.Minute)
	defer ll.Stop()
	r := httptest.NewRequest("POST", "/login", nil)

	if ok, _ := ll.Check(r, "a@example.com"); !ok {
		t.Fatal("first attempt should pass")
	}
	if ok, _ := ll.Check(r, "b@example.com"); ok {
		t.Error("second attempt from same IP should be blocked regardless of email")
	}
}
