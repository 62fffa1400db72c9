package api

import (
	"net/http"
	"testing"
	"time"
)

func TestIPRateLimiterAllowsUnderBurst(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 3, CleanupInterval: time.Minute})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("expected request %d to be allowed within burst", i)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("expected the request beyond burst capacity to be rejected")
	}
}

func TestIPRateLimiterTracksPerIPIndependently(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	if !rl.Allow("1.1.1.1") {
		t.Fatal("expected first request from 1.1.1.1 to be allowed")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("expected a different IP to have its own independent budget")
	}
}

func TestIPRateLimiterGetStats(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	rl.Allow("1.1.1.1")
	rl.Allow("1.1.1.1")

	stats := rl.GetStats()
	if stats["allowed"] != 1 {
		t.Errorf("expected 1 allowed, got %d", stats["allowed"])
	}
	if stats["rejected"] != 1 {
		t.Errorf("expected 1 rejected, got %d", stats["rejected"])
	}
}

func TestWebSocketRateLimiterEnforcesPerIPCap(t *testing.T) {
	wrl := NewWebSocketRateLimiter(2)

	if !wrl.Allow("5.5.5.5") || !wrl.Allow("5.5.5.5") {
		t.Fatal("expected the first two connections to be allowed")
	}
	if wrl.Allow("5.5.5.5") {
		t.Error("expected a third concurrent connection to be rejected")
	}

	wrl.Release("5.5.5.5")
	if !wrl.Allow("5.5.5.5") {
		t.Error("expected a connection slot freed by Release to be reusable")
	}
}

func TestGetClientIPPrefersForwardedHeader(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	r.RemoteAddr = "10.0.0.1:5000"
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.2")

	if got := GetClientIP(r); got != "203.0.113.5" {
		t.Errorf("expected forwarded IP, got %q", got)
	}
}

func TestIsAllowedOriginAllowsLocalhost(t *testing.T) {
	if !IsAllowedOrigin("http://localhost:3000") {
		t.Error("expected localhost origin to be allowed")
	}
	if IsAllowedOrigin("http://evil.example.com") {
		t.Error("expected an unlisted origin to be rejected")
	}
	if IsAllowedOrigin("") {
		t.Error("expected an empty origin to be rejected")
	}
}
