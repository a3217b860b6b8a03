package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestProber(t *testing.T) *Prober {
	t.Helper()

	return NewProber(zap.NewNop(), Config{
		Region:       "eu-central",
		ProbeTimeout: 2 * time.Second,
	})
}

func TestCheckReportsUpWithLatency(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	result := newTestProber(t).Check(context.Background(), target.URL)

	if !result.IsUp {
		t.Fatal("expected target to be up")
	}

	if result.LatencyMS == nil || *result.LatencyMS < 0 {
		t.Fatalf("expected non-negative latency, got %v", result.LatencyMS)
	}

	if result.Region != "eu-central" {
		t.Fatalf("unexpected region: %q", result.Region)
	}
}

func TestCheckServerErrorIsDown(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer target.Close()

	result := newTestProber(t).Check(context.Background(), target.URL)

	if result.IsUp {
		t.Fatal("expected 5xx target to be down")
	}

	if result.LatencyMS == nil {
		t.Fatal("expected latency for a target that responded")
	}
}

func TestCheckUnreachableIsDownWithoutLatency(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target.Close()

	result := newTestProber(t).Check(context.Background(), target.URL)

	if result.IsUp {
		t.Fatal("expected unreachable target to be down")
	}

	if result.LatencyMS != nil {
		t.Fatal("expected no latency for unreachable target")
	}
}

func TestValidTarget(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want bool
	}{
		{"https", "https://example.com", true},
		{"http with path", "http://example.com/status", true},
		{"ftp scheme", "ftp://example.com", false},
		{"relative", "/status", false},
		{"empty", "", false},
		{"localhost", "http://localhost:8080", false},
		{"loopback ip", "http://127.0.0.1/", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := validTarget(tc.url); got != tc.want {
				t.Fatalf("validTarget(%q) = %v, want %v", tc.url, got, tc.want)
			}
		})
	}
}
