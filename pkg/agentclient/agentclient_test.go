package agentclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProbe(t *testing.T) {
	latency := int64(42)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/probe" {
			t.Errorf("path = %s, want /probe", r.URL.Path)
		}

		var req probeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.URL != "https://example.com" {
			t.Errorf("url = %s, want https://example.com", req.URL)
		}

		_ = json.NewEncoder(w).Encode(Result{
			IsUp:      true,
			LatencyMS: &latency,
			Region:    "eu-central",
		})
	}))
	defer srv.Close()

	c := New(&Config{Timeout: time.Second})

	result, err := c.Probe(context.Background(), srv.URL, "https://example.com")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	if !result.IsUp {
		t.Error("IsUp = false, want true")
	}
	if result.LatencyMS == nil || *result.LatencyMS != 42 {
		t.Errorf("LatencyMS = %v, want 42", result.LatencyMS)
	}
	if result.Region != "eu-central" {
		t.Errorf("Region = %s, want eu-central", result.Region)
	}
}

func TestProbeAgentError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "probe worker overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(&Config{Timeout: time.Second})

	if _, err := c.Probe(context.Background(), srv.URL, "https://example.com"); err == nil {
		t.Fatal("Probe() error = nil, want non-nil for 503 response")
	}
}

func TestProbeAgentUnreachable(t *testing.T) {
	c := New(&Config{Timeout: 200 * time.Millisecond})

	if _, err := c.Probe(context.Background(), "http://127.0.0.1:1", "https://example.com"); err == nil {
		t.Fatal("Probe() error = nil, want non-nil for unreachable agent")
	}
}
