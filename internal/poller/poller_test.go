package poller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/KevinAcruz/acru/internal/telemetry"
)

func newTelemetryServer(t *testing.T, summaryFails *atomic.Bool) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	beats := &atomic.Int64{}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/telemetry/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SessionID string `json:"sessionId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !telemetry.ValidSessionID(body.SessionID) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		beats.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})

	mux.HandleFunc("/api/telemetry/summary", func(w http.ResponseWriter, r *http.Request) {
		if summaryFails != nil && summaryFails.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Summary{
			ActiveUsers: 3,
			RecentPings: []Ping{},
			UpdatedAt:   "2026-08-01T12:00:00Z",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, beats
}

func TestPoller_BeatAndRefresh(t *testing.T) {
	srv, beats := newTelemetryServer(t, nil)

	p, err := New(srv.URL, Options{})
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	ctx := context.Background()
	p.beat(ctx)
	p.refresh(ctx)

	if beats.Load() != 1 {
		t.Errorf("heartbeats = %d, want 1", beats.Load())
	}

	summary, err := p.Snapshot()
	if err != nil {
		t.Fatalf("snapshot error: %v", err)
	}
	if summary.ActiveUsers != 3 {
		t.Errorf("activeUsers = %d, want 3", summary.ActiveUsers)
	}
}

func TestPoller_SummaryFailureIsSoft(t *testing.T) {
	var fails atomic.Bool
	fails.Store(true)
	srv, _ := newTelemetryServer(t, &fails)

	p, err := New(srv.URL, Options{})
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	ctx := context.Background()
	p.refresh(ctx)

	if _, err := p.Snapshot(); err == nil {
		t.Fatal("expected soft error state after failed summary")
	}

	fails.Store(false)
	p.refresh(ctx)

	summary, err := p.Snapshot()
	if err != nil {
		t.Fatalf("error state not cleared: %v", err)
	}
	if summary.ActiveUsers != 3 {
		t.Errorf("activeUsers = %d, want 3", summary.ActiveUsers)
	}
}

func TestPoller_UnreachableServerIsSoft(t *testing.T) {
	srv, _ := newTelemetryServer(t, nil)
	url := srv.URL
	srv.Close()

	p, err := New(url, Options{})
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	ctx := context.Background()
	p.beat(ctx) // must not panic

	if _, err := p.Snapshot(); err == nil {
		t.Fatal("expected soft error state for unreachable server")
	}
}

func TestPoller_SessionIDPersists(t *testing.T) {
	srv, _ := newTelemetryServer(t, nil)
	path := filepath.Join(t.TempDir(), "session-id")

	first, err := New(srv.URL, Options{SessionFile: path})
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	second, err := New(srv.URL, Options{SessionFile: path})
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	if !telemetry.ValidSessionID(first.SessionID()) {
		t.Errorf("session id %q fails the token format", first.SessionID())
	}
	if first.SessionID() != second.SessionID() {
		t.Errorf("session ids differ across runs: %q vs %q", first.SessionID(), second.SessionID())
	}
}

func TestPoller_FreshSessionPerRunWithoutFile(t *testing.T) {
	srv, _ := newTelemetryServer(t, nil)

	first, err := New(srv.URL, Options{})
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	second, err := New(srv.URL, Options{})
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}

	if first.SessionID() == second.SessionID() {
		t.Error("expected distinct session ids without a session file")
	}
}
