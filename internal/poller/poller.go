// Package poller is the client half of the telemetry contract: it owns a
// per-installation session id, sends periodic heartbeats, and independently
// polls the summary endpoint. The two loops are not synchronized, and a
// failure in either surfaces as a soft error state rather than stopping
// the poller.
package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/KevinAcruz/acru/internal/telemetry"

	"github.com/google/uuid"
)

const (
	defaultHeartbeatInterval = 60 * time.Second
	defaultSummaryInterval   = 15 * time.Second
)

// Summary mirrors the wire shape of GET /api/telemetry/summary.
type Summary struct {
	ActiveUsers int64  `json:"activeUsers"`
	RecentPings []Ping `json:"recentPings"`
	UpdatedAt   string `json:"updatedAt"`
}

type Ping struct {
	Country   string   `json:"country"`
	Region    string   `json:"region"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp int64    `json:"timestamp"`
}

type Options struct {
	HeartbeatInterval time.Duration
	SummaryInterval   time.Duration

	// SessionFile persists the session id across runs, the way the browser
	// client keeps it in local storage. Empty means a fresh id per run.
	SessionFile string

	HTTPClient *http.Client
}

type Poller struct {
	baseURL           string
	sessionID         string
	client            *http.Client
	heartbeatInterval time.Duration
	summaryInterval   time.Duration

	mu      sync.Mutex
	summary *Summary
	lastErr error
}

func New(baseURL string, opts Options) (*Poller, error) {
	sessionID, err := loadOrCreateSessionID(opts.SessionFile)
	if err != nil {
		return nil, err
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	heartbeatInterval := opts.HeartbeatInterval
	if heartbeatInterval <= 0 {
		heartbeatInterval = defaultHeartbeatInterval
	}
	summaryInterval := opts.SummaryInterval
	if summaryInterval <= 0 {
		summaryInterval = defaultSummaryInterval
	}

	return &Poller{
		baseURL:           strings.TrimRight(baseURL, "/"),
		sessionID:         sessionID,
		client:            client,
		heartbeatInterval: heartbeatInterval,
		summaryInterval:   summaryInterval,
	}, nil
}

func (p *Poller) SessionID() string {
	return p.sessionID
}

// Run sends an immediate heartbeat and summary poll, then keeps both loops
// going until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.beat(ctx)
	p.refresh(ctx)

	heartbeat := time.NewTicker(p.heartbeatInterval)
	defer heartbeat.Stop()
	summary := time.NewTicker(p.summaryInterval)
	defer summary.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			p.beat(ctx)
		case <-summary.C:
			p.refresh(ctx)
		}
	}
}

// Snapshot returns the last summary received and the current soft error
// state, if any.
func (p *Poller) Snapshot() (Summary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var s Summary
	if p.summary != nil {
		s = *p.summary
	}
	return s, p.lastErr
}

func (p *Poller) beat(ctx context.Context) {
	body, err := json.Marshal(map[string]string{"sessionId": p.sessionID})
	if err != nil {
		p.setErr(fmt.Errorf("heartbeat: %w", err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/telemetry/heartbeat", bytes.NewReader(body))
	if err != nil {
		p.setErr(fmt.Errorf("heartbeat: %w", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.setErr(fmt.Errorf("heartbeat: %w", err))
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		p.setErr(fmt.Errorf("heartbeat: status %d", resp.StatusCode))
	}
}

func (p *Poller) refresh(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/telemetry/summary", nil)
	if err != nil {
		p.setErr(fmt.Errorf("summary: %w", err))
		return
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.setErr(fmt.Errorf("summary: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		p.setErr(fmt.Errorf("summary: status %d", resp.StatusCode))
		return
	}

	var s Summary
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		p.setErr(fmt.Errorf("summary: %w", err))
		return
	}

	p.mu.Lock()
	p.summary = &s
	p.lastErr = nil
	p.mu.Unlock()
}

func (p *Poller) setErr(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func loadOrCreateSessionID(path string) (string, error) {
	if path == "" {
		return newSessionID(), nil
	}

	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if telemetry.ValidSessionID(id) {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("poller: read session file: %w", err)
	}

	id := newSessionID()
	if err := os.WriteFile(path, []byte(id), 0o600); err != nil {
		return "", fmt.Errorf("poller: write session file: %w", err)
	}
	return id, nil
}
