package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidSession rejects a heartbeat whose session id is missing or
	// fails the token format rule. Raised before any store write.
	ErrInvalidSession = errors.New("telemetry: invalid session id")

	// ErrRateLimited rejects a heartbeat past the per-window ceiling for its
	// session or client address.
	ErrRateLimited = errors.New("telemetry: rate limited")
)

// Config carries the tunables of the presence pipeline.
type Config struct {
	SessionTTL         time.Duration
	RecentPingLimit    int
	RateLimitWindow    time.Duration
	RateLimitMax       int64
	GeoPingMinInterval time.Duration
}

// Service implements the heartbeat and summary use-cases. It holds no state
// across requests; all durable state lives in the presence store.
type Service struct {
	store Store
	cfg   Config
	now   func() time.Time
}

func NewService(store Store, cfg Config) *Service {
	return &Service{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Beat is one inbound heartbeat after transport decoding.
type Beat struct {
	SessionID string
	ClientIP  string
	Geo       Geo
}

// Heartbeat validates and rate-limits a liveness signal, refreshes the
// session's presence expiry (pruning expired peers on the way), and records
// a throttled geo ping. Duplicate or out-of-order beats for one session are
// harmless: each simply re-asserts the same expiry extension.
func (s *Service) Heartbeat(ctx context.Context, beat Beat) error {
	sessionID := strings.TrimSpace(beat.SessionID)
	if !ValidSessionID(sessionID) {
		return ErrInvalidSession
	}

	sessionCount, ipCount, err := s.store.IncrementRates(ctx, sessionID, hashIP(beat.ClientIP), s.cfg.RateLimitWindow)
	if err != nil {
		return fmt.Errorf("telemetry: rate counters: %w", err)
	}
	if sessionCount > s.cfg.RateLimitMax || ipCount > s.cfg.RateLimitMax {
		return ErrRateLimited
	}

	now := s.now()
	if err := s.store.UpsertPresence(ctx, sessionID, now, now.Add(s.cfg.SessionTTL)); err != nil {
		return fmt.Errorf("telemetry: presence upsert: %w", err)
	}

	// Two concurrent beats may race the gate; at most one extra ping slipping
	// through is an accepted outcome.
	allowed, err := s.store.AcquireGeoPingSlot(ctx, sessionID, s.cfg.GeoPingMinInterval)
	if err != nil {
		return fmt.Errorf("telemetry: geo-ping gate: %w", err)
	}
	if !allowed {
		return nil
	}

	raw, err := json.Marshal(GeoPing{
		Country:   beat.Geo.Country,
		Region:    beat.Geo.Region,
		Latitude:  beat.Geo.Latitude,
		Longitude: beat.Geo.Longitude,
		Timestamp: now.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("telemetry: encode geo ping: %w", err)
	}
	if err := s.store.AppendGeoPing(ctx, string(raw), int64(s.cfg.RecentPingLimit)); err != nil {
		return fmt.Errorf("telemetry: geo-ping log: %w", err)
	}
	return nil
}

// Summary is the aggregate snapshot served to the widget.
type Summary struct {
	ActiveUsers int64     `json:"activeUsers"`
	RecentPings []GeoPing `json:"recentPings"`
	UpdatedAt   string    `json:"updatedAt"`
}

// Summary prunes stale sessions, counts the remainder, and returns the
// recent geo pings. Malformed stored records are dropped, not fatal.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	now := s.now()

	active, err := s.store.ActiveSessions(ctx, now)
	if err != nil {
		return Summary{}, fmt.Errorf("telemetry: active sessions: %w", err)
	}

	raws, err := s.store.RecentGeoPings(ctx, int64(s.cfg.RecentPingLimit))
	if err != nil {
		return Summary{}, fmt.Errorf("telemetry: geo-ping log: %w", err)
	}

	pings := make([]GeoPing, 0, len(raws))
	for _, raw := range raws {
		if ping, ok := ParsePing(raw); ok {
			pings = append(pings, ping)
		}
	}

	return Summary{
		ActiveUsers: active,
		RecentPings: pings,
		UpdatedAt:   now.UTC().Format(time.RFC3339),
	}, nil
}

// ActiveNow prunes and counts the presence set without building a full
// summary. Used by the snapshot archiver.
func (s *Service) ActiveNow(ctx context.Context) (int64, error) {
	return s.store.ActiveSessions(ctx, s.now())
}
