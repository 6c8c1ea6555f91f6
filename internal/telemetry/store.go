package telemetry

import (
	"context"
	"time"
)

// Store exposes the atomic presence-store primitives the handlers rely on.
// Each method is a single round trip (pipelined where it groups independent
// commands); there are no cross-operation transactions. Implementations
// (e.g., Redis) must remain stateless between calls.
type Store interface {
	// IncrementRates bumps the per-session and per-IP-hash counters for the
	// current rate window and returns both counts. The first write in a
	// window starts that window's TTL.
	IncrementRates(ctx context.Context, sessionID, ipHash string, window time.Duration) (int64, int64, error)

	// UpsertPresence extends the session's expiry in the presence set and
	// prunes entries whose expiry is at or before now.
	UpsertPresence(ctx context.Context, sessionID string, now, expiresAt time.Time) error

	// ActiveSessions prunes expired entries and returns the remaining
	// membership count.
	ActiveSessions(ctx context.Context, now time.Time) (int64, error)

	// AcquireGeoPingSlot reports whether this session may record a geo ping.
	// The slot is held for ttl; a second acquire within that window fails.
	AcquireGeoPingSlot(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)

	// AppendGeoPing pushes a raw ping record to the front of the recency log
	// and trims the log to capacity.
	AppendGeoPing(ctx context.Context, raw string, capacity int64) error

	// RecentGeoPings returns up to limit raw records, newest first.
	RecentGeoPings(ctx context.Context, limit int64) ([]string, error)
}
