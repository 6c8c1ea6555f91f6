package telemetry

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionsZSetKey  = "telemetry:sessions:z"
	geoPingsListKey  = "telemetry:geo-pings"
	rlSessionPrefix  = "telemetry:rl:session:"
	rlIPPrefix       = "telemetry:rl:ip:"
	throttlePrefix   = "telemetry:throttle:"
	sessionMemberTag = "sid:"
)

// RedisStore implements Store against a Redis-compatible presence store.
// Correctness relies on per-command atomicity only; grouped commands are
// pipelined because they have no data dependency on each other.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) IncrementRates(ctx context.Context, sessionID, ipHash string, window time.Duration) (int64, int64, error) {
	sessionKey := rlSessionPrefix + sessionID
	ipKey := rlIPPrefix + ipHash

	var sessionCmd, ipCmd *redis.IntCmd
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		sessionCmd = pipe.Incr(ctx, sessionKey)
		ipCmd = pipe.Incr(ctx, ipKey)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	sessionCount := sessionCmd.Val()
	ipCount := ipCmd.Val()

	// The first INCR in a window starts its TTL; later ones leave it alone so
	// the window stays fixed rather than sliding.
	if sessionCount == 1 || ipCount == 1 {
		_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			if sessionCount == 1 {
				pipe.Expire(ctx, sessionKey, window)
			}
			if ipCount == 1 {
				pipe.Expire(ctx, ipKey, window)
			}
			return nil
		})
		if err != nil {
			return 0, 0, err
		}
	}

	return sessionCount, ipCount, nil
}

func (s *RedisStore) UpsertPresence(ctx context.Context, sessionID string, now, expiresAt time.Time) error {
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, sessionsZSetKey, "0", strconv.FormatInt(now.UnixMilli(), 10))
		pipe.ZAdd(ctx, sessionsZSetKey, redis.Z{
			Score:  float64(expiresAt.UnixMilli()),
			Member: sessionMemberTag + sessionID,
		})
		return nil
	})
	return err
}

func (s *RedisStore) ActiveSessions(ctx context.Context, now time.Time) (int64, error) {
	var card *redis.IntCmd
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, sessionsZSetKey, "0", strconv.FormatInt(now.UnixMilli(), 10))
		card = pipe.ZCard(ctx, sessionsZSetKey)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return card.Val(), nil
}

func (s *RedisStore) AcquireGeoPingSlot(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, throttlePrefix+sessionID, "1", ttl).Result()
}

func (s *RedisStore) AppendGeoPing(ctx context.Context, raw string, capacity int64) error {
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, geoPingsListKey, raw)
		pipe.LTrim(ctx, geoPingsListKey, 0, capacity-1)
		return nil
	})
	return err
}

func (s *RedisStore) RecentGeoPings(ctx context.Context, limit int64) ([]string, error) {
	return s.client.LRange(ctx, geoPingsListKey, 0, limit-1).Result()
}
