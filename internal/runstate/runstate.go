// Package runstate coordinates collection runs through Redis: a per-date
// lock so two schedulers cannot double-run the same day, and a cache of the
// latest execution summary consumed by the report API.
package runstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jose-deblas/dashboardcwv/internal/collector"
)

const (
	lockKeyPrefix    = "cwv:run_lock:"
	latestSummaryKey = "cwv:latest_summary"
)

var ErrNoSummary = errors.New("no collection run recorded yet")

type Coordinator struct {
	client *redis.Client
}

func NewCoordinator(addr, password string, db int) (*Coordinator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Coordinator{client: client}, nil
}

// AcquireLock claims the collection run for a date. It returns false when
// another process already holds the lock; the TTL guards against a crashed
// holder wedging the date forever.
func (c *Coordinator) AcquireLock(ctx context.Context, executionDate time.Time, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, lockKey(executionDate), time.Now().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	return ok, nil
}

func (c *Coordinator) ReleaseLock(ctx context.Context, executionDate time.Time) error {
	if err := c.client.Del(ctx, lockKey(executionDate)).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}

// PublishSummary stores the run summary for the report API.
func (c *Coordinator) PublishSummary(ctx context.Context, summary *collector.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := c.client.Set(ctx, latestSummaryKey, data, 0).Err(); err != nil {
		return fmt.Errorf("publish summary: %w", err)
	}
	return nil
}

// LatestSummary returns the most recently published summary, or
// ErrNoSummary when no run has been recorded.
func (c *Coordinator) LatestSummary(ctx context.Context) (*collector.Summary, error) {
	data, err := c.client.Get(ctx, latestSummaryKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSummary
	}
	if err != nil {
		return nil, fmt.Errorf("load latest summary: %w", err)
	}

	var summary collector.Summary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("unmarshal latest summary: %w", err)
	}
	return &summary, nil
}

func (c *Coordinator) Close() error {
	return c.client.Close()
}

func lockKey(executionDate time.Time) string {
	return lockKeyPrefix + executionDate.Format("2006-01-02")
}
