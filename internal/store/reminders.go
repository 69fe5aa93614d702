package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReminderLedger deduplicates reminder sends across overlapping
// workflow invocations using redis SetNX. Entries expire on their own
// once the meeting has started.
type ReminderLedger struct {
	rdb *redis.Client
}

// NewReminderLedger creates a ledger over an open redis client.
func NewReminderLedger(rdb *redis.Client) *ReminderLedger {
	return &ReminderLedger{rdb: rdb}
}

// MarkOnce claims key for ttl. It returns true when this caller won the
// claim and should proceed with the send.
func (l *ReminderLedger) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return l.rdb.SetNX(ctx, "daybrief:"+key, "1", ttl).Result()
}
