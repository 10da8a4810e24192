// Package lastseen keeps the last time a keyed event happened.
//
// It backs the reorder notification throttle and the "last bill created"
// marker. Entries are ephemeral: the memory store loses them on restart and
// the redis store expires them after a TTL.
package lastseen

import (
	"context"
	"time"
)

type Store interface {
	// Get returns the recorded time for key and whether one exists.
	Get(ctx context.Context, key string) (time.Time, bool, error)
	Set(ctx context.Context, key string, at time.Time) error
}
