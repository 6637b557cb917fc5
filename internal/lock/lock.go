// Package lock makes sure only one vehicle drives a given maze at a time.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// ErrLost means the lease expired or was taken over before it was extended.
var ErrLost = errors.New("lock: lease lost")

// Lease is a held lock.
type Lease interface {
	Extend(ctx context.Context) error
	Release(ctx context.Context) error
}

// Locker hands out per-maze leases backed by Redis.
type Locker struct {
	rs  *redsync.Redsync
	ttl time.Duration
}

// New creates a Locker whose leases expire after ttl unless extended.
func New(client *redis.Client, ttl time.Duration) *Locker {
	pool := goredis.NewPool(client)
	return &Locker{rs: redsync.New(pool), ttl: ttl}
}

// Key is the Redis key guarding mazeID.
func Key(mazeID string) string {
	return "theseus:maze:" + mazeID + ":lock"
}

// Acquire takes the lock for mazeID, failing fast if someone else holds it.
func (l *Locker) Acquire(ctx context.Context, mazeID string) (Lease, error) {
	m := l.rs.NewMutex(Key(mazeID),
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(1),
	)
	if err := m.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("lock maze %s: %w", mazeID, err)
	}
	return &mutexLease{m: m}, nil
}

type mutexLease struct {
	m *redsync.Mutex
}

func (l *mutexLease) Extend(ctx context.Context) error {
	ok, err := l.m.ExtendContext(ctx)
	if err != nil {
		return fmt.Errorf("extend %s: %w", l.m.Name(), err)
	}
	if !ok {
		return fmt.Errorf("extend %s: %w", l.m.Name(), ErrLost)
	}
	return nil
}

func (l *mutexLease) Release(ctx context.Context) error {
	ok, err := l.m.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("release %s: %w", l.m.Name(), err)
	}
	if !ok {
		return fmt.Errorf("release %s: %w", l.m.Name(), ErrLost)
	}
	return nil
}
