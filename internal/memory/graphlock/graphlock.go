// Package graphlock provides a Redis-backed implementation of memory.Locker
// using go-redsync, for deployments where the relationship graph is mutated
// from more than one gateway process. This package has no in-process
// fallback; memory.NewRelationshipGraph uses memory's own in-process locker
// when given a nil Locker.
package graphlock

import (
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	redislib "github.com/redis/go-redis/v9"
)

// DistributedLocker guards per-source relationship mutations with a Redis
// mutex, mirroring the teacher's use of Redis for session/cache backing in
// memory-tools, generalized here to a distributed mutual-exclusion primitive.
type DistributedLocker struct {
	rs      *redsync.Redsync
	expiry  time.Duration
	prefix  string
}

// New builds a DistributedLocker over a single Redis client.
func New(client *redislib.Client, lockExpiry time.Duration) *DistributedLocker {
	if lockExpiry <= 0 {
		lockExpiry = 10 * time.Second
	}
	pool := goredis.NewPool(client)
	rs := redsync.New(pool)
	return &DistributedLocker{rs: rs, expiry: lockExpiry, prefix: "sweetmcp:relgraph:"}
}

// Lock acquires a distributed mutex keyed by sourceID, returning an unlock
// function that releases it. Satisfies memory.Locker.
func (d *DistributedLocker) Lock(sourceID string) (func(), error) {
	mutex := d.rs.NewMutex(d.prefix+sourceID, redsync.WithExpiry(d.expiry), redsync.WithTries(8))
	if err := mutex.Lock(); err != nil {
		return nil, err
	}
	return func() {
		_, _ = mutex.Unlock()
	}, nil
}
