// Package redis shares entity resolution results between daemons.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "coursesensei:resolve"

// DefaultTTL bounds how long a resolution outlives the daemon that wrote it.
const DefaultTTL = 24 * time.Hour

// ResolutionIndex maps (entity kind, raw input) to a node id. Entries are
// namespaced by knowledge base checksum so that a re-import never serves ids
// from an older graph. An empty id records a known miss.
type ResolutionIndex struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewResolutionIndex creates an index over client. A zero ttl selects DefaultTTL.
func NewResolutionIndex(client *redis.Client, namespace string, ttl time.Duration) *ResolutionIndex {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResolutionIndex{client: client, namespace: namespace, ttl: ttl}
}

func (x *ResolutionIndex) makeKey(kind, raw string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, x.namespace, kind, raw)
}

func (x *ResolutionIndex) membersKey() string {
	return fmt.Sprintf("%s:%s:keys", keyPrefix, x.namespace)
}

// Lookup returns the remembered id for a raw input.
func (x *ResolutionIndex) Lookup(ctx context.Context, kind, raw string) (string, bool, error) {
	id, err := x.client.Get(ctx, x.makeKey(kind, raw)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to GET resolution: %w", err)
	}
	return id, true, nil
}

// Remember stores the id a raw input resolved to.
func (x *ResolutionIndex) Remember(ctx context.Context, kind, raw, id string) error {
	key := x.makeKey(kind, raw)
	_, err := x.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, id, x.ttl)
		pipe.SAdd(ctx, x.membersKey(), key)
		pipe.Expire(ctx, x.membersKey(), x.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store resolution: %w", err)
	}
	return nil
}

// Len returns the number of entries written in this namespace, including
// ones that may since have expired.
func (x *ResolutionIndex) Len(ctx context.Context) (int64, error) {
	n, err := x.client.SCard(ctx, x.membersKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to SCARD %s: %w", x.membersKey(), err)
	}
	return n, nil
}

// Ping checks the connection.
func (x *ResolutionIndex) Ping(ctx context.Context) error {
	return x.client.Ping(ctx).Err()
}
