// Package redis holds the Redis-backed host cache that fronts the routing
// key table. Routing keys change rarely and are resolved once per inbound
// request, so a short TTL cache removes most of that load.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const hostKeyPrefix = "bookme:host:"

type HostCache struct {
	client *redis.Client
}

func NewHostCache(ctx context.Context, addr, password string, db int) (*HostCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.NewHostCache: ping: %w", err)
	}

	return &HostCache{client: client}, nil
}

func (c *HostCache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("redis.HostCache.Close: %w", err)
	}
	return nil
}

func (c *HostCache) GetTenantID(ctx context.Context, host string) (uuid.UUID, bool, error) {
	val, err := c.client.Get(ctx, hostKeyPrefix+host).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("redis.HostCache.GetTenantID: %w", err)
	}

	id, err := uuid.Parse(val)
	if err != nil {
		// Corrupt entry; treat as a miss so the directory repairs it.
		return uuid.Nil, false, nil
	}

	return id, true, nil
}

func (c *HostCache) SetTenantID(ctx context.Context, host string, tenantID uuid.UUID, ttl time.Duration) error {
	err := c.client.Set(ctx, hostKeyPrefix+host, tenantID.String(), ttl).Err()
	if err != nil {
		return fmt.Errorf("redis.HostCache.SetTenantID: %w", err)
	}
	return nil
}

func (c *HostCache) Delete(ctx context.Context, hosts ...string) error {
	if len(hosts) == 0 {
		return nil
	}

	keys := make([]string, len(hosts))
	for i, h := range hosts {
		keys[i] = hostKeyPrefix + h
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis.HostCache.Delete: %w", err)
	}
	return nil
}
