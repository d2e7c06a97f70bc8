// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores entries as plain string values, optionally expiring.
type Redis struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedis wraps client. All keys are prefixed with keyPrefix followed by a
// colon. A ttl of 0 means entries never expire.
func NewRedis(client *redis.Client, keyPrefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (r *Redis) fullKey(key string) string {
	if r.keyPrefix == "" {
		return key
	}
	return r.keyPrefix + ":" + key
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return b, true, nil
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.fullKey(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Store = (*Redis)(nil)
