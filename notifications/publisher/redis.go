// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package publisher fans notifications out to Redis subscribers.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/qolzam/forum/notifications/models"
)

// Publisher is the subset of the Redis client used here. redis.UniversalClient satisfies it.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes each notification as JSON on a channel.
type RedisSink struct {
	client  Publisher
	channel string
}

// NewRedisSink creates a sink publishing on channel.
func NewRedisSink(client Publisher, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

// Name identifies the sink in logs.
func (s *RedisSink) Name() string {
	return "redis"
}

// Deliver publishes n. Having no subscribers is not an error.
func (s *RedisSink) Deliver(ctx context.Context, n *models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification on %s: %w", s.channel, err)
	}
	return nil
}
