package metrics

import (
	"context"
	"fmt"

	"github.com/marcelsud/message-relay/endpoints"
	webhookredis "github.com/marcelsud/message-relay/webhook/redis"
	"github.com/redis/go-redis/v9"
)

// RedisCollector implements the Collector interface for the Redis store
type RedisCollector struct {
	client    *redis.Client
	endpoints *endpoints.Loader
}

// NewRedisCollector creates a new Redis metrics collector
func NewRedisCollector(client *redis.Client, loader *endpoints.Loader) *RedisCollector {
	return &RedisCollector{
		client:    client,
		endpoints: loader,
	}
}

// GetReceivedCounts reads total_received of every known webhook in one pipeline
func (c *RedisCollector) GetReceivedCounts(ctx context.Context) (map[string]int64, error) {
	list := c.endpoints.List()
	counts := make(map[string]int64, len(list))
	if len(list) == 0 {
		return counts, nil
	}

	pipe := c.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(list))
	for i, e := range list {
		cmds[i] = pipe.HGet(ctx, webhookredis.ConfigKey(e.WebhookID), "total_received")
	}

	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("executing pipeline: %w", err)
	}

	for i, cmd := range cmds {
		n, err := cmd.Int64()
		if err != nil {
			n = 0
		}
		counts[list[i].WebhookID] = n
	}

	return counts, nil
}

// GetAuditCounts returns the length of every audit stream
func (c *RedisCollector) GetAuditCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)

	for _, e := range c.endpoints.List() {
		length, err := c.client.XLen(ctx, webhookredis.ResultsKey(e.WebhookID)).Result()
		if err != nil && err != redis.Nil {
			// Continue even if one stream fails
			continue
		}
		counts[e.WebhookID] = length
	}

	return counts, nil
}
