package notify

import (
	"blindpair/backend/internal/models"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "notify:"

// ChannelPattern matches every per-user notification channel.
const ChannelPattern = channelPrefix + "*"

// ChannelFor is the Redis channel carrying userID's notifications.
func ChannelFor(userID string) string {
	return channelPrefix + userID
}

// UserFromChannel is the inverse of ChannelFor.
func UserFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, channelPrefix) {
		return "", false
	}
	return strings.TrimPrefix(channel, channelPrefix), true
}

// RedisPublisher publishes notifications so that whichever server instance holds
// the user's WebSocket can deliver it.
type RedisPublisher struct {
	Redis *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{Redis: rdb}
}

func (p *RedisPublisher) Notify(ctx context.Context, n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := p.Redis.Publish(ctx, ChannelFor(n.UserID), payload).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", n.Type, n.UserID, err)
	}
	return nil
}
