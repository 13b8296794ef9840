package chathub

import (
	"blindpair/backend/internal/models"
	"blindpair/backend/internal/notify"
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// StartPubSubListener слухає Redis Pub/Sub і передає сповіщення локальним клієнтам.
// Every instance subscribes, so a notification published anywhere reaches the
// instance that holds the user's socket.
func (m *ManagerService) StartPubSubListener(ctx context.Context, rdb *redis.Client) {
	pubsub := rdb.PSubscribe(ctx, notify.ChannelPattern)
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				m.handlePubSub(ctx, msg.Channel, msg.Payload)
			}
		}
	}()
}

func (m *ManagerService) handlePubSub(ctx context.Context, channel, payload string) {
	userID, ok := notify.UserFromChannel(channel)
	if !ok {
		return
	}
	var n models.Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		m.logger.WithField("channel", channel).WithError(err).Warn("bad notification payload")
		return
	}
	n.UserID = userID
	if !m.HasClient(userID) {
		return
	}
	_ = m.Notify(ctx, n)
}
