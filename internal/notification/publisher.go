package notification

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const ChannelPrefix = "notifications:"

func Channel(userID string) string {
	return ChannelPrefix + userID
}

// Publisher fans a notification out to realtime subscribers of a user.
type Publisher interface {
	Publish(ctx context.Context, userID string, n NotificationResponse) error
}

type redisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) Publisher {
	return &redisPublisher{rdb: rdb}
}

func (p *redisPublisher) Publish(ctx context.Context, userID string, n NotificationResponse) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, Channel(userID), payload).Err()
}
