// internal/realtime/redis.go

// Package realtime is the live-notification boundary. Delivery is
// at-most-once: a disconnected client misses publishes and reconciles from
// persisted chat history on reconnect.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lavshop/storefront-backend/internal/config"
)

// Channel event names understood by connected clients.
const (
	EventUserConnected  = "user_connected"
	EventReceiveMessage = "receive-message"
	EventLeaveSession   = "leave-session"
)

// Publisher sends a payload to every current subscriber of a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

type RedisChannel struct {
	client *redis.Client
}

func NewRedisChannel(cfg config.RedisConfig) (*RedisChannel, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisChannel{client: client}, nil
}

func (r *RedisChannel) Publish(ctx context.Context, channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err := r.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}

	return nil
}

// Subscribe registers interest in one or more channels. The caller owns the
// returned PubSub and must Close it.
func (r *RedisChannel) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return r.client.Subscribe(ctx, channels...)
}

func (r *RedisChannel) Close() error {
	return r.client.Close()
}

// SessionChannel is the channel subscribed by clients that joined a session.
func SessionChannel(sessionID string) string {
	return "chat.session." + sessionID
}

// UserChannel is the channel subscribed by a connected user for all of
// their sessions.
func UserChannel(userID string) string {
	return "chat.user." + userID
}
