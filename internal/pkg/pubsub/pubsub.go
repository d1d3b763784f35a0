package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const (
	ChannelUsageUpdates = "usage_updates"

	TypeUsageUpdate = "usage_update"
)

// UsageMessage 用量变化通知
type UsageMessage struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Action    string `json:"action,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishUsage 发布用量消息
func (p *Publisher) PublishUsage(ctx context.Context, msg *UsageMessage) error {
	msg.Type = TypeUsageUpdate

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal usage message: %w", err)
	}

	return p.client.Publish(ctx, ChannelUsageUpdates, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅用量消息，直到 ctx 结束
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*UsageMessage)) error {
	sub := s.client.Subscribe(ctx, ChannelUsageUpdates)
	defer sub.Close()

	// 等待订阅确认，保证返回前不丢消息
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", ChannelUsageUpdates, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var usageMsg UsageMessage
			if err := json.Unmarshal([]byte(msg.Payload), &usageMsg); err != nil {
				log.Warn().Err(err).Msg("drop malformed usage message")
				continue
			}

			handler(&usageMsg)
		}
	}
}
