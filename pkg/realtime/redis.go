package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

type redisPubSub struct {
	client *redis.Client
}

func NewRedisPubSub(client *redis.Client) PubSub {
	return &redisPubSub{client: client}
}

func (r *redisPubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	return r.client.Publish(ctx, channel, payload).Err()
}

func (r *redisPubSub) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	pubsub := r.client.Subscribe(ctx, channel)

	// Wait for confirmation that subscription is created
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		out:    make(chan []byte, subscriberBuffer),
		done:   make(chan struct{}),
	}
	go sub.pump()
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	out    chan []byte
	done   chan struct{}
	once   sync.Once
}

func (s *redisSubscription) pump() {
	defer close(s.out)
	for {
		select {
		case msg, ok := <-s.pubsub.Channel():
			if !ok {
				return
			}
			select {
			case s.out <- []byte(msg.Payload):
			default:
			}
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) Messages() <-chan []byte { return s.out }

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}
