// Package realtime fans change notifications out to websocket subscribers.
// Redis pub/sub is used when available so every API instance sees every
// event; the in-process Hub covers single-instance and test setups.
package realtime

import (
	"context"
)

type PubSub interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

type Subscription interface {
	// Messages is closed once the subscription is closed.
	Messages() <-chan []byte
	Close() error
}
