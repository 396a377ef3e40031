package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"projecttracker/internal/pkg/logger"
)

// RedisChannel carries change events between instances sharing one store.
const RedisChannel = "tracker:changes"

// RedisBridge fans local hub events out to other instances and receives theirs.
// Events stamped with this instance's origin are ignored on the way back in.
type RedisBridge struct {
	client redis.UniversalClient
	origin string
	log    *logrus.Logger
}

func NewRedisBridge(client redis.UniversalClient, origin string, log *logrus.Logger) *RedisBridge {
	return &RedisBridge{client: client, origin: origin, log: log}
}

// Publish sends e to the shared channel. Failures are logged and dropped.
func (b *RedisBridge) Publish(e Event) {
	if e.Origin == "" {
		e.Origin = b.origin
	}
	payload, err := json.Marshal(e)
	if err != nil {
		logger.LogError(b.log, "changefeed", "RedisBridge.Publish", "encode event", e, err)
		return
	}
	if err := b.client.Publish(context.Background(), RedisChannel, payload).Err(); err != nil {
		logger.LogError(b.log, "changefeed", "RedisBridge.Publish", "publish", e, err)
	}
}

// Forward relays every event of src to the shared channel until the returned
// subscription is closed.
func (b *RedisBridge) Forward(ctx context.Context, src Source) (Subscription, error) {
	return src.Subscribe(ctx, b.Publish)
}

func (b *RedisBridge) Subscribe(ctx context.Context, h Handler) (Subscription, error) {
	ps := b.client.Subscribe(ctx, RedisChannel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range ps.Channel() {
			e, ok := b.accept(msg.Payload)
			if ok {
				h(e)
			}
		}
	}()

	return &onceSub{close: func() error {
		err := ps.Close()
		wg.Wait()
		return err
	}}, nil
}

// accept decodes a payload and reports whether it came from another instance.
func (b *RedisBridge) accept(payload string) (Event, bool) {
	e, err := decodePayload(payload)
	if err != nil {
		logger.LogError(b.log, "changefeed", "RedisBridge.accept", "decode payload", payload, err)
		return Event{}, false
	}
	if e.Origin == b.origin {
		return Event{}, false
	}
	return e, true
}
