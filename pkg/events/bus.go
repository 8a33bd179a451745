package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	gochannel "github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Bus carries Envelopes between the runner and its consumers inside one process.
type Bus struct {
	router *message.Router
	pubsub *gochannel.GoChannel

	runOnce sync.Once
}

func NewInMemoryBus() (*Bus, error) {
	logger := watermill.NopLogger{}
	// Blocking until ack keeps each topic's events in publish order.
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            1024,
		BlockPublishUntilSubscriberAck: true,
	}, logger)

	r, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "new watermill router")
	}
	return &Bus{router: r, pubsub: pubsub}, nil
}

// Publish returns once every subscriber of topic has handled env.
func (b *Bus) Publish(topic string, env Envelope) error {
	payload, err := env.MarshalJSONBytes()
	if err != nil {
		return err
	}
	if err := b.pubsub.Publish(topic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		return errors.Wrapf(err, "publish %s", topic)
	}
	return nil
}

// Subscribe registers fn for topic under a unique handler name. Undecodable
// messages are logged and dropped. Must be called before Run.
func (b *Bus) Subscribe(name, topic string, fn func(Envelope)) {
	b.router.AddConsumerHandler(name, topic, b.pubsub, func(msg *message.Message) error {
		var env Envelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil {
			log.Warn().Err(err).Str("handler", name).Msg("bad envelope")
			return nil
		}
		fn(env)
		return nil
	})
}

// Run blocks until ctx is done. Subscribers only see events published
// after Running() is closed.
func (b *Bus) Run(ctx context.Context) error {
	var runErr error
	b.runOnce.Do(func() {
		go func() {
			<-ctx.Done()
			_ = b.router.Close()
		}()
		runErr = b.router.Run(ctx)
	})
	return runErr
}

func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

func (b *Bus) Close() error {
	if err := b.router.Close(); err != nil {
		return errors.Wrap(err, "close router")
	}
	return nil
}
