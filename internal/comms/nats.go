package comms

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	gameStreamName  = "GAME"
	replyStreamName = "GAME_REPLIES"
	replyConsumer   = "game-replies"
)

// NATSChannel implements Channel on JetStream. Requests and room events are
// published to subject-partitioned streams; replies land on a work-queue
// stream consumed with explicit acks so an abandoned reply is redelivered
// until it expires.
type NATSChannel struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

func Connect(url string) (*NATSChannel, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2 * time.Second),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStreams(js); err != nil {
		nc.Close()
		return nil, err
	}
	return &NATSChannel{nc: nc, js: js}, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	streams := []*nats.StreamConfig{
		{
			Name:      gameStreamName,
			Subjects:  []string{"room.*.events", "player.*.ask"},
			Retention: nats.LimitsPolicy,
			MaxAge:    10 * time.Minute,
		},
		{
			Name:      replyStreamName,
			Subjects:  []string{ReplySubject},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    2 * time.Minute,
		},
	}
	for _, cfg := range streams {
		if _, err := js.AddStream(cfg); err != nil && err != nats.ErrStreamNameAlreadyInUse {
			return fmt.Errorf("stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

func (c *NATSChannel) Publish(subject string, data []byte) error {
	_, err := c.js.Publish(subject, data)
	return err
}

func (c *NATSChannel) SubscribeReplies(subject string, handler func(Delivery)) (func(), error) {
	sub, err := c.js.Subscribe(subject, func(msg *nats.Msg) {
		var reply Reply
		if err := json.Unmarshal(msg.Data, &reply); err != nil {
			// Poison message: terminate it rather than loop on redelivery.
			log.Printf("reply undecodable subject=%s error=%v", subject, err)
			_ = msg.Term()
			return
		}
		handler(Delivery{
			CorrelationID: reply.CorrelationID,
			Body:          reply.Payload,
			Ack:           func() error { return msg.Ack() },
			Abandon:       func() error { return msg.Nak() },
		})
	}, nats.Durable(replyConsumer), nats.ManualAck(), nats.AckExplicit())
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return func() {
		if err := sub.Drain(); err != nil {
			log.Printf("reply drain failed error=%v", err)
		}
	}, nil
}

// SubscribeEvents is a plain ordered subscription used by the edge to pump
// room events and player requests out to connected clients.
func (c *NATSChannel) SubscribeEvents(subject string, handler func([]byte)) (func(), error) {
	sub, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

func (c *NATSChannel) Close() {
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
	}
}
