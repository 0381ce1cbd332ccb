package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
)

// Subscriber consumes plan events from JetStream with a durable consumer.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS and enables JetStream.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribePlanComputed delivers every plan event to handler. Messages are
// acked on success and redelivered up to three times on failure.
func (s *Subscriber) SubscribePlanComputed(ctx context.Context, durable string, handler func(ctx context.Context, event *domain.PlanComputedEvent) error) error {
	sub, err := s.js.Subscribe(SubjectPlanComputed, func(msg *nats.Msg) {
		var event domain.PlanComputedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			// malformed payloads will never decode; drop them
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
		nats.DeliverNew(),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectPlanComputed, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
