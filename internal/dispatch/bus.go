// Package dispatch implements the Dispatch Client: the distributed
// fan-out protocol that submits candidate scenarios to the external
// simulator fleet over a message bus plus a shared key-value store,
// and correlates responses back to population members (spec.md §4.4).
package dispatch

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange and routing-key names, fixed by spec.md §6.
const (
	ExchangeName     = "opt4cast_exchange"
	SubmitRoutingKey = "opt4cast_execution"
)

// Delivery is one message received from a consumed queue.
type Delivery struct {
	Body string
	Ack  func() error
}

// Bus abstracts the direct-exchange publish/consume protocol of
// spec.md §6 so that internal/dispatch can be tested without a live
// broker.
type Bus interface {
	Publish(ctx context.Context, routingKey, body string) error
	Consume(ctx context.Context, routingKey string) (<-chan Delivery, error)
	Close() error
}

// AMQPBus is the production Bus backed by
// github.com/rabbitmq/amqp091-go, declaring the durable direct
// exchange "opt4cast_exchange" named in spec.md §6.
type AMQPBus struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// DialAMQPBus connects to url and declares the exchange.
func DialAMQPBus(url string) (*AMQPBus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dispatch: dialing AMQP broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("dispatch: opening AMQP channel: %w", err)
	}
	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("dispatch: declaring exchange: %w", err)
	}
	return &AMQPBus{conn: conn, ch: ch}, nil
}

// Publish publishes body to routingKey on the opt4cast_exchange.
func (b *AMQPBus) Publish(ctx context.Context, routingKey, body string) error {
	return b.ch.PublishWithContext(ctx, ExchangeName, routingKey, false, false, amqp.Publishing{
		ContentType: "text/plain",
		Body:        []byte(body),
	})
}

// Consume declares a queue bound to routingKey and returns a channel
// of deliveries. Deliveries are explicitly acknowledged by the caller
// via Delivery.Ack (no_ack=false), so a driver crash mid-batch leaves
// the message available for redelivery — this replaces the source's
// no_ack=true behavior per spec.md §9.
func (b *AMQPBus) Consume(ctx context.Context, routingKey string) (<-chan Delivery, error) {
	q, err := b.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, fmt.Errorf("dispatch: declaring queue: %w", err)
	}
	if err := b.ch.QueueBind(q.Name, routingKey, ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("dispatch: binding queue: %w", err)
	}
	deliveries, err := b.ch.ConsumeWithContext(ctx, q.Name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("dispatch: consuming queue: %w", err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				delivery := d
				select {
				case out <- Delivery{Body: string(delivery.Body), Ack: func() error { return delivery.Ack(false) }}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close tears down the channel and connection.
func (b *AMQPBus) Close() error {
	cherr := b.ch.Close()
	connerr := b.conn.Close()
	if cherr != nil {
		return cherr
	}
	return connerr
}
