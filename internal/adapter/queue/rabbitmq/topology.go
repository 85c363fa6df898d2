package rabbitmq

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Topology names the durable exchange/queue pair carrying entries that
// await consolidation.
type Topology struct {
	Exchange   string
	Queue      string
	RoutingKey string
}

// DefaultTopology matches the broker layout the worker consumes from.
func DefaultTopology() Topology {
	return Topology{
		Exchange:   "entries",
		Queue:      "consolidation",
		RoutingKey: "entry.registered",
	}
}

// declare sets up the durable exchange, queue, and binding. Declares
// are idempotent, so publisher and consumer can both run this.
func (t Topology) declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(t.Exchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(t.Queue, true, false, false, false, nil); err != nil {
		return err
	}

	return ch.QueueBind(t.Queue, t.RoutingKey, t.Exchange, false, nil)
}
