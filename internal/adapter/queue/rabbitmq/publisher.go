package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iho/cashflow/internal/domain"
)

var entriesPublished = promauto.NewCounter(prometheus.CounterOpts{
	Name: "cashflow_entries_published_total",
	Help: "Entries handed to the queue for deferred consolidation",
})

// Publisher implements usecase.Publisher on a durable AMQP exchange.
type Publisher struct {
	ch       *amqp.Channel
	topology Topology
	logger   zerolog.Logger
}

// NewPublisher opens a channel, declares the topology, and returns a
// publisher bound to it.
func NewPublisher(conn *amqp.Connection, topology Topology, logger zerolog.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	if err := topology.declare(ch); err != nil {
		ch.Close()
		return nil, err
	}

	return &Publisher{
		ch:       ch,
		topology: topology,
		logger:   logger,
	}, nil
}

// PublishEntry queues the full entry payload as a persistent message.
func (p *Publisher) PublishEntry(ctx context.Context, entry *domain.Entry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx,
		p.topology.Exchange,
		p.topology.RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ulid.Make().String(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return err
	}

	entriesPublished.Inc()

	p.logger.Info().
		Int64("entry_id", entry.ID).
		Str("routing_key", p.topology.RoutingKey).
		Msg("entry published for deferred consolidation")

	return nil
}

// Close releases the channel.
func (p *Publisher) Close() error {
	return p.ch.Close()
}
