package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iho/cashflow/internal/domain"
	"github.com/iho/cashflow/internal/usecase"
)

var deliveriesProcessed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cashflow_worker_deliveries_total",
		Help: "Queue deliveries by outcome",
	},
	[]string{"outcome"},
)

// Consumer drains the consolidation queue. Manual acks, prefetch 1:
// a message only leaves the queue after it was fully processed.
type Consumer struct {
	conn     *amqp.Connection
	topology Topology
	uc       *usecase.ConsolidationUseCase
	logger   zerolog.Logger
}

// NewConsumer creates a new Consumer.
func NewConsumer(conn *amqp.Connection, topology Topology, uc *usecase.ConsolidationUseCase, logger zerolog.Logger) *Consumer {
	return &Consumer{
		conn:     conn,
		topology: topology,
		uc:       uc,
		logger:   logger,
	}
}

// Start consumes until the context is cancelled or the channel closes.
// Per-message failures are logged and requeued; they never stop the
// loop.
func (c *Consumer) Start(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := c.topology.declare(ch); err != nil {
		return err
	}

	if err := ch.Qos(1, 0, false); err != nil {
		return err
	}

	deliveries, err := ch.Consume(c.topology.Queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.logger.Info().Str("queue", c.topology.Queue).Msg("consumer started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("consumer shutting down")
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return amqp.ErrClosed
			}

			c.handle(ctx, delivery)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, delivery amqp.Delivery) {
	// A panic must requeue the message, not kill the loop.
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Msg("panic while processing delivery")
			c.nack(delivery, true)
			deliveriesProcessed.WithLabelValues("panic").Inc()
		}
	}()

	var entry domain.Entry
	if err := json.Unmarshal(delivery.Body, &entry); err != nil {
		// Redelivery cannot fix a malformed payload; drop it.
		c.logger.Error().Err(err).Str("message_id", delivery.MessageId).Msg("dropping undecodable delivery")
		c.nack(delivery, false)
		deliveriesProcessed.WithLabelValues("dropped").Inc()
		return
	}

	if err := c.uc.Consolidate(ctx, &entry); err != nil {
		c.logger.Warn().Err(err).Int64("entry_id", entry.ID).Msg("consolidation failed, requeueing")
		c.nack(delivery, true)
		deliveriesProcessed.WithLabelValues("requeued").Inc()
		return
	}

	if err := delivery.Ack(false); err != nil {
		c.logger.Error().Err(err).Int64("entry_id", entry.ID).Msg("failed to ack delivery")
		return
	}

	deliveriesProcessed.WithLabelValues("acked").Inc()
}

func (c *Consumer) nack(delivery amqp.Delivery, requeue bool) {
	if err := delivery.Nack(false, requeue); err != nil {
		c.logger.Error().Err(err).Uint64("delivery_tag", delivery.DeliveryTag).Msg("failed to nack delivery")
	}
}
