package queue

import (
	"context"
	"errors"
	"fmt"
	"tengoku-tracker/internal/config"
	"tengoku-tracker/internal/domain"
	"tengoku-tracker/internal/payload"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

const consumerTag = "tengoku-tracker"

type Submitter interface {
	SubmitMatch(ctx context.Context, sub domain.MatchSubmission) (*domain.MatchResult, error)
}

// Consumer feeds match payloads published on an AMQP queue into the same ingestion path as
// POST /games. Redelivery is safe because recording is idempotent on the game id.
type Consumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queue     string
	submitter Submitter
	logger    zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewConsumer(submitter Submitter, logger zerolog.Logger) *Consumer {
	return &Consumer{submitter: submitter, logger: logger}
}

// Dial connects and declares the durable queue. It returns nil, nil when AMQP_URL is unset.
func Dial(cfg *config.Config, submitter Submitter, logger zerolog.Logger) (*Consumer, error) {
	if cfg.AMQPURL == "" {
		logger.Info().Msg("AMQP_URL not set, queue ingestion disabled")
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}

	if _, err := ch.QueueDeclare(cfg.AMQPQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.AMQPQueue, err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	c := NewConsumer(submitter, logger)
	c.conn = conn
	c.channel = ch
	c.queue = cfg.AMQPQueue
	return c, nil
}

func (c *Consumer) Start() error {
	msgs, err := c.channel.Consume(c.queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(ctx, msgs)

	c.logger.Info().Str("queue", c.queue).Msg("amqp consumer started")
	return nil
}

func (c *Consumer) run(ctx context.Context, msgs <-chan amqp.Delivery) {
	defer close(c.done)
	for d := range msgs {
		c.Handle(ctx, d)
	}
}

// Stop cancels the subscription, lets the in-flight delivery finish and closes the connection.
func (c *Consumer) Stop(ctx context.Context) error {
	if err := c.channel.Cancel(consumerTag, false); err != nil {
		c.logger.Warn().Err(err).Msg("failed to cancel amqp consumer")
	}

	if c.done != nil {
		select {
		case <-c.done:
		case <-ctx.Done():
			c.logger.Warn().Msg("amqp consumer did not drain before shutdown")
		}
		c.cancel()
	}

	c.channel.Close()
	return c.conn.Close()
}

// Handle processes one delivery: ack once the match is stored (or was already), drop
// payloads that can never succeed, requeue on storage failures.
func (c *Consumer) Handle(ctx context.Context, d amqp.Delivery) {
	log := c.logger.With().Uint64("delivery_tag", d.DeliveryTag).Logger()

	sub, err := payload.DecodeGame(d.Body)
	if err != nil {
		log.Warn().Err(err).Msg("dropping undecodable match message")
		c.nack(log, d, false)
		return
	}

	log = log.With().Str("game_id", sub.GameID).Logger()

	result, err := c.submitter.SubmitMatch(ctx, sub)
	switch {
	case err == nil:
		if err := d.Ack(false); err != nil {
			log.Error().Err(err).Msg("failed to ack delivery")
			return
		}
		log.Info().Str("status", string(result.Status)).Msg("match message processed")
	case errors.Is(err, domain.ErrInvalidMatch):
		log.Warn().Err(err).Msg("dropping invalid match message")
		c.nack(log, d, false)
	case errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, domain.ErrPlayerUpsertFailed),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		log.Error().Err(err).Msg("storage failure, requeueing match message")
		c.nack(log, d, true)
	default:
		log.Error().Err(err).Msg("unexpected failure, dropping match message")
		c.nack(log, d, false)
	}
}

func (c *Consumer) nack(log zerolog.Logger, d amqp.Delivery, requeue bool) {
	if err := d.Nack(false, requeue); err != nil {
		log.Error().Err(err).Bool("requeue", requeue).Msg("failed to nack delivery")
	}
}
