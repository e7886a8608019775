package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// maxRequeueDelay caps the exponential backoff between redeliveries.
const maxRequeueDelay = 60 * time.Second

type MessageHandler func(ctx context.Context, body []byte) error

type ConsumerConfig struct {
	URL         string
	Queue       string
	Exchange    string
	DLQ         string
	StatusQueue string
	RequestKey  string
	StatusKey   string
	Prefetch    int
	WorkerCount int
	BaseDelayMs int
}

// Consumer pulls edit requests off the queue and fans them out to a
// fixed pool of workers. Failed deliveries are requeued with
// exponential backoff based on the broker's x-death count; permanent
// failures are routed to the DLQ by the use case, not here.
type Consumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	cfg       ConsumerConfig
	baseDelay time.Duration
	handler   MessageHandler
	logger    *zap.Logger
	wg        sync.WaitGroup
}

func NewConsumer(cfg ConsumerConfig, handler MessageHandler, logger *zap.Logger) (*Consumer, error) {
	if cfg.RequestKey == "" {
		cfg.RequestKey = cfg.Queue
	}
	if cfg.StatusKey == "" {
		cfg.StatusKey = cfg.StatusQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &Consumer{
		conn:      conn,
		channel:   ch,
		cfg:       cfg,
		baseDelay: time.Duration(cfg.BaseDelayMs) * time.Millisecond,
		handler:   handler,
		logger:    logger,
	}, nil
}

func declareTopology(ch *amqp.Channel, cfg ConsumerConfig) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	for _, q := range []string{cfg.Queue, cfg.DLQ, cfg.StatusQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	bindings := map[string]string{
		cfg.Queue:       cfg.RequestKey,
		cfg.StatusQueue: cfg.StatusKey,
	}
	for queue, key := range bindings {
		if err := ch.QueueBind(queue, key, cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s to %s: %w", queue, key, err)
		}
	}
	return nil
}

// Start blocks until ctx is cancelled and all in-flight deliveries are
// handled.
func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(ctx,
		c.cfg.Queue,
		"videoeditor-worker",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}

	c.logger.Info("consumer started",
		zap.String("queue", c.cfg.Queue),
		zap.Int("workers", c.cfg.WorkerCount),
		zap.Int("prefetch", c.cfg.Prefetch),
	)

	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.wg.Add(1)
		go func(id int) {
			defer c.wg.Done()
			c.consumeLoop(ctx, c.logger.With(zap.Int("worker_id", id)), deliveries)
		}(i)
	}

	<-ctx.Done()
	c.logger.Info("shutdown requested, draining workers")
	c.wg.Wait()
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context, log *zap.Logger, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			log.Debug("worker stopped")
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Warn("delivery channel closed")
				return
			}
			c.handle(ctx, d, log)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery, log *zap.Logger) {
	if err := c.handler(ctx, d.Body); err != nil {
		redeliveries := deathCount(d.Headers)
		delay := c.requeueDelay(redeliveries)
		log.Warn("handler failed, requeueing after backoff",
			zap.Error(err),
			zap.Int("redeliveries", redeliveries),
			zap.Duration("delay", delay),
		)

		select {
		case <-time.After(delay):
			_ = d.Nack(false, true)
		case <-ctx.Done():
			// Shutting down; drop without requeue delay so the broker
			// redelivers to the next worker.
			_ = d.Nack(false, true)
		}
		return
	}

	_ = d.Ack(false)
}

// deathCount reads how many times the broker has already cycled this
// delivery, so backoff grows across redeliveries.
func deathCount(headers amqp.Table) int {
	deaths, ok := headers["x-death"].([]interface{})
	if !ok || len(deaths) == 0 {
		return 1
	}
	return len(deaths)
}

func (c *Consumer) requeueDelay(redeliveries int) time.Duration {
	delay := c.baseDelay
	for i := 1; i < redeliveries; i++ {
		delay *= 2
		if delay >= maxRequeueDelay {
			return maxRequeueDelay
		}
	}
	return delay
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
