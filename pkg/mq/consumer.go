package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"mailtriage/pkg/trace"
)

type MessageHandler func(ctx context.Context, data json.RawMessage) error

// Consumer binds one durable queue to the events exchange and feeds
// deliveries to a handler with manual ack. A handler error nacks with
// requeue; a handler panic is recovered and also nacks.
type Consumer struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	queue      amqp091.Queue
	routingKey string
	handler    MessageHandler
	logger     *zap.Logger
}

func NewConsumer(url, queueName, routingKey string, logger *zap.Logger) (*Consumer, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := DeclareExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, routingKey, ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	logger.Info("consumer ready",
		zap.String("queue", queueName),
		zap.String("routing_key", routingKey),
	)

	return &Consumer{
		conn:       conn,
		channel:    ch,
		queue:      q,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// StartConsuming blocks until the delivery channel closes. Run it in a
// goroutine.
func (c *Consumer) StartConsuming() error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	deliveries, err := c.channel.Consume(
		c.queue.Name,
		c.queue.Name, // consumer tag
		false,        // 手动 ack
		false, false, false, nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("consuming", zap.String("queue", c.queue.Name))

	for msg := range deliveries {
		c.handleDelivery(msg)
	}
	return nil
}

// handleDelivery 保证每条消息都以 ack 或 nack 收尾
func (c *Consumer) handleDelivery(msg amqp091.Delivery) {
	ctx := context.Background()
	if id, ok := msg.Headers[trace.HeaderName()].(string); ok && id != "" {
		ctx = trace.WithContext(ctx, id)
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("handler panic recovered",
				zap.String("queue", c.queue.Name),
				zap.Any("panic", r),
			)
			c.nack(msg)
		}
	}()

	if err := c.handler(ctx, msg.Body); err != nil {
		c.logger.Error("handler error",
			zap.String("queue", c.queue.Name),
			zap.String("routing_key", c.routingKey),
			zap.Error(err),
		)
		c.nack(msg)
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Error("failed to ack", zap.String("queue", c.queue.Name), zap.Error(err))
	}
}

func (c *Consumer) nack(msg amqp091.Delivery) {
	// requeue 让 MQ 重投，配合 handler 侧的重试计数
	if err := msg.Nack(false, true); err != nil {
		c.logger.Error("failed to nack", zap.String("queue", c.queue.Name), zap.Error(err))
	}
}
