package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"todoapi/internal/logging"

	amqp "github.com/streadway/amqp"
)

const (
	// DefaultExchange is the topic exchange domain events are published to.
	DefaultExchange = "todoapi.events"
	// DefaultAuditQueue receives every event for the audit consumer.
	DefaultAuditQueue = "todoapi_audit"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	logger   logging.Logger
	mu       sync.Mutex
}

// Config holds RabbitMQ connection details. Empty Exchange and Queue fall
// back to DefaultExchange and DefaultAuditQueue; a nil Logger to slog's
// default logger.
type Config struct {
	URL      string
	Exchange string
	Queue    string
	Logger   logging.Logger
}

// Event is the envelope published for every domain event.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// NewClient connects to RabbitMQ, declares the events exchange and binds the
// audit queue to every routing key.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultAuditQueue
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewSlogLogger(slog.Default())
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg.Exchange, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	cfg.Logger.Info(context.Background(), "RabbitMQ client connected",
		"exchange", cfg.Exchange, "queue", cfg.Queue)

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
		logger:   cfg.Logger,
	}, nil
}

func declareTopology(ch *amqp.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(queue, "#", exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message to exchange with routingKey.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// PublishEvent wraps data in an Event envelope and publishes it to the
// client's exchange with the event type as routing key.
func (c *Client) PublishEvent(eventType string, data any) error {
	body, err := EncodeEvent(eventType, data, time.Now())
	if err != nil {
		return err
	}
	return c.Publish(c.exchange, eventType, body)
}

// EncodeEvent marshals the envelope for an event.
func EncodeEvent(eventType string, data any, at time.Time) ([]byte, error) {
	body, err := json.Marshal(Event{Type: eventType, OccurredAt: at.UTC(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", eventType, err)
	}
	return body, nil
}

// ConsumeEvents delivers messages from the client's queue to handler in a
// background goroutine. Messages are acked when handler returns nil and
// rejected without requeue otherwise.
func (c *Client) ConsumeEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			Dispatch(c.logger, msg, handler)
		}
	}()

	return nil
}

// Dispatch runs handler for one delivery, then acks it on success or rejects
// it without requeue on failure.
func Dispatch(logger logging.Logger, msg amqp.Delivery, handler func(msg amqp.Delivery) error) {
	ctx := context.Background()
	if err := handler(msg); err != nil {
		logger.Error(ctx, "failed to process message", "delivery_tag", msg.DeliveryTag, "error", err)
		// Requeueing an event that cannot be decoded would loop forever.
		if nackErr := msg.Nack(false, false); nackErr != nil {
			logger.Error(ctx, "failed to nack message", "delivery_tag", msg.DeliveryTag, "error", nackErr)
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		logger.Error(ctx, "failed to ack message", "delivery_tag", msg.DeliveryTag, "error", ackErr)
	}
}

// DecodeEvent parses a delivery body back into an Event.
func DecodeEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("event has no type")
	}
	return &ev, nil
}
