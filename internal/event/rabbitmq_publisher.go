package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	publisherAppID = "collection-engine"
	publishTimeout = 5 * time.Second
)

type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitMQEventPublisher struct {
	openChannel  func() (amqpChannel, error)
	exchangeName string
	logger       *slog.Logger
}

var _ EventPublisher = (*RabbitMQEventPublisher)(nil)

func NewRabbitMQEventPublisher(conn *amqp.Connection, exchangeName string, logger *slog.Logger) (*RabbitMQEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection cannot be nil")
	}
	return newPublisher(func() (amqpChannel, error) { return conn.Channel() }, exchangeName, logger)
}

func newPublisher(openChannel func() (amqpChannel, error), exchangeName string, logger *slog.Logger) (*RabbitMQEventPublisher, error) {
	if exchangeName == "" {
		return nil, fmt.Errorf("RabbitMQ exchange name cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	tempCh, err := openChannel()
	if err != nil {
		return nil, fmt.Errorf("failed to open temporary channel for exchange declaration: %w", err)
	}
	defer tempCh.Close()

	if err := tempCh.ExchangeDeclare(exchangeName, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}
	logger.Info("Ensured RabbitMQ exchange exists", "exchange", exchangeName, "type", amqp.ExchangeTopic)

	return &RabbitMQEventPublisher{
		openChannel:  openChannel,
		exchangeName: exchangeName,
		logger:       logger.With("component", "RabbitMQEventPublisher", "exchange", exchangeName),
	}, nil
}

func (p *RabbitMQEventPublisher) PublishImportCompleted(ctx context.Context, event ImportCompletedEvent) error {
	return p.publish(ctx, RoutingKeyImportCompleted, event.BatchID, event)
}

// PublishCustomerSettled uses batch id plus account number as the message id, so consumers can
// drop redeliveries of the same settlement.
func (p *RabbitMQEventPublisher) PublishCustomerSettled(ctx context.Context, event CustomerSettledEvent) error {
	return p.publish(ctx, RoutingKeyCustomerSettled, event.BatchID+":"+event.AccountNumber, event)
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey, messageID string, payload any) error {
	logger := p.logger.With(slog.String("routingKey", routingKey), slog.String("messageId", messageID))

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", routingKey, err)
	}

	ch, err := p.openChannel()
	if err != nil {
		logger.ErrorContext(ctx, "Could not open RabbitMQ channel", slog.Any("error", err))
		return fmt.Errorf("open channel for %s: %w", routingKey, err)
	}
	defer ch.Close()

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Type:         routingKey,
		Timestamp:    time.Now().UTC(),
		AppId:        publisherAppID,
		Body:         body,
	}
	if err := ch.PublishWithContext(publishCtx, p.exchangeName, routingKey, false, false, msg); err != nil {
		logger.ErrorContext(ctx, "RabbitMQ rejected event", slog.Any("error", err))
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	logger.DebugContext(ctx, "Event published", slog.Int("bytes", len(body)))
	return nil
}
