package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// EventPublisher defines the publishing side of the event bus.
type EventPublisher interface {
	// PublishRoastTask enqueues a generation task for the worker.
	PublishRoastTask(ctx context.Context, payload RoastTaskPayload) error
	// PublishUnlock enqueues an unlock event after a verified payment.
	PublishUnlock(ctx context.Context, payload UnlockPayload) error
	// Close releases the underlying channel.
	Close() error
}

// RabbitMQPublisher реализует EventPublisher для RabbitMQ.
type RabbitMQPublisher struct {
	conn *amqp091.Connection
	ch   *amqp091.Channel
}

var _ EventPublisher = (*RabbitMQPublisher)(nil)

// NewRabbitMQPublisher создает издателя событий.
// Важно: предполагается, что соединение conn уже установлено и обработка
// ошибок/переподключений управляется внешним кодом.
func NewRabbitMQPublisher(conn *amqp091.Connection) (*RabbitMQPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open a channel")
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Объявляем обе очереди durable, чтобы они пережили перезапуск брокера.
	// Повторное объявление существующей очереди - no-op.
	for _, queue := range WorkQueues {
		if _, err := ch.QueueDeclare(
			queue,                   // name
			true,                    // durable
			false,                   // auto-deleted
			false,                   // exclusive
			false,                   // no-wait
			QueueDeclareArgs(queue), // arguments
		); err != nil {
			_ = ch.Close()
			log.Error().Err(err).Str("queue", queue).Msg("Failed to declare queue")
			return nil, fmt.Errorf("failed to declare queue '%s': %w", queue, err)
		}
	}

	log.Info().Msg("Event publisher queues declared successfully")
	return &RabbitMQPublisher{conn: conn, ch: ch}, nil
}

// PublishRoastTask публикует задачу генерации в очередь задач.
func (p *RabbitMQPublisher) PublishRoastTask(ctx context.Context, payload RoastTaskPayload) error {
	return p.publish(ctx, QueueRoastTasks, payload.RoastID, payload)
}

// PublishUnlock публикует событие разблокировки.
func (p *RabbitMQPublisher) PublishUnlock(ctx context.Context, payload UnlockPayload) error {
	return p.publish(ctx, QueueUnlockEvents, payload.RoastID+"-unlock", payload)
}

func (p *RabbitMQPublisher) publish(ctx context.Context, queue, messageID string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Interface("payload", payload).Msg("Failed to marshal payload")
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",    // exchange (default, routing by queue name)
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			AppId:        "roast-server",
			MessageId:    messageID,
		},
	)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Str("messageId", messageID).Msg("Failed to publish message")
		return fmt.Errorf("failed to publish to '%s': %w", queue, err)
	}

	log.Debug().Str("queue", queue).Str("messageId", messageID).Msg("Message published")
	return nil
}

// Close закрывает канал издателя.
func (p *RabbitMQPublisher) Close() error {
	return p.ch.Close()
}
