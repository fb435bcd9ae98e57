package messaging

import (
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// HandlerFunc обрабатывает тело одного сообщения. redelivered=true означает
// последнюю попытку: при ненулевой ошибке сообщение уйдет в DLQ, а не в
// повторную доставку.
type HandlerFunc func(body []byte, redelivered bool) error

// Consumer потребляет сообщения из одной очереди RabbitMQ с ручным ack.
type Consumer struct {
	conn      *amqp091.Connection
	channel   *amqp091.Channel
	queueName string
	logger    *zap.Logger
	done      chan struct{}
}

// NewConsumer creates a consumer for the given queue.
func NewConsumer(conn *amqp091.Connection, queueName string, logger *zap.Logger) *Consumer {
	return &Consumer{
		conn:      conn,
		queueName: queueName,
		logger:    logger.Named("Consumer").With(zap.String("queue", queueName)),
		done:      make(chan struct{}),
	}
}

// SetupDeadLetter объявляет DLX и по одному DLQ на каждую рабочую очередь.
// Вызывается один раз при старте воркера, до объявления основных очередей.
func SetupDeadLetter(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		DeadLetterExchange, // name
		"direct",           // type
		true,               // durable
		false,              // auto-deleted
		false,              // internal
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare DLX: %w", err)
	}

	for _, queue := range WorkQueues {
		dlq := DeadLetterQueueFor(queue)
		if _, err := ch.QueueDeclare(
			dlq,   // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		); err != nil {
			return fmt.Errorf("failed to declare DLQ '%s': %w", dlq, err)
		}

		if err := ch.QueueBind(
			dlq,                // queue name
			dlq,                // routing key
			DeadLetterExchange, // exchange
			false,
			nil,
		); err != nil {
			return fmt.Errorf("failed to bind DLQ '%s' to DLX: %w", dlq, err)
		}
	}

	return nil
}

// Start объявляет очередь и запускает цикл потребления в горутине.
// handler вызывается последовательно (prefetch=1).
func (c *Consumer) Start(handler HandlerFunc) error {
	var err error
	c.channel, err = c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := c.channel.QueueDeclare(
		c.queueName,                   // name
		true,                          // durable
		false,                         // delete when unused
		false,                         // exclusive
		false,                         // no-wait
		QueueDeclareArgs(c.queueName), // arguments
	); err != nil {
		_ = c.channel.Close()
		return fmt.Errorf("failed to declare queue '%s': %w", c.queueName, err)
	}

	if err := c.channel.Qos(1, 0, false); err != nil {
		_ = c.channel.Close()
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (выключен: подтверждаем вручную)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		_ = c.channel.Close()
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started, waiting for messages...")

	go func() {
		defer close(c.done)
		for msg := range msgs {
			if err := handler(msg.Body, msg.Redelivered); err != nil {
				if msg.Redelivered {
					// Вторая неудача - отправляем в DLQ
					c.logger.Error("Message failed after redelivery, dead-lettering",
						zap.Error(err), zap.String("messageId", msg.MessageId))
					_ = msg.Nack(false, false)
				} else {
					c.logger.Warn("Message handling failed, requeueing once",
						zap.Error(err), zap.String("messageId", msg.MessageId))
					_ = msg.Nack(false, true)
				}
				continue
			}
			_ = msg.Ack(false)
		}
		c.logger.Info("Message channel closed, consumer goroutine exiting")
	}()

	return nil
}

// Stop закрывает канал; цикл потребления завершается после текущего сообщения.
func (c *Consumer) Stop() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	<-c.done
}
