package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"brand-profiler/internal/domain"
)

// RabbitAnalyzeQueue реализует очередь задач анализа через AMQP.
type RabbitAnalyzeQueue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

var _ domain.AnalyzeQueue = (*RabbitAnalyzeQueue)(nil)

// NewRabbitAnalyzeQueue подключается к RabbitMQ и объявляет durable-очередь.
func NewRabbitAnalyzeQueue(amqpURL, queue string) (*RabbitAnalyzeQueue, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := channel.Qos(1, 0, false); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &RabbitAnalyzeQueue{conn: conn, channel: channel, queue: queue}, nil
}

// Enqueue публикует задачу в очередь.
func (q *RabbitAnalyzeQueue) Enqueue(ctx context.Context, job domain.AnalyzeJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	err = q.channel.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// Receive блокирующе читает задачу из очереди. Ack с success=false
// возвращает сообщение в очередь для повторной доставки.
func (q *RabbitAnalyzeQueue) Receive(ctx context.Context) (domain.AnalyzeJob, domain.AnalyzeAckFunc, error) {
	deliveries, err := q.channel.ConsumeWithContext(ctx, q.queue, "", false, false, false, false, nil)
	if err != nil {
		return domain.AnalyzeJob{}, nil, fmt.Errorf("consume: %w", err)
	}
	select {
	case <-ctx.Done():
		return domain.AnalyzeJob{}, nil, ctx.Err()
	case delivery, ok := <-deliveries:
		if !ok {
			return domain.AnalyzeJob{}, nil, errors.New("amqp: канал доставки закрыт")
		}
		var job domain.AnalyzeJob
		if err := json.Unmarshal(delivery.Body, &job); err != nil {
			_ = delivery.Nack(false, false)
			return domain.AnalyzeJob{}, nil, fmt.Errorf("decode job: %w", err)
		}
		ack := func(success bool) error {
			if success {
				return delivery.Ack(false)
			}
			return delivery.Nack(false, true)
		}
		return job, ack, nil
	}
}

// Close закрывает соединение с брокером.
func (q *RabbitAnalyzeQueue) Close() error {
	if err := q.channel.Close(); err != nil {
		return err
	}
	return q.conn.Close()
}
