package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher публикует события бронирований в RabbitMQ
// Уведомления не критичны для основного потока: все ошибки публикации
// логируются и НЕ пробрасываются в usecase
type Publisher struct {
	url      string
	exchange string
	log      Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher создает издатель событий. Соединение устанавливается лениво
// при первой публикации и переустанавливается после обрыва.
func NewPublisher(url, exchange string, log Logger) *Publisher {
	return &Publisher{
		url:      url,
		exchange: exchange,
		log:      log,
	}
}

// BookingCreated публикует событие создания бронирования
func (p *Publisher) BookingCreated(ctx context.Context, payload BookingPayload) {
	p.publish(ctx, EventBookingCreated, payload)
}

// BookingApproved публикует событие одобрения бронирования
func (p *Publisher) BookingApproved(ctx context.Context, payload BookingPayload) {
	p.publish(ctx, EventBookingApproved, payload)
}

// BookingRejected публикует событие отклонения бронирования
func (p *Publisher) BookingRejected(ctx context.Context, payload BookingPayload) {
	p.publish(ctx, EventBookingRejected, payload)
}

// BookingCancelled публикует событие отмены бронирования
func (p *Publisher) BookingCancelled(ctx context.Context, payload BookingPayload) {
	p.publish(ctx, EventBookingCancelled, payload)
}

// StepEscalated публикует событие эскалации шага согласования
func (p *Publisher) StepEscalated(ctx context.Context, payload EscalationPayload) {
	p.publish(ctx, EventStepEscalated, payload)
}

// Close закрывает соединение с брокером
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) publish(ctx context.Context, eventType string, payload interface{}) {
	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	if err := p.send(ctx, event); err != nil {
		// Одна повторная попытка: обрыв соединения чинится переподключением
		p.reset()
		if err = p.send(ctx, event); err != nil {
			p.log.Error("notify: failed to publish %s event %s: %v", eventType, event.ID, err)
			return
		}
	}

	p.log.Info("notify: published %s event %s", eventType, event.ID)
}

func (p *Publisher) send(ctx context.Context, event Event) error {
	ch, err := p.channel()
	if err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", ErrPublishFailed, err)
	}

	err = ch.PublishWithContext(ctx,
		p.exchange,
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}

	return nil
}

// channel возвращает открытый канал, устанавливая соединение при необходимости
func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		return p.ch, nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %v", ErrNotConnected, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %v", ErrNotConnected, err)
	}

	// Durable topic exchange, объявление идемпотентно
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%w: declare exchange: %v", ErrNotConnected, err)
	}

	p.conn = conn
	p.ch = ch

	return p.ch, nil
}

func (p *Publisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
