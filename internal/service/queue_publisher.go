package service

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    q "github.com/iliyamo/video-rental/internal/queue"
)

// EventPublisher receives rental events after the owning transaction has
// committed.  Implementations must not block the request for long; errors
// are logged by the caller and never change the response.
type EventPublisher interface {
    RentalCreated(ctx context.Context, ev q.RentalCreatedEvent) error
    RentalReturned(ctx context.Context, ev q.RentalReturnedEvent) error
}

// NopPublisher drops every event.  It is used when EVENTS_ENABLED is off.
type NopPublisher struct{}

func (NopPublisher) RentalCreated(context.Context, q.RentalCreatedEvent) error   { return nil }
func (NopPublisher) RentalReturned(context.Context, q.RentalReturnedEvent) error { return nil }

// RabbitPublisher publishes each event on its own short-lived connection
// to the default exchange, routed by queue name.  Messages are persistent.
type RabbitPublisher struct {
    url     string
    timeout time.Duration
    log     *zap.Logger
}

// NewRabbitPublisher returns a publisher for the broker at url.
func NewRabbitPublisher(url string, log *zap.Logger) *RabbitPublisher {
    return &RabbitPublisher{url: url, timeout: 2 * time.Second, log: log.Named("rabbitmq")}
}

func (p *RabbitPublisher) RentalCreated(ctx context.Context, ev q.RentalCreatedEvent) error {
    return p.publish(ctx, q.RentalCreatedQueue, ev)
}

func (p *RabbitPublisher) RentalReturned(ctx context.Context, ev q.RentalReturnedEvent) error {
    return p.publish(ctx, q.RentalReturnedQueue, ev)
}

func (p *RabbitPublisher) publish(ctx context.Context, queue string, event any) error {
    ctx, cancel := context.WithTimeout(ctx, p.timeout)
    defer cancel()

    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.timeout)})
    if err != nil {
        p.log.Warn("dial failed", zap.Error(err))
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Warn("channel open failed", zap.Error(err))
        return err
    }
    defer func() { _ = ch.Close() }()

    // idempotent; durable so messages survive broker restarts
    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        p.log.Warn("queue declare failed", zap.String("queue", queue), zap.Error(err))
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
        p.log.Warn("publish failed", zap.String("queue", queue), zap.Error(err))
        return err
    }
    return nil
}
