package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sync"
    "time"

    "github.com/cenkalti/backoff/v4"
    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// AuditLogName is the file, under the configured directory, that the
// consumer appends one line per rental event to.
const AuditLogName = "rentals.log"

// Consumer reads both rental queues and appends a single-line summary of
// every event to the audit log.
type Consumer struct {
    url    string
    logDir string
    log    *zap.Logger

    mu sync.Mutex // serializes writes to the audit log
}

// NewConsumer returns a consumer for the broker at url writing into logDir.
func NewConsumer(url, logDir string, log *zap.Logger) *Consumer {
    if logDir == "" {
        logDir = "logs"
    }
    return &Consumer{url: url, logDir: logDir, log: log.Named("rental-consumer")}
}

// Run connects to RabbitMQ and consumes until ctx is cancelled.  Lost
// connections are retried with exponential backoff; Run only returns once
// ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
    policy := backoff.NewExponentialBackOff()
    policy.InitialInterval = time.Second
    policy.MaxInterval = 30 * time.Second
    policy.MaxElapsedTime = 0 // retry forever

    op := func() error {
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.log.Warn("dial broker failed", zap.Error(err))
            return err
        }
        defer func() { _ = conn.Close() }()
        policy.Reset()

        err = c.consume(ctx, conn)
        if ctx.Err() != nil {
            return backoff.Permanent(ctx.Err())
        }
        c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
        return err
    }

    err := backoff.Retry(op, backoff.WithContext(policy, ctx))
    if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
        return nil
    }
    return err
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn("set qos failed", zap.Error(err))
    }

    deliveries := make(chan amqp.Delivery)
    var wg sync.WaitGroup
    for _, name := range []string{RentalCreatedQueue, RentalReturnedQueue} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
        msgs, err := ch.Consume(name, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", name, err)
        }
        wg.Add(1)
        go func() {
            defer wg.Done()
            for d := range msgs {
                select {
                case deliveries <- d:
                case <-ctx.Done():
                    return
                }
            }
        }()
    }
    go func() { wg.Wait(); close(deliveries) }()

    c.log.Info("consuming rental events")
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-deliveries:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.Handle(d.RoutingKey, d.Body); err != nil {
                c.log.Error("handle message failed", zap.String("queue", d.RoutingKey), zap.Error(err))
                _ = d.Nack(false, false) // drop, requeueing a bad payload would spin
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes one message from queue and appends it to the audit log.
func (c *Consumer) Handle(queue string, body []byte) error {
    line, err := formatEvent(queue, body)
    if err != nil {
        return err
    }

    c.mu.Lock()
    defer c.mu.Unlock()
    if err := os.MkdirAll(c.logDir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", c.logDir, err)
    }
    f, err := os.OpenFile(filepath.Join(c.logDir, AuditLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open audit log: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write audit log: %w", err)
    }
    return nil
}

func formatEvent(queue string, body []byte) (string, error) {
    switch queue {
    case RentalCreatedQueue:
        var ev RentalCreatedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Rental created | rental_id=%d | customer_id=%d | customer=%q | movie_id=%d | movie=%q | rate=%.2f\n",
            ev.DateOut, ev.RentalID, ev.CustomerID, ev.CustomerName, ev.MovieID, ev.MovieTitle, ev.DailyRentalRate), nil
    case RentalReturnedQueue:
        var ev RentalReturnedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Rental returned | rental_id=%d | customer_id=%d | customer=%q | movie_id=%d | movie=%q | out=%s | fee=%.2f\n",
            ev.DateReturned, ev.RentalID, ev.CustomerID, ev.CustomerName, ev.MovieID, ev.MovieTitle, ev.DateOut, ev.RentalFee), nil
    default:
        return "", fmt.Errorf("unknown queue %q", queue)
    }
}
