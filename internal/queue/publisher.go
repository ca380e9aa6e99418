package queue

import (
    "context"
    "encoding/json"
    "log"
    "os"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// AssignmentQueue is the durable queue carrying AssignmentEvent messages.
const AssignmentQueue = "seat.assignments"

// BrokerURL resolves the RabbitMQ URL from RABBITMQ_URL or AMQP_URL.  It
// returns "" when neither is set.
func BrokerURL() string {
    if url := os.Getenv("RABBITMQ_URL"); url != "" {
        return url
    }
    return os.Getenv("AMQP_URL")
}

// Publisher publishes assignment events to RabbitMQ.  Each call dials its
// own connection; events are rare (one per admin action) so no connection
// is held open between them.
type Publisher struct {
    URL string
}

// NewPublisher returns a Publisher for url, or nil when url is empty so
// callers can skip publishing entirely.
func NewPublisher(url string) *Publisher {
    if url == "" {
        return nil
    }
    return &Publisher{URL: url}
}

// Publish sends event to the assignment queue as a persistent JSON message.
// Errors are logged and returned so the caller can choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, event AssignmentEvent) error {
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    if err := declare(ch); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    if event.OccurredAt == "" {
        event.OccurredAt = time.Now().UTC().Format(time.RFC3339)
    }
    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         event.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",              // default exchange
        AssignmentQueue, // routing key = queue name
        false,           // mandatory
        false,           // immediate
        pub,
    ); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}

// declare makes sure the durable assignment queue exists (idempotent).
func declare(ch *amqp.Channel) error {
    _, err := ch.QueueDeclare(
        AssignmentQueue, // name
        true,            // durable
        false,           // autoDelete
        false,           // exclusive
        false,           // noWait
        nil,             // args
    )
    return err
}
