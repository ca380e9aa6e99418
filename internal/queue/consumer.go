package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultAuditLog is where the consumer appends audit lines.
var DefaultAuditLog = filepath.Join("logs", "seat_audit.log")

// StartAuditConsumer connects to RabbitMQ, declares the seat.assignments
// queue (durable), and appends one line per event to logPath. It runs a
// reconnect loop with exponential backoff and only returns once ctx is
// cancelled. Malformed messages are rejected without requeue so the loop
// never spins on them.
func StartAuditConsumer(ctx context.Context, url, logPath string) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("audit-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, logPath)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("audit-consumer: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("audit-consumer: set QoS failed: %v", err)
    }
    if err := declare(ch); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(AssignmentQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := HandleMessage(d.Body, logPath); err != nil {
                log.Printf("audit-consumer: handle message failed: %v", err)
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes one AssignmentEvent and appends its audit line.
func HandleMessage(body []byte, logPath string) error {
    var ev AssignmentEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" {
        return errors.New("event without type")
    }
    if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatAuditLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatAuditLine renders ev as a single human-friendly line.
func FormatAuditLine(ev AssignmentEvent) string {
    switch ev.Type {
    case EventSeatsCleared:
        return fmt.Sprintf("[%s] Seats cleared | deleted=%d\n", ev.OccurredAt, ev.Deleted)
    case EventRangeApplied:
        rolls := "[]"
        if len(ev.Rolls) > 0 {
            rolls = fmt.Sprintf("[%s]", strings.Join(ev.Rolls, ","))
        }
        return fmt.Sprintf("[%s] Range applied | branch=%s | year=%d | room=\"%s\" | location=\"%s\" | range=%d-%d | generated=%d | inserted=%d | conflicts=%d | modified=%d | rolls=%s\n",
            ev.OccurredAt, ev.Branch, ev.Year, ev.Room, ev.Location, ev.Start, ev.End,
            ev.Generated, ev.Inserted, ev.Conflicts, ev.Modified, rolls)
    }
    return fmt.Sprintf("[%s] %s\n", ev.OccurredAt, ev.Type)
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
