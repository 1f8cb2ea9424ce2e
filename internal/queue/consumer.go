package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/seating-designer/internal/logging"
)

// StartLayoutConsumer connects to RabbitMQ, declares the layout.saved queue
// (durable) and appends every event to <logDir>/layout.log as one line.
// It reconnects with backoff until ctx is cancelled; a message that cannot
// be handled is rejected without requeue so the loop keeps going.
func StartLayoutConsumer(ctx context.Context, url, logDir string) error {
    lg := logging.Component("layout-consumer")
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            lg.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
            select {
            case <-ctx.Done():
                return ctx.Err()
            case <-time.After(backoff):
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, logDir)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        lg.Warn().Err(err).Msg("consume loop ended; reconnecting")
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-time.After(2 * time.Second):
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string) error {
    lg := logging.Component("layout-consumer")
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        lg.Warn().Err(err).Msg("set QoS failed")
    }
    if _, err := ch.QueueDeclare(LayoutSavedQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(LayoutSavedQueue, "", false, false, false, false, nil)
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
            if err := handleMessage(d.Body, logDir); err != nil {
                lg.Error().Err(err).Msg("handle message failed")
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func handleMessage(body []byte, logDir string) error {
    var ev LayoutSavedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.ScreenID == "" {
        return errors.New("event without screen_id")
    }
    if err := os.MkdirAll(logDir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(logDir, "layout.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatLine(ev LayoutSavedEvent) string {
    tiers := make([]string, 0, len(ev.SeatsByTier))
    for t, n := range ev.SeatsByTier {
        tiers = append(tiers, fmt.Sprintf("%s=%d", t, n))
    }
    sort.Strings(tiers)
    return fmt.Sprintf("[%s] Layout saved | screen=%q | by=%s | rows=%d | seats=%d | gaps=%d | tiers=[%s]\n",
        ev.SavedAt, ev.ScreenID, ev.SavedBy, ev.Rows, ev.Seats, ev.Gaps, strings.Join(tiers, ","))
}
