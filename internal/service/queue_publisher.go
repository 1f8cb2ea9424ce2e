// Package service publishes layout domain events to RabbitMQ.  Errors are
// logged and returned so callers can ignore failures without interrupting
// the request that triggered the event.
package service

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/seating-designer/internal/logging"
    "github.com/iliyamo/seating-designer/internal/model"
    q "github.com/iliyamo/seating-designer/internal/queue"
)

// Publisher sends events to the broker at URL.  A connection is dialled per
// publish; layout saves are rare enough that pooling is not worth it.
type Publisher struct {
    URL string
}

// NewLayoutSavedEvent summarises a stored layout for the layout.saved queue.
func NewLayoutSavedEvent(screenID, savedBy string, l model.Layout, at time.Time) q.LayoutSavedEvent {
    sum := l.Summary()
    byTier := make(map[string]int, len(sum.ByTier))
    for t, n := range sum.ByTier {
        byTier[string(t)] = n
    }
    return q.LayoutSavedEvent{
        ScreenID:    screenID,
        Rows:        sum.Rows,
        Seats:       sum.Seats,
        Gaps:        sum.Gaps,
        SeatsByTier: byTier,
        SavedBy:     savedBy,
        SavedAt:     at.UTC().Format(time.RFC3339),
    }
}

// PublishLayoutSaved publishes event to the "layout.saved" queue.  Messages
// are marked as persistent.
func (p Publisher) PublishLayoutSaved(ctx context.Context, event q.LayoutSavedEvent) error {
    lg := logging.Component("publisher")
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        lg.Warn().Err(err).Msg("rabbitmq: dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        lg.Warn().Err(err).Msg("rabbitmq: channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        q.LayoutSavedQueue, // name
        true,               // durable
        false,              // autoDelete
        false,              // exclusive
        false,              // noWait
        nil,                // args
    ); err != nil {
        lg.Warn().Err(err).Msg("rabbitmq: queue declare failed")
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",                 // default exchange
        q.LayoutSavedQueue, // routing key = queue name
        false,              // mandatory
        false,              // immediate
        pub,
    ); err != nil {
        lg.Warn().Err(err).Msg("rabbitmq: publish failed")
        return err
    }
    lg.Debug().Str("screen", event.ScreenID).Msg("layout.saved published")
    return nil
}
