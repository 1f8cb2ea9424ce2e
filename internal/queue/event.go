// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns them into the layout audit log.
package queue

// LayoutSavedQueue is the durable queue carrying LayoutSavedEvent.
const LayoutSavedQueue = "layout.saved"

// LayoutSavedEvent is published after a screen's layout was replaced.  It
// carries enough for downstream consumers (the booking system, audit log)
// to react without reading the layout tables.
type LayoutSavedEvent struct {
    ScreenID    string         `json:"screen_id"`
    Rows        int            `json:"rows"`
    Seats       int            `json:"seats"`
    Gaps        int            `json:"gaps"`
    SeatsByTier map[string]int `json:"seats_by_tier"`
    SavedBy     string         `json:"saved_by"`
    SavedAt     string         `json:"saved_at"`
}
