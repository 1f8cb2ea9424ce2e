// Package editor implements the seating-chart designer: an editing session
// that owns one screen's layout, the row and seat-slot operations on it, and
// the load/submit round trip to the persistence collaborator.
package editor

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/iliyamo/seating-designer/internal/model"
)

// Store is the persistence collaborator.  Replace is a full overwrite of the
// screen's layout; there is no partial update.
type Store interface {
	Fetch(ctx context.Context, screenID string) ([]model.Row, error)
	Replace(ctx context.Context, screenID string, rows []model.Row) error
}

// Level classifies a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier is the user-facing notification sink.
type Notifier interface {
	Notify(level Level, msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, msg string)

func (f NotifierFunc) Notify(level Level, msg string) { f(level, msg) }

// LogNotifier forwards notifications to a zerolog logger.  It is the sink
// used when no operator is attached to the session, e.g. over HTTP where
// errors are returned in the response instead.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(level Level, msg string) {
	ev := n.Log.Info()
	if level == LevelError {
		ev = n.Log.Warn()
	}
	ev.Str("level_hint", string(level)).Msg(msg)
}

// WriterNotifier prints notifications as "[level] message" lines.
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Notify(level Level, msg string) {
	_, _ = fmt.Fprintf(n.W, "[%s] %s\n", level, msg)
}
