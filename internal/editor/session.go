package editor

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/seating-designer/internal/logging"
	"github.com/iliyamo/seating-designer/internal/model"
)

const noEdit = -1

// Session is one operator's editing session for one screen.  It owns the
// layout exclusively; every row and slot operation is applied synchronously
// under the session lock, so the layout invariants hold between calls.
type Session struct {
	mu sync.Mutex

	id       string
	screenID string
	store    Store
	notifier Notifier
	gate     *SubmitGate
	timeout  time.Duration
	log      zerolog.Logger

	layout    model.Layout
	editing   int           // index of the row holding the edit focus, or noEdit
	persisted *model.Layout // last layout known to be stored, nil until load or submit
	touched   time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithNotifier sets the user-facing notification sink.
func WithNotifier(n Notifier) Option { return func(s *Session) { s.notifier = n } }

// WithSubmitGate shares a submit gate between sessions.
func WithSubmitGate(g *SubmitGate) Option { return func(s *Session) { s.gate = g } }

// WithTimeout bounds each load and submit call.  Zero disables the bound.
func WithTimeout(d time.Duration) Option { return func(s *Session) { s.timeout = d } }

// WithID sets the session identifier.
func WithID(id string) Option { return func(s *Session) { s.id = id } }

// NewSession starts an empty editing session for screenID.
func NewSession(screenID string, store Store, opts ...Option) *Session {
	s := &Session{
		screenID: screenID,
		store:    store,
		editing:  noEdit,
		touched:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.Component("editor").With().Str("screen", screenID).Str("session", s.id).Logger()
	if s.notifier == nil {
		s.notifier = LogNotifier{Log: s.log}
	}
	if s.gate == nil {
		s.gate = NewSubmitGate()
	}
	return s
}

func (s *Session) ID() string       { return s.id }
func (s *Session) ScreenID() string { return s.screenID }

// Layout returns a copy of the current layout.
func (s *Session) Layout() model.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout.Clone()
}

// LastPersisted returns the last layout known to be stored for the screen.
func (s *Session) LastPersisted() (model.Layout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persisted == nil {
		return model.Layout{}, false
	}
	return s.persisted.Clone(), true
}

// Editing returns the row index holding the edit focus.
func (s *Session) Editing() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing, s.editing != noEdit
}

// LastActivity returns when the session was last used.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// AddRow appends a row of seatCount sequential seats and relabels.  It is
// refused while a row edit is open.
func (s *Session) AddRow(seatCount int, tier model.Tier) (model.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()

	if s.editing != noEdit {
		return model.Row{}, s.reject(fmt.Errorf("%w: finish editing row %s first", model.ErrEditInProgress, s.layout.Rows[s.editing].Label))
	}
	row, err := model.NewRow(seatCount, tier)
	if err != nil {
		return model.Row{}, s.reject(err)
	}
	if len(s.layout.Rows) >= model.MaxRows {
		return model.Row{}, s.reject(fmt.Errorf("%w: got %d", model.ErrTooManyRows, len(s.layout.Rows)+1))
	}
	s.layout.Rows = append(s.layout.Rows, row)
	if err := s.layout.Relabel(); err != nil {
		panic(err) // capacity was checked above
	}
	added := s.layout.Rows[len(s.layout.Rows)-1].Clone()
	s.log.Debug().Str("row", added.Label).Int("seats", seatCount).Str("tier", string(tier)).Msg("row added")
	return added, nil
}

// BeginEdit gives rowIndex the edit focus.  Only one row can hold it.
func (s *Session) BeginEdit(rowIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()

	if err := s.checkRow(rowIndex); err != nil {
		return s.reject(err)
	}
	if s.editing != noEdit && s.editing != rowIndex {
		return s.reject(fmt.Errorf("%w: row %s is open", model.ErrEditInProgress, s.layout.Rows[s.editing].Label))
	}
	s.editing = rowIndex
	return nil
}

// CancelEdit drops the edit focus without changing the layout.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	s.editing = noEdit
	s.touched = time.Now()
	s.mu.Unlock()
}

// EditRow overwrites the row's seats with a fresh 1..seatCount sequence,
// discarding its gaps, and sets its tier.  A successful edit releases the
// edit focus; a failed one keeps it so the operator can correct the input.
func (s *Session) EditRow(rowIndex, seatCount int, tier model.Tier) (model.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()

	if err := s.checkRow(rowIndex); err != nil {
		return model.Row{}, s.reject(err)
	}
	if s.editing != noEdit && s.editing != rowIndex {
		return model.Row{}, s.reject(fmt.Errorf("%w: row %s is open", model.ErrEditInProgress, s.layout.Rows[s.editing].Label))
	}
	fresh, err := model.NewRow(seatCount, tier)
	if err != nil {
		return model.Row{}, s.reject(err)
	}
	fresh.Label = s.layout.Rows[rowIndex].Label
	s.layout.Rows[rowIndex] = fresh
	s.editing = noEdit
	s.log.Debug().Str("row", fresh.Label).Int("seats", seatCount).Str("tier", string(tier)).Msg("row edited")
	return fresh.Clone(), nil
}

// RemoveRow deletes the row and relabels the rest.  Any confirmation is the
// caller's business.
func (s *Session) RemoveRow(rowIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()

	if err := s.checkRow(rowIndex); err != nil {
		return s.reject(err)
	}
	label := s.layout.Rows[rowIndex].Label
	s.layout.Rows = slices.Delete(s.layout.Rows, rowIndex, rowIndex+1)
	_ = s.layout.Relabel() // shrinking cannot exceed the label space
	switch {
	case s.editing == rowIndex:
		s.editing = noEdit
	case s.editing > rowIndex:
		s.editing--
	}
	s.log.Debug().Str("row", label).Msg("row removed")
	return nil
}

// InsertGapBefore puts an aisle gap at slotIndex in the row.  Seat numbers
// are not renumbered; they move right with their slots.
func (s *Session) InsertGapBefore(rowIndex, slotIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()

	if err := s.checkRow(rowIndex); err != nil {
		return s.reject(err)
	}
	if err := s.layout.Rows[rowIndex].InsertGap(slotIndex); err != nil {
		return s.reject(err)
	}
	return nil
}

// RemoveGapAt deletes the gap at slotIndex; later slots shift left.
func (s *Session) RemoveGapAt(rowIndex, slotIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()

	if err := s.checkRow(rowIndex); err != nil {
		return s.reject(err)
	}
	if err := s.layout.Rows[rowIndex].RemoveGap(slotIndex); err != nil {
		return s.reject(err)
	}
	return nil
}

// Load replaces the session layout with the stored one, sorted by label.
// On failure the session is left empty with no persisted snapshot, the
// operator is told, and the error is returned so the caller can offer a
// retry.
func (s *Session) Load(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.store.Fetch(ctx, s.screenID)
	if err == nil {
		model.SortByLabel(rows)
		err = model.Relabel(rows)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()
	s.editing = noEdit

	if err != nil {
		s.layout = model.Layout{}
		s.persisted = nil // nothing known about the stored layout any more
		s.log.Error().Err(err).Msg("load layout failed")
		s.notifier.Notify(LevelError, "could not load layout: "+model.UserMessage(err, "layout service unavailable")+"; starting with an empty layout")
		return err
	}
	s.layout = model.Layout{Rows: rows}
	snap := s.layout.Clone()
	s.persisted = &snap
	s.log.Info().Int("rows", len(rows)).Msg("layout loaded")
	return nil
}

// Submit sends the whole current layout to the store as a full replace.
// An empty layout is rejected before any network call.  The layout itself
// is never modified by Submit.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	s.touched = time.Now()
	if len(s.layout.Rows) == 0 {
		err := s.reject(model.ErrEmptyLayout)
		s.mu.Unlock()
		return err
	}
	snap := s.layout.Clone()
	s.mu.Unlock()

	if !s.gate.TryAcquire(s.screenID) {
		s.notifier.Notify(LevelError, ErrSubmitInFlight.Error())
		return ErrSubmitInFlight
	}
	defer s.gate.Release(s.screenID)

	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.store.Replace(ctx, s.screenID, snap.Rows); err != nil {
		s.log.Error().Err(err).Msg("submit layout failed")
		s.notifier.Notify(LevelError, model.UserMessage(err, "failed to save layout"))
		return err
	}

	s.mu.Lock()
	s.persisted = &snap
	s.mu.Unlock()

	s.log.Info().Int("rows", len(snap.Rows)).Msg("layout submitted")
	s.notifier.Notify(LevelSuccess, fmt.Sprintf("layout saved (%d rows)", len(snap.Rows)))
	return nil
}

func (s *Session) checkRow(i int) error {
	if i < 0 || i >= len(s.layout.Rows) {
		return fmt.Errorf("%w: %d (layout has %d rows)", model.ErrRowOutOfRange, i, len(s.layout.Rows))
	}
	return nil
}

// reject reports err to the operator and returns it.
func (s *Session) reject(err error) error {
	s.notifier.Notify(LevelError, model.UserMessage(err, "operation failed"))
	return err
}

func (s *Session) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
