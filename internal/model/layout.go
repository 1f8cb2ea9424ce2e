package model

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
)

// Layout is the complete seating chart of one screen: rows kept in label
// order, A first.  On the wire it is the bare array of rows.
type Layout struct {
	Rows []Row
}

// LabelFor returns the label of the row at position i.
func LabelFor(i int) (string, error) {
	if i < 0 || i >= MaxRows {
		return "", fmt.Errorf("%w: position %d", ErrTooManyRows, i)
	}
	return string(rune('A' + i)), nil
}

// Relabel assigns every row the letter of its position.  It fails without
// touching any label when there are more rows than letters.
func Relabel(rows []Row) error {
	if len(rows) > MaxRows {
		return fmt.Errorf("%w: got %d", ErrTooManyRows, len(rows))
	}
	for i := range rows {
		rows[i].Label = string(rune('A' + i))
	}
	return nil
}

// SortByLabel orders rows by label ascending.  Longer labels sort after
// shorter ones so legacy "AA" rows land after "Z".
func SortByLabel(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(len(a.Label), len(b.Label)); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
}

// Relabel re-derives the labels of l from row positions.
func (l *Layout) Relabel() error { return Relabel(l.Rows) }

// Len returns the number of rows.
func (l Layout) Len() int { return len(l.Rows) }

// Labels returns the row labels in positional order.
func (l Layout) Labels() []string {
	out := make([]string, len(l.Rows))
	for i, r := range l.Rows {
		out[i] = r.Label
	}
	return out
}

// Clone deep-copies the layout.
func (l Layout) Clone() Layout {
	if l.Rows == nil {
		return Layout{}
	}
	rows := make([]Row, len(l.Rows))
	for i, r := range l.Rows {
		rows[i] = r.Clone()
	}
	return Layout{Rows: rows}
}

// Validate checks a complete layout before it is persisted: at least one
// row, contiguous labels from A, known tiers and per-row seat bounds.
func (l Layout) Validate() error {
	if len(l.Rows) == 0 {
		return ErrEmptyLayout
	}
	if len(l.Rows) > MaxRows {
		return fmt.Errorf("%w: got %d", ErrTooManyRows, len(l.Rows))
	}
	for i, r := range l.Rows {
		want, _ := LabelFor(i)
		if r.Label != want {
			return fmt.Errorf("%w: position %d has label %q, want %q", ErrLabelSequence, i, r.Label, want)
		}
		if !r.Tier.Valid() {
			return fmt.Errorf("%w: row %s has tier %q", ErrInvalidTier, r.Label, r.Tier)
		}
		if err := ValidateSeatCount(r.SeatCount()); err != nil {
			return fmt.Errorf("row %s: %w", r.Label, err)
		}
	}
	return nil
}

// Summary aggregates seat counts for display.
type Summary struct {
	Rows   int          `json:"rows"`
	Seats  int          `json:"seats"`
	Gaps   int          `json:"gaps"`
	ByTier map[Tier]int `json:"by_tier"`
}

// Summary counts rows, seats and gaps, with seats broken down by tier.
func (l Layout) Summary() Summary {
	s := Summary{Rows: len(l.Rows), ByTier: make(map[Tier]int)}
	for _, r := range l.Rows {
		n := r.SeatCount()
		s.Seats += n
		s.Gaps += r.GapCount()
		s.ByTier[r.Tier] += n
	}
	return s
}

func (l Layout) MarshalJSON() ([]byte, error) {
	if l.Rows == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Rows)
}

func (l *Layout) UnmarshalJSON(b []byte) error {
	var rows []Row
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	l.Rows = rows
	return nil
}
