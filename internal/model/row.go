package model

import (
	"fmt"
	"slices"
)

const (
	MinSeatsPerRow = 1  // fewest seats a row may be created with
	MaxSeatsPerRow = 30 // most seats a row may be created with
	MaxRows        = 26 // one row per letter A..Z
)

// Row is a horizontal line of seats in a screen's seating chart.
//
// Fields:
//
//	Label – single uppercase letter derived from the row's position.
//	Seats – ordered slots, each a seat number or a gap.
//	Tier  – seating class of the whole row.
type Row struct {
	Label string `json:"label"`
	Seats []Slot `json:"seats"`
	Tier  Tier   `json:"tier"`
}

// NewRow builds an unlabelled row holding seats 1..seatCount with no gaps.
func NewRow(seatCount int, tier Tier) (Row, error) {
	if err := ValidateSeatCount(seatCount); err != nil {
		return Row{}, err
	}
	if !tier.Valid() {
		return Row{}, ErrInvalidTier
	}
	return Row{Seats: sequentialSeats(seatCount), Tier: tier}, nil
}

// ValidateSeatCount enforces the per-row seat bounds.
func ValidateSeatCount(n int) error {
	if n < MinSeatsPerRow || n > MaxSeatsPerRow {
		return fmt.Errorf("%w (got %d)", ErrInvalidSeatCount, n)
	}
	return nil
}

func sequentialSeats(n int) []Slot {
	seats := make([]Slot, n)
	for i := range seats {
		seats[i] = Slot{number: i + 1}
	}
	return seats
}

// SeatCount returns the number of non-gap slots.
func (r Row) SeatCount() int {
	n := 0
	for _, s := range r.Seats {
		if !s.IsGap() {
			n++
		}
	}
	return n
}

// GapCount returns the number of gap slots.
func (r Row) GapCount() int { return len(r.Seats) - r.SeatCount() }

// Clone returns a copy that shares no slot storage with r.
func (r Row) Clone() Row {
	r.Seats = slices.Clone(r.Seats)
	return r
}

// InsertGap places a gap at slot index i (0 <= i <= len(Seats)).  Slots at
// and after i shift right and keep their seat numbers.
func (r *Row) InsertGap(i int) error {
	if i < 0 || i > len(r.Seats) {
		return fmt.Errorf("%w: %d (row %s has %d slots)", ErrSlotOutOfRange, i, r.Label, len(r.Seats))
	}
	r.Seats = slices.Insert(r.Seats, i, Gap)
	return nil
}

// RemoveGap deletes the gap at slot index i.  Removing a seat this way is
// refused; seats only change through a row edit.
func (r *Row) RemoveGap(i int) error {
	if i < 0 || i >= len(r.Seats) {
		return fmt.Errorf("%w: %d (row %s has %d slots)", ErrSlotOutOfRange, i, r.Label, len(r.Seats))
	}
	if !r.Seats[i].IsGap() {
		return fmt.Errorf("%w: row %s slot %d holds seat %d", ErrNotAGap, r.Label, i, r.Seats[i].Number())
	}
	r.Seats = slices.Delete(r.Seats, i, i+1)
	return nil
}
