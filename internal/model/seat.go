package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Slot is one position in a row: either a numbered seat or an aisle gap.
// The zero value is a gap.  Seat numbers are fixed when the row is built
// and travel with their slot when gaps are inserted or removed.
type Slot struct {
	number int // 0 marks a gap
}

// Gap is the aisle marker slot.
var Gap = Slot{}

// SeatSlot returns a seat slot carrying number n.  n must be positive.
func SeatSlot(n int) Slot {
	if n <= 0 {
		panic(fmt.Sprintf("model: seat number must be positive, got %d", n))
	}
	return Slot{number: n}
}

// IsGap reports whether the slot is an aisle gap.
func (s Slot) IsGap() bool { return s.number == 0 }

// Number returns the seat number, or 0 for a gap.
func (s Slot) Number() int { return s.number }

func (s Slot) String() string {
	if s.IsGap() {
		return "_"
	}
	return strconv.Itoa(s.number)
}

// MarshalJSON writes seats as numbers and gaps as the empty string, which
// is what the persistence backend has always stored.
func (s Slot) MarshalJSON() ([]byte, error) {
	if s.IsGap() {
		return []byte(`""`), nil
	}
	return []byte(strconv.Itoa(s.number)), nil
}

// UnmarshalJSON accepts a positive number, a numeric string, the empty
// string or null.  The last two decode to a gap.
func (s *Slot) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = Gap
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(str)
		if str == "" {
			*s = Gap
			return nil
		}
		return s.setNumber(str)
	}
	return s.setNumber(string(b))
}

func (s *Slot) setNumber(raw string) error {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("seat slot %q: not a seat number", raw)
	}
	if n <= 0 {
		return fmt.Errorf("seat slot %d: seat numbers start at 1", n)
	}
	s.number = n
	return nil
}
