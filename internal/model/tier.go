package model

import (
	"encoding/json"
	"strings"
)

// Tier is the seating class of a row.  The set is closed; the wire form is
// the capitalised name.
type Tier string

const (
	TierRecliner Tier = "Recliner"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierDiamond  Tier = "Diamond"
)

// Tiers lists every tier in display order.
func Tiers() []Tier {
	return []Tier{TierRecliner, TierSilver, TierGold, TierDiamond}
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierRecliner, TierSilver, TierGold, TierDiamond:
		return true
	}
	return false
}

// ParseTier resolves a tier name case-insensitively.
func ParseTier(s string) (Tier, error) {
	s = strings.TrimSpace(s)
	for _, t := range Tiers() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", ErrInvalidTier
}

// UnmarshalJSON canonicalises the case of known tiers.  Unknown names are
// kept verbatim so Layout.Validate can report them.
func (t *Tier) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if parsed, err := ParseTier(s); err == nil {
		*t = parsed
		return nil
	}
	*t = Tier(s)
	return nil
}
