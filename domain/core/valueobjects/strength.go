package valueobjects

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Strength is the ordinal closeness rating on a fixed 6-level scale.
// Unknown values never fail: every accessor degrades to Casual so that
// stale saved data keeps rendering.
type Strength string

const (
	StrengthFleeting     Strength = "fleeting"
	StrengthAcquaintance Strength = "acquaintance"
	StrengthCasual       Strength = "casual"
	StrengthWorking      Strength = "working"
	StrengthStrong       Strength = "strong"
	StrengthCore         Strength = "core"
)

const (
	MinStrengthRank     = 1
	MaxStrengthRank     = 6
	DefaultStrengthRank = 3
)

var strengthOrder = [...]Strength{
	StrengthFleeting,
	StrengthAcquaintance,
	StrengthCasual,
	StrengthWorking,
	StrengthStrong,
	StrengthCore,
}

// AllStrengths returns the six levels in ascending order
func AllStrengths() []Strength {
	out := make([]Strength, len(strengthOrder))
	copy(out, strengthOrder[:])
	return out
}

// Rank returns the numeric rank in [1,6]; unknown input ranks as casual
func Rank(s Strength) int {
	for i, level := range strengthOrder {
		if level == s {
			return i + 1
		}
	}
	return DefaultStrengthRank
}

// FromRank maps a rank back to its level; out-of-range ranks map to casual
func FromRank(n int) Strength {
	if n < MinStrengthRank || n > MaxStrengthRank {
		return StrengthCasual
	}
	return strengthOrder[n-1]
}

// Label returns the display string, e.g. "Working (4)"
func Label(s Strength) string {
	level := FromRank(Rank(s))
	name := string(level)
	return fmt.Sprintf("%s%s (%d)", strings.ToUpper(name[:1]), name[1:], Rank(level))
}

// ParseStrength parses a level name case-insensitively
func ParseStrength(raw string) Strength {
	s := Strength(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return StrengthCasual
	}
	return s
}

// IsValid reports whether s is one of the six known levels
func (s Strength) IsValid() bool {
	for _, level := range strengthOrder {
		if level == s {
			return true
		}
	}
	return false
}

// Rank is a convenience for Rank(s)
func (s Strength) Rank() int { return Rank(s) }

// Label is a convenience for Label(s)
func (s Strength) Label() string { return Label(s) }

// Normalize returns s when valid, casual otherwise
func (s Strength) Normalize() Strength {
	if s.IsValid() {
		return s
	}
	return StrengthCasual
}

// AtLeast reports whether s ranks at or above the given threshold rank
func (s Strength) AtLeast(rank int) bool {
	return Rank(s) >= rank
}

// UnmarshalJSON accepts level names and numeric ranks
func (s *Strength) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*s = ParseStrength(name)
		return nil
	}
	var rank int
	if err := json.Unmarshal(data, &rank); err == nil {
		*s = FromRank(rank)
		return nil
	}
	*s = StrengthCasual
	return nil
}
