package valueobjects

import "strings"

// IntroductionType describes how a person was introduced to the user
type IntroductionType string

const (
	IntroducedDirect   IntroductionType = "direct"
	IntroducedExisting IntroductionType = "existing"
	IntroducedExternal IntroductionType = "external"
)

// ParseIntroductionType parses the type, defaulting to direct
func ParseIntroductionType(raw string) IntroductionType {
	switch t := IntroductionType(strings.ToLower(strings.TrimSpace(raw))); t {
	case IntroducedDirect, IntroducedExisting, IntroducedExternal:
		return t
	default:
		return IntroducedDirect
	}
}

// IsValid reports whether t is a known introduction type
func (t IntroductionType) IsValid() bool {
	return t == IntroducedDirect || t == IntroducedExisting || t == IntroducedExternal
}
