package entities

import (
	"fmt"
	"strings"
	"time"

	"peoplenet/domain/config"
	"peoplenet/domain/core/valueobjects"
	pkgerrors "peoplenet/pkg/errors"
)

// Update is one edit to a person. The set of implementations is closed:
// every editable field is reached through one of the types below.
type Update interface {
	Kind() string
	apply(p *Person, cfg *config.DomainConfig) (bool, error)
}

const (
	UpdateKindRename            = "rename"
	UpdateKindStrength          = "strength"
	UpdateKindIntroduction      = "introduction"
	UpdateKindProfile           = "profile"
	UpdateKindLocation          = "location"
	UpdateKindAddInteraction    = "add_interaction"
	UpdateKindRemoveInteraction = "remove_interaction"
)

// RenameUpdate changes the display name
type RenameUpdate struct {
	Name string
}

func (RenameUpdate) Kind() string { return UpdateKindRename }

func (u RenameUpdate) apply(p *Person, cfg *config.DomainConfig) (bool, error) {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		return false, pkgerrors.NewValidationError("name cannot be empty")
	}
	if cfg.MaxNameLength > 0 && len(name) > cfg.MaxNameLength {
		return false, pkgerrors.NewValidationError(fmt.Sprintf("name exceeds %d characters", cfg.MaxNameLength))
	}
	if name == p.name {
		return false, nil
	}
	p.name = name
	return true, nil
}

// StrengthUpdate changes the connection strength; unknown values become casual
type StrengthUpdate struct {
	Strength valueobjects.Strength
}

func (StrengthUpdate) Kind() string { return UpdateKindStrength }

func (u StrengthUpdate) apply(p *Person, _ *config.DomainConfig) (bool, error) {
	s := u.Strength.Normalize()
	if s == p.connection.Strength {
		return false, nil
	}
	p.connection.Strength = s
	return true, nil
}

// IntroductionUpdate changes how the person was introduced
type IntroductionUpdate struct {
	Type             valueobjects.IntroductionType
	IntroducedBy     valueobjects.PersonID
	IntroducedByName string
}

func (IntroductionUpdate) Kind() string { return UpdateKindIntroduction }

func (u IntroductionUpdate) apply(p *Person, cfg *config.DomainConfig) (bool, error) {
	next := Connection{
		Strength:         p.connection.Strength,
		IntroducedByType: u.Type,
		IntroducedBy:     u.IntroducedBy,
		IntroducedByName: u.IntroducedByName,
	}.Normalize()

	if next.IntroducedByType == valueobjects.IntroducedExisting {
		if next.IntroducedBy.IsZero() {
			return false, pkgerrors.NewValidationError("introducedBy is required for existing introductions")
		}
		if next.IntroducedBy.Equals(p.id) && !cfg.AllowSelfIntroduction {
			return false, pkgerrors.NewValidationError("a person cannot introduce themselves")
		}
	}
	if next == p.connection {
		return false, nil
	}
	p.connection = next
	return true, nil
}

// ProfileUpdate sets descriptive fields; nil pointers leave a field unchanged
type ProfileUpdate struct {
	Email   *string
	Phone   *string
	Team    *string
	Company *string
	Role    *string
	Notes   *string
	Tags    *[]string
}

func (ProfileUpdate) Kind() string { return UpdateKindProfile }

func (u ProfileUpdate) apply(p *Person, cfg *config.DomainConfig) (bool, error) {
	next := copyProfile(p.profile)
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&next.Email, u.Email)
	set(&next.Phone, u.Phone)
	set(&next.Team, u.Team)
	set(&next.Company, u.Company)
	set(&next.Role, u.Role)
	set(&next.Notes, u.Notes)
	if u.Tags != nil {
		if cfg.MaxTagsPerPerson > 0 && len(*u.Tags) > cfg.MaxTagsPerPerson {
			return false, pkgerrors.NewValidationError(fmt.Sprintf("maximum tags reached: %d", cfg.MaxTagsPerPerson))
		}
		next.Tags = dedupeTags(*u.Tags)
	}
	if profilesEqual(next, p.profile) {
		return false, nil
	}
	p.profile = next
	return true, nil
}

// LocationUpdate replaces the location
type LocationUpdate struct {
	Location valueobjects.Location
}

func (LocationUpdate) Kind() string { return UpdateKindLocation }

func (u LocationUpdate) apply(p *Person, _ *config.DomainConfig) (bool, error) {
	if !u.Location.Valid() {
		return false, pkgerrors.NewValidationError("location coordinates out of range")
	}
	if u.Location == p.location {
		return false, nil
	}
	p.location = u.Location
	return true, nil
}

// AddInteractionUpdate appends to the interaction log
type AddInteractionUpdate struct {
	Interaction Interaction
}

func (AddInteractionUpdate) Kind() string { return UpdateKindAddInteraction }

func (u AddInteractionUpdate) apply(p *Person, cfg *config.DomainConfig) (bool, error) {
	if cfg.MaxInteractions > 0 && len(p.interactions) >= cfg.MaxInteractions {
		return false, pkgerrors.NewValidationError(fmt.Sprintf("maximum interactions reached: %d", cfg.MaxInteractions))
	}
	in := u.Interaction
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	in.Kind = strings.TrimSpace(in.Kind)
	if in.Kind == "" {
		in.Kind = "note"
	}
	p.interactions = append(p.interactions, in)
	return true, nil
}

// RemoveInteractionUpdate removes the interaction at Index
type RemoveInteractionUpdate struct {
	Index int
}

func (RemoveInteractionUpdate) Kind() string { return UpdateKindRemoveInteraction }

func (u RemoveInteractionUpdate) apply(p *Person, _ *config.DomainConfig) (bool, error) {
	if u.Index < 0 || u.Index >= len(p.interactions) {
		return false, pkgerrors.NewNotFoundError("interaction")
	}
	p.interactions = append(p.interactions[:u.Index:u.Index], p.interactions[u.Index+1:]...)
	return true, nil
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func profilesEqual(a, b Profile) bool {
	if a.Email != b.Email || a.Phone != b.Phone || a.Team != b.Team ||
		a.Company != b.Company || a.Role != b.Role || a.Notes != b.Notes {
		return false
	}
	if len(a.Tags) != len(b.Tags) {
		return false
	}
	for i := range a.Tags {
		if a.Tags[i] != b.Tags[i] {
			return false
		}
	}
	return true
}
