package entities

import (
	"fmt"
	"strings"
	"time"

	"peoplenet/domain/config"
	"peoplenet/domain/core/valueobjects"
	"peoplenet/domain/events"
	pkgerrors "peoplenet/pkg/errors"
)

// Connection describes how strongly the user knows a person and who introduced them
type Connection struct {
	Strength         valueobjects.Strength
	IntroducedByType valueobjects.IntroductionType
	IntroducedBy     valueobjects.PersonID // only meaningful for IntroducedExisting
	IntroducedByName string                // only meaningful for IntroducedExternal
}

// DirectConnection returns a direct connection of the given strength
func DirectConnection(strength valueobjects.Strength) Connection {
	return Connection{Strength: strength, IntroducedByType: valueobjects.IntroducedDirect}
}

// IntroducedBy returns a connection introduced by another person in the network
func IntroducedBy(strength valueobjects.Strength, introducer valueobjects.PersonID) Connection {
	return Connection{Strength: strength, IntroducedByType: valueobjects.IntroducedExisting, IntroducedBy: introducer}
}

// IntroducedByExternal returns a connection introduced by someone outside the network
func IntroducedByExternal(strength valueobjects.Strength, name string) Connection {
	return Connection{Strength: strength, IntroducedByType: valueobjects.IntroducedExternal, IntroducedByName: name}
}

// Normalize clears fields that do not apply to the introduction type and
// degrades unknown strength and type values to their defaults
func (c Connection) Normalize() Connection {
	out := Connection{
		Strength:         c.Strength.Normalize(),
		IntroducedByType: valueobjects.ParseIntroductionType(string(c.IntroducedByType)),
	}
	switch out.IntroducedByType {
	case valueobjects.IntroducedExisting:
		out.IntroducedBy = c.IntroducedBy
	case valueobjects.IntroducedExternal:
		out.IntroducedByName = strings.TrimSpace(c.IntroducedByName)
	}
	return out
}

// Interaction is a logged touchpoint with a person
type Interaction struct {
	Date time.Time
	Kind string
	Note string
}

// Profile holds the descriptive fields of a person
type Profile struct {
	Email   string
	Phone   string
	Team    string
	Company string
	Role    string
	Notes   string
	Tags    []string
}

// Person is a contact in the user's network
type Person struct {
	id            valueobjects.PersonID
	userID        string
	name          string
	connection    Connection
	profile       Profile
	location      valueobjects.Location
	interactions  []Interaction
	isUserProfile bool
	createdAt     time.Time
	updatedAt     time.Time
	version       int

	events []events.DomainEvent
}

// NewPerson creates a new person with validation
func NewPerson(userID, name string, conn Connection) (*Person, error) {
	return NewPersonWithID(valueobjects.NewPersonID(), userID, name, conn)
}

// NewPersonWithID creates a person with a caller-supplied id (imports, the user profile)
func NewPersonWithID(id valueobjects.PersonID, userID, name string, conn Connection) (*Person, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("person ID cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.NewValidationError("name cannot be empty")
	}

	conn = conn.Normalize()
	if conn.IntroducedByType == valueobjects.IntroducedExisting && conn.IntroducedBy.Equals(id) {
		return nil, pkgerrors.NewValidationError("a person cannot introduce themselves")
	}

	now := time.Now()
	p := &Person{
		id:         id,
		userID:     userID,
		name:       name,
		connection: conn,
		createdAt:  now,
		updatedAt:  now,
		version:    1,
	}
	p.addEvent(events.NewPersonCreated(id, userID, name, conn.IntroducedByType, now))
	return p, nil
}

// Draft collects everything needed to create a person in one step
type Draft struct {
	ID            valueobjects.PersonID // zero means generate one
	UserID        string
	Name          string
	Connection    Connection
	Profile       ProfileUpdate
	Location      valueobjects.Location
	IsUserProfile bool
}

// NewPersonFromDraft creates a person with its descriptive fields filled in.
// Only the creation event is raised and the version stays at 1.
func NewPersonFromDraft(d Draft, cfg *config.DomainConfig) (*Person, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if d.ID.IsZero() {
		d.ID = valueobjects.NewPersonID()
	}
	p, err := NewPersonWithID(d.ID, d.UserID, d.Name, d.Connection)
	if err != nil {
		return nil, err
	}
	for _, u := range []Update{RenameUpdate{Name: d.Name}, d.Profile, LocationUpdate{Location: d.Location}} {
		if _, err := u.apply(p, cfg); err != nil {
			return nil, err
		}
	}
	p.isUserProfile = d.IsUserProfile
	return p, nil
}

// PersonState is the persisted form of a person used by repositories
type PersonState struct {
	ID            valueobjects.PersonID
	UserID        string
	Name          string
	Connection    Connection
	Profile       Profile
	Location      valueobjects.Location
	Interactions  []Interaction
	IsUserProfile bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int
}

// ReconstructPerson rebuilds a person from storage without raising events.
// The connection is normalized so stale strength values degrade to casual.
func ReconstructPerson(s PersonState) (*Person, error) {
	if s.ID.IsZero() {
		return nil, pkgerrors.NewValidationError("person ID cannot be empty")
	}
	if s.UserID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	version := s.Version
	if version < 1 {
		version = 1
	}
	return &Person{
		id:            s.ID,
		userID:        s.UserID,
		name:          s.Name,
		connection:    s.Connection.Normalize(),
		profile:       copyProfile(s.Profile),
		location:      s.Location,
		interactions:  append([]Interaction(nil), s.Interactions...),
		isUserProfile: s.IsUserProfile,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
		version:       version,
	}, nil
}

// State returns a copy of the person's persisted form
func (p *Person) State() PersonState {
	return PersonState{
		ID:            p.id,
		UserID:        p.userID,
		Name:          p.name,
		Connection:    p.connection,
		Profile:       copyProfile(p.profile),
		Location:      p.location,
		Interactions:  p.Interactions(),
		IsUserProfile: p.isUserProfile,
		CreatedAt:     p.createdAt,
		UpdatedAt:     p.updatedAt,
		Version:       p.version,
	}
}

// Clone returns a deep copy without pending events
func (p *Person) Clone() *Person {
	clone, _ := ReconstructPerson(p.State())
	return clone
}

func (p *Person) ID() valueobjects.PersonID       { return p.id }
func (p *Person) UserID() string                  { return p.userID }
func (p *Person) Name() string                    { return p.name }
func (p *Person) Connection() Connection          { return p.connection }
func (p *Person) Strength() valueobjects.Strength { return p.connection.Strength }
func (p *Person) Location() valueobjects.Location { return p.location }
func (p *Person) IsUserProfile() bool             { return p.isUserProfile }
func (p *Person) CreatedAt() time.Time            { return p.createdAt }
func (p *Person) UpdatedAt() time.Time            { return p.updatedAt }
func (p *Person) Version() int                    { return p.version }

// Profile returns a copy of the descriptive fields
func (p *Person) Profile() Profile {
	return copyProfile(p.profile)
}

// Interactions returns a copy of the interaction log
func (p *Person) Interactions() []Interaction {
	out := make([]Interaction, len(p.interactions))
	copy(out, p.interactions)
	return out
}

// GroupValue returns the team, company or role used for group-by views
func (p *Person) GroupValue(field string) string {
	switch field {
	case "team":
		return strings.TrimSpace(p.profile.Team)
	case "company":
		return strings.TrimSpace(p.profile.Company)
	case "role":
		return strings.TrimSpace(p.profile.Role)
	default:
		return ""
	}
}

// MarkAsUserProfile designates this person as the root of the network
func (p *Person) MarkAsUserProfile(flag bool) {
	if p.isUserProfile == flag {
		return
	}
	p.isUserProfile = flag
	p.touch("user_profile")
}

// Apply applies one field update
func (p *Person) Apply(u Update) error {
	return p.ApplyWithConfig(u, config.DefaultDomainConfig())
}

// ApplyWithConfig applies one field update under the given rules
func (p *Person) ApplyWithConfig(u Update, cfg *config.DomainConfig) error {
	if u == nil {
		return pkgerrors.NewValidationError("update cannot be nil")
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	changed, err := u.apply(p, cfg)
	if err != nil {
		return err
	}
	if changed {
		p.touch(u.Kind())
	}
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (p *Person) GetUncommittedEvents() []events.DomainEvent {
	return p.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (p *Person) MarkEventsAsCommitted() {
	p.events = nil
}

// MarkRemoved records the removal event; the repository does the actual delete
func (p *Person) MarkRemoved() {
	p.addEvent(events.NewPersonRemoved(p.id, p.userID, time.Now()))
}

func (p *Person) touch(kind string) {
	p.updatedAt = time.Now()
	p.version++
	p.addEvent(events.NewPersonUpdated(p.id, kind, p.version, p.updatedAt))
}

func (p *Person) addEvent(event events.DomainEvent) {
	p.events = append(p.events, event)
}

func copyProfile(in Profile) Profile {
	out := in
	out.Tags = append([]string(nil), in.Tags...)
	return out
}

func (p *Person) String() string {
	return fmt.Sprintf("%s(%s)", p.name, p.id)
}
