package events

import (
	"time"

	"peoplenet/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

const (
	TypePersonCreated = "person.created"
	TypePersonUpdated = "person.updated"
	TypePersonRemoved = "person.removed"
)

// PersonCreated is raised when a contact is added
type PersonCreated struct {
	BaseEvent
	PersonID         valueobjects.PersonID         `json:"person_id"`
	UserID           string                        `json:"user_id"`
	Name             string                        `json:"name"`
	IntroducedByType valueobjects.IntroductionType `json:"introduced_by_type"`
}

// NewPersonCreated creates a PersonCreated event
func NewPersonCreated(id valueobjects.PersonID, userID, name string, introType valueobjects.IntroductionType, timestamp time.Time) PersonCreated {
	return PersonCreated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   TypePersonCreated,
			Timestamp:   timestamp,
			Version:     1,
		},
		PersonID:         id,
		UserID:           userID,
		Name:             name,
		IntroducedByType: introType,
	}
}

// PersonUpdated is raised when a field of a contact changes
type PersonUpdated struct {
	BaseEvent
	PersonID   valueobjects.PersonID `json:"person_id"`
	UpdateKind string                `json:"update_kind"`
}

// NewPersonUpdated creates a PersonUpdated event
func NewPersonUpdated(id valueobjects.PersonID, kind string, version int, timestamp time.Time) PersonUpdated {
	return PersonUpdated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   TypePersonUpdated,
			Timestamp:   timestamp,
			Version:     version,
		},
		PersonID:   id,
		UpdateKind: kind,
	}
}

// PersonRemoved is raised when a contact is deleted
type PersonRemoved struct {
	BaseEvent
	PersonID valueobjects.PersonID `json:"person_id"`
	UserID   string                `json:"user_id"`
}

// NewPersonRemoved creates a PersonRemoved event
func NewPersonRemoved(id valueobjects.PersonID, userID string, timestamp time.Time) PersonRemoved {
	return PersonRemoved{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   TypePersonRemoved,
			Timestamp:   timestamp,
			Version:     1,
		},
		PersonID: id,
		UserID:   userID,
	}
}
