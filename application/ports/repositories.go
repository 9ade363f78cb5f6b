package ports

import (
	"context"
	"time"

	"peoplenet/domain/core/entities"
	"peoplenet/domain/core/valueobjects"
	"peoplenet/domain/events"
)

// PersonRepository defines the interface for person persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type PersonRepository interface {
	// Save persists a person (create or update)
	Save(ctx context.Context, person *entities.Person) error

	// GetByID retrieves a person owned by userID
	GetByID(ctx context.Context, userID string, id valueobjects.PersonID) (*entities.Person, error)

	// ListByUser retrieves every person owned by userID, ordered by creation time
	ListByUser(ctx context.Context, userID string) ([]*entities.Person, error)

	// CountByUser returns the size of the user's network
	CountByUser(ctx context.Context, userID string) (int, error)

	// Delete removes a person; references to it from other people are left as-is
	Delete(ctx context.Context, userID string, id valueobjects.PersonID) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// CityResult is one match returned by a city lookup
type CityResult struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Region      string  `json:"region,omitempty"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone,omitempty"`
	Population  int     `json:"population,omitempty"`
}

// Location converts the result into a person location
func (c CityResult) Location() valueobjects.Location {
	return valueobjects.Location{
		City:     c.Name,
		Country:  c.Country,
		Timezone: c.Timezone,
		Lat:      c.Latitude,
		Lng:      c.Longitude,
	}
}

// CityProvider is the remote city search API
type CityProvider interface {
	// Search returns cities whose name matches the normalized query
	Search(ctx context.Context, query string) ([]CityResult, error)
}

// CityCacheStore is the persistent tier of the city lookup cache
type CityCacheStore interface {
	// Get returns cached results for a normalized query
	Get(ctx context.Context, query string) ([]CityResult, bool, error)

	// Set stores results for a normalized query
	Set(ctx context.Context, query string, results []CityResult, ttl time.Duration) error

	// Clear removes every cached query
	Clear(ctx context.Context) error
}
