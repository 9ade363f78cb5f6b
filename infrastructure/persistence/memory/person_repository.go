// Package memory provides an in-process PersonRepository for local runs and tests.
package memory

import (
	"context"
	"sync"

	"peoplenet/domain/core/entities"
	"peoplenet/domain/core/valueobjects"
	pkgerrors "peoplenet/pkg/errors"
)

type userPeople struct {
	order  []valueobjects.PersonID
	people map[valueobjects.PersonID]*entities.Person
}

// PersonRepository keeps people in memory, partitioned by owner. Stored and
// returned people are clones, so callers never share state with the store.
type PersonRepository struct {
	mu    sync.RWMutex
	users map[string]*userPeople
}

// NewPersonRepository creates an empty repository
func NewPersonRepository() *PersonRepository {
	return &PersonRepository{users: make(map[string]*userPeople)}
}

// Save creates or replaces a person
func (r *PersonRepository) Save(ctx context.Context, person *entities.Person) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if person == nil {
		return pkgerrors.NewValidationError("person cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[person.UserID()]
	if !ok {
		u = &userPeople{people: make(map[valueobjects.PersonID]*entities.Person)}
		r.users[person.UserID()] = u
	}
	if _, exists := u.people[person.ID()]; !exists {
		u.order = append(u.order, person.ID())
	}
	u.people[person.ID()] = person.Clone()
	return nil
}

// GetByID retrieves a person owned by userID
func (r *PersonRepository) GetByID(ctx context.Context, userID string, id valueobjects.PersonID) (*entities.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.users[userID]; ok {
		if p, ok := u.people[id]; ok {
			return p.Clone(), nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("person").WithDetail("id", id.String())
}

// ListByUser returns the user's people in the order they were first saved
func (r *PersonRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return []*entities.Person{}, nil
	}
	out := make([]*entities.Person, 0, len(u.order))
	for _, id := range u.order {
		out = append(out, u.people[id].Clone())
	}
	return out, nil
}

// CountByUser returns the size of the user's network
func (r *PersonRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.users[userID]; ok {
		return len(u.order), nil
	}
	return 0, nil
}

// Delete removes a person
func (r *PersonRepository) Delete(ctx context.Context, userID string, id valueobjects.PersonID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return pkgerrors.NewNotFoundError("person").WithDetail("id", id.String())
	}
	if _, ok := u.people[id]; !ok {
		return pkgerrors.NewNotFoundError("person").WithDetail("id", id.String())
	}
	delete(u.people, id)
	for i, existing := range u.order {
		if existing.Equals(id) {
			u.order = append(u.order[:i], u.order[i+1:]...)
			break
		}
	}
	return nil
}
