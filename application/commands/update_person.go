package commands

import (
	"peoplenet/domain/core/entities"
	pkgerrors "peoplenet/pkg/errors"
)

// UpdatePersonCommand applies a batch of field updates to one person.
// Updates are applied in order and the batch is saved only if all succeed.
type UpdatePersonCommand struct {
	UserID   string
	PersonID string
	Updates  []entities.Update
}

// Validate validates the UpdatePersonCommand
func (c UpdatePersonCommand) Validate() error {
	if c.UserID == "" {
		return pkgerrors.NewFieldValidationError("user_id", "is required")
	}
	if c.PersonID == "" {
		return pkgerrors.NewFieldValidationError("id", "is required")
	}
	if len(c.Updates) == 0 {
		return pkgerrors.NewFieldValidationError("updates", "at least one update is required")
	}
	for i, u := range c.Updates {
		if u == nil {
			return pkgerrors.NewValidationError("update cannot be nil").WithDetail("index", i)
		}
	}
	return nil
}
