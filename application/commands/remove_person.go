package commands

import pkgerrors "peoplenet/pkg/errors"

// RemovePersonCommand removes a person. People they introduced keep the
// now dangling reference; path walks stop there.
type RemovePersonCommand struct {
	UserID   string
	PersonID string
}

// Validate validates the RemovePersonCommand
func (c RemovePersonCommand) Validate() error {
	if c.UserID == "" {
		return pkgerrors.NewFieldValidationError("user_id", "is required")
	}
	if c.PersonID == "" {
		return pkgerrors.NewFieldValidationError("id", "is required")
	}
	return nil
}
