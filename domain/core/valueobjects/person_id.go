package valueobjects

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// RootPersonID is the reserved id of the synthetic "You" node
const RootPersonID = "you"

// PersonID is a value object representing a unique person identifier
// Saved collections use short ids as well as UUIDs, so any non-empty string is accepted
type PersonID struct {
	value string
}

// NewPersonID creates a new random PersonID
func NewPersonID() PersonID {
	return PersonID{value: uuid.New().String()}
}

// NewPersonIDFromString creates a PersonID from an existing string
func NewPersonIDFromString(id string) (PersonID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return PersonID{}, errors.New("person ID cannot be empty")
	}
	return PersonID{value: id}, nil
}

// MustPersonID creates a PersonID and panics on empty input
func MustPersonID(id string) PersonID {
	pid, err := NewPersonIDFromString(id)
	if err != nil {
		panic(err)
	}
	return pid
}

// RootID returns the id of the synthetic root node
func RootID() PersonID {
	return PersonID{value: RootPersonID}
}

// String returns the string representation of the PersonID
func (id PersonID) String() string {
	return id.value
}

// Equals checks if two PersonIDs are equal
func (id PersonID) Equals(other PersonID) bool {
	return id.value == other.value
}

// IsZero checks if the PersonID is the zero value
func (id PersonID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id PersonID) MarshalJSON() ([]byte, error) {
	if id.value == "" {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *PersonID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		id.value = ""
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return errors.New("PersonID must be a string")
	}
	id.value = value
	return nil
}
