package commands

import (
	"peoplenet/domain/core/entities"
	"peoplenet/domain/core/valueobjects"
	"peoplenet/pkg/utils"
)

// AddPersonCommand represents the command to add a person to the user's network
type AddPersonCommand struct {
	UserID           string                 `json:"user_id" validate:"required"`
	PersonID         string                 `json:"id,omitempty" validate:"omitempty,max=64"`
	Name             string                 `json:"name" validate:"required,max=200"`
	Strength         string                 `json:"strength,omitempty"`
	IntroducedByType string                 `json:"introducedByType,omitempty" validate:"omitempty,oneof=direct existing external"`
	IntroducedBy     string                 `json:"introducedBy,omitempty" validate:"required_if=IntroducedByType existing"`
	IntroducedByName string                 `json:"introducedByName,omitempty" validate:"max=200"`
	Email            string                 `json:"email,omitempty" validate:"omitempty,email"`
	Phone            string                 `json:"phone,omitempty" validate:"max=50"`
	Team             string                 `json:"team,omitempty" validate:"max=100"`
	Company          string                 `json:"company,omitempty" validate:"max=100"`
	Role             string                 `json:"role,omitempty" validate:"max=100"`
	Notes            string                 `json:"notes,omitempty" validate:"max=10000"`
	Tags             []string               `json:"tags,omitempty" validate:"max=20,dive,min=1,max=30"`
	Location         *valueobjects.Location `json:"location,omitempty"`
	IsUserProfile    bool                   `json:"isUserProfile,omitempty"`
}

// Validate validates the AddPersonCommand
func (c AddPersonCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// Connection returns the normalized connection described by the command
func (c AddPersonCommand) Connection() entities.Connection {
	conn := entities.Connection{
		Strength:         valueobjects.ParseStrength(c.Strength),
		IntroducedByType: valueobjects.ParseIntroductionType(c.IntroducedByType),
		IntroducedByName: c.IntroducedByName,
	}
	if id, err := valueobjects.NewPersonIDFromString(c.IntroducedBy); err == nil {
		conn.IntroducedBy = id
	}
	return conn.Normalize()
}

// Profile returns the descriptive fields of the command
func (c AddPersonCommand) Profile() entities.ProfileUpdate {
	return entities.ProfileUpdate{
		Email:   &c.Email,
		Phone:   &c.Phone,
		Team:    &c.Team,
		Company: &c.Company,
		Role:    &c.Role,
		Notes:   &c.Notes,
		Tags:    &c.Tags,
	}
}
