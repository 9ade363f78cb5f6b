package handlers

import (
	"peoplenet/domain/core/entities"
	"peoplenet/domain/core/valueobjects"
	pkgerrors "peoplenet/pkg/errors"
	"peoplenet/pkg/utils"
)

// UpdatePersonRequest is the body of PATCH /people/{personID}. Updates are
// applied in order and saved together.
type UpdatePersonRequest struct {
	Updates []UpdateRequest `json:"updates" validate:"required,min=1,max=50,dive"`
}

// UpdateRequest is one tagged update; Kind selects which fields are read
type UpdateRequest struct {
	Kind string `json:"kind" validate:"required,oneof=rename strength introduction profile location add_interaction remove_interaction"`

	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Strength *string `json:"strength,omitempty"`

	IntroducedByType *string `json:"introducedByType,omitempty" validate:"omitempty,oneof=direct existing external"`
	IntroducedBy     *string `json:"introducedBy,omitempty"`
	IntroducedByName *string `json:"introducedByName,omitempty" validate:"omitempty,max=200"`

	Email   *string   `json:"email,omitempty" validate:"omitempty,max=254"`
	Phone   *string   `json:"phone,omitempty" validate:"omitempty,max=50"`
	Team    *string   `json:"team,omitempty" validate:"omitempty,max=100"`
	Company *string   `json:"company,omitempty" validate:"omitempty,max=100"`
	Role    *string   `json:"role,omitempty" validate:"omitempty,max=100"`
	Notes   *string   `json:"notes,omitempty" validate:"omitempty,max=10000"`
	Tags    *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=30"`

	Location *valueobjects.Location `json:"location,omitempty"`

	Date  string `json:"date,omitempty"`
	Type  string `json:"type,omitempty" validate:"omitempty,max=50"`
	Note  string `json:"note,omitempty" validate:"omitempty,max=2000"`
	Index *int   `json:"index,omitempty"`
}

func (req UpdatePersonRequest) toUpdates() ([]entities.Update, error) {
	updates := make([]entities.Update, 0, len(req.Updates))
	for i, u := range req.Updates {
		update, err := u.toUpdate()
		if err != nil {
			if appErr := pkgerrors.GetAppError(err); appErr != nil {
				return nil, appErr.WithDetail("index", i)
			}
			return nil, err
		}
		updates = append(updates, update)
	}
	return updates, nil
}

func (u UpdateRequest) toUpdate() (entities.Update, error) {
	switch u.Kind {
	case entities.UpdateKindRename:
		if u.Name == nil {
			return nil, pkgerrors.NewFieldValidationError("name", "is required for rename")
		}
		return entities.RenameUpdate{Name: *u.Name}, nil

	case entities.UpdateKindStrength:
		if u.Strength == nil {
			return nil, pkgerrors.NewFieldValidationError("strength", "is required for strength")
		}
		return entities.StrengthUpdate{Strength: valueobjects.ParseStrength(*u.Strength)}, nil

	case entities.UpdateKindIntroduction:
		if u.IntroducedByType == nil {
			return nil, pkgerrors.NewFieldValidationError("introducedByType", "is required for introduction")
		}
		update := entities.IntroductionUpdate{Type: valueobjects.ParseIntroductionType(*u.IntroducedByType)}
		if u.IntroducedBy != nil && *u.IntroducedBy != "" {
			id, err := valueobjects.NewPersonIDFromString(*u.IntroducedBy)
			if err != nil {
				return nil, pkgerrors.NewFieldValidationError("introducedBy", err.Error())
			}
			update.IntroducedBy = id
		}
		if u.IntroducedByName != nil {
			update.IntroducedByName = *u.IntroducedByName
		}
		return update, nil

	case entities.UpdateKindProfile:
		return entities.ProfileUpdate{
			Email:   u.Email,
			Phone:   u.Phone,
			Team:    u.Team,
			Company: u.Company,
			Role:    u.Role,
			Notes:   u.Notes,
			Tags:    u.Tags,
		}, nil

	case entities.UpdateKindLocation:
		if u.Location == nil {
			return entities.LocationUpdate{}, nil
		}
		return entities.LocationUpdate{Location: *u.Location}, nil

	case entities.UpdateKindAddInteraction:
		date, err := utils.ParseDate(u.Date)
		if err != nil {
			return nil, pkgerrors.NewFieldValidationError("date", err.Error())
		}
		return entities.AddInteractionUpdate{Interaction: entities.Interaction{
			Date: date,
			Kind: u.Type,
			Note: u.Note,
		}}, nil

	case entities.UpdateKindRemoveInteraction:
		if u.Index == nil {
			return nil, pkgerrors.NewFieldValidationError("index", "is required for remove_interaction")
		}
		return entities.RemoveInteractionUpdate{Index: *u.Index}, nil

	default:
		return nil, pkgerrors.NewFieldValidationError("kind", "unknown update kind "+u.Kind)
	}
}
