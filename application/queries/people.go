package queries

import (
	"strings"
	"time"

	"peoplenet/domain/core/entities"
	"peoplenet/domain/core/valueobjects"
	"peoplenet/pkg/common"
	pkgerrors "peoplenet/pkg/errors"
)

// ListPeopleQuery lists the people of a user's network
type ListPeopleQuery struct {
	UserID string
	// Search matches name, team, company, role and tags case-insensitively
	Search string
	// MinRank keeps people whose strength rank is at least this value
	MinRank    int
	Pagination common.PaginationParams
}

// Validate validates the ListPeopleQuery
func (q ListPeopleQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewFieldValidationError("user_id", "is required")
	}
	if q.MinRank < 0 || q.MinRank > valueobjects.MaxStrengthRank {
		return pkgerrors.NewFieldValidationError("minRank", "out of range")
	}
	return nil
}

// Matches reports whether p passes the query filters
func (q ListPeopleQuery) Matches(p *entities.Person) bool {
	if q.MinRank > 0 && !p.Strength().AtLeast(q.MinRank) {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(q.Search))
	if term == "" {
		return true
	}
	profile := p.Profile()
	fields := append([]string{p.Name(), profile.Team, profile.Company, profile.Role}, profile.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// ListPeopleResult is one page of people
type ListPeopleResult struct {
	People     []PersonView           `json:"people"`
	Pagination *common.PaginationInfo `json:"pagination"`
}

// GetPersonQuery represents a query to get a single person
type GetPersonQuery struct {
	UserID   string
	PersonID string
}

// Validate validates the GetPersonQuery
func (q GetPersonQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewFieldValidationError("user_id", "is required")
	}
	if q.PersonID == "" {
		return pkgerrors.NewFieldValidationError("id", "is required")
	}
	return nil
}

// PersonView is the read model of a person
type PersonView struct {
	ID               string                        `json:"id"`
	Name             string                        `json:"name"`
	Strength         valueobjects.Strength         `json:"strength"`
	StrengthRank     int                           `json:"strengthRank"`
	StrengthLabel    string                        `json:"strengthLabel"`
	IntroducedByType valueobjects.IntroductionType `json:"introducedByType"`
	IntroducedBy     valueobjects.PersonID         `json:"introducedBy"`
	IntroducedByName string                        `json:"introducedByName,omitempty"`
	Email            string                        `json:"email,omitempty"`
	Phone            string                        `json:"phone,omitempty"`
	Team             string                        `json:"team,omitempty"`
	Company          string                        `json:"company,omitempty"`
	Role             string                        `json:"role,omitempty"`
	Notes            string                        `json:"notes,omitempty"`
	Tags             []string                      `json:"tags"`
	Location         *valueobjects.Location        `json:"location,omitempty"`
	Interactions     []InteractionView             `json:"interactions"`
	IsUserProfile    bool                          `json:"isUserProfile"`
	Version          int                           `json:"version"`
	CreatedAt        string                        `json:"createdAt"`
	UpdatedAt        string                        `json:"updatedAt"`
}

// InteractionView is the read model of one logged interaction
type InteractionView struct {
	Date string `json:"date"`
	Kind string `json:"kind"`
	Note string `json:"note,omitempty"`
}

// NewPersonView converts a person into its read model
func NewPersonView(p *entities.Person) PersonView {
	conn := p.Connection()
	profile := p.Profile()
	view := PersonView{
		ID:               p.ID().String(),
		Name:             p.Name(),
		Strength:         conn.Strength,
		StrengthRank:     conn.Strength.Rank(),
		StrengthLabel:    conn.Strength.Label(),
		IntroducedByType: conn.IntroducedByType,
		IntroducedBy:     conn.IntroducedBy,
		IntroducedByName: conn.IntroducedByName,
		Email:            profile.Email,
		Phone:            profile.Phone,
		Team:             profile.Team,
		Company:          profile.Company,
		Role:             profile.Role,
		Notes:            profile.Notes,
		Tags:             profile.Tags,
		Interactions:     []InteractionView{},
		IsUserProfile:    p.IsUserProfile(),
		Version:          p.Version(),
		CreatedAt:        p.CreatedAt().Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt().Format(time.RFC3339),
	}
	if view.Tags == nil {
		view.Tags = []string{}
	}
	if loc := p.Location(); !loc.IsZero() {
		view.Location = &loc
	}
	for _, in := range p.Interactions() {
		view.Interactions = append(view.Interactions, InteractionView{
			Date: in.Date.Format(time.RFC3339),
			Kind: in.Kind,
			Note: in.Note,
		})
	}
	return view
}
