package queries

import (
	"peoplenet/domain/core/aggregates"
	pkgerrors "peoplenet/pkg/errors"
)

// GetNetworkGraphQuery asks for a positioned scene of the user's network
type GetNetworkGraphQuery struct {
	UserID   string
	ViewMode string // all | direct | introduced | external
	GroupBy  string // none | team | company | role
	Selected string // person whose path is highlighted
	Layout   string // circular | force
	Width    float64
	Height   float64
	Ticks    int
}

// Validate validates the GetNetworkGraphQuery
func (q GetNetworkGraphQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewFieldValidationError("user_id", "is required")
	}
	if q.Width < 0 || q.Height < 0 {
		return pkgerrors.NewValidationError("width and height cannot be negative")
	}
	if q.Ticks < 0 {
		return pkgerrors.NewFieldValidationError("ticks", "cannot be negative")
	}
	return nil
}

// GetConnectionPathQuery asks how the user is connected to one person
type GetConnectionPathQuery struct {
	UserID   string
	PersonID string
}

// Validate validates the GetConnectionPathQuery
func (q GetConnectionPathQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewFieldValidationError("user_id", "is required")
	}
	if q.PersonID == "" {
		return pkgerrors.NewFieldValidationError("id", "is required")
	}
	return nil
}

// GetNetworkIssuesQuery asks for broken introductions in the user's network
type GetNetworkIssuesQuery struct {
	UserID string
}

// Validate validates the GetNetworkIssuesQuery
func (q GetNetworkIssuesQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewFieldValidationError("user_id", "is required")
	}
	return nil
}

// NetworkIssuesResult lists introduction problems
type NetworkIssuesResult struct {
	Issues []aggregates.Issue `json:"issues"`
	Count  int                `json:"count"`
}
