package queries

import (
	"strings"

	pkgerrors "peoplenet/pkg/errors"
)

// SearchCitiesQuery looks up cities by name
type SearchCitiesQuery struct {
	Query string
}

// Validate validates the SearchCitiesQuery
func (q SearchCitiesQuery) Validate() error {
	if len(q.Query) > 100 {
		return pkgerrors.NewFieldValidationError("q", "exceeds 100 characters")
	}
	if strings.ContainsAny(q.Query, "\n\r\t") {
		return pkgerrors.NewFieldValidationError("q", "contains control characters")
	}
	return nil
}
