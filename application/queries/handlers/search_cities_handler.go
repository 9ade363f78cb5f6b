package handlers

import (
	"context"

	"peoplenet/application/ports"
	"peoplenet/application/queries"
)

// CitySearcher is the part of the city lookup service queries depend on
type CitySearcher interface {
	SearchCities(ctx context.Context, query string) ([]ports.CityResult, error)
}

// SearchCitiesHandler handles city search queries
type SearchCitiesHandler struct {
	cities CitySearcher
}

// NewSearchCitiesHandler creates a new city search handler
func NewSearchCitiesHandler(cities CitySearcher) *SearchCitiesHandler {
	return &SearchCitiesHandler{cities: cities}
}

// Handle executes the city search query
func (h *SearchCitiesHandler) Handle(ctx context.Context, query queries.SearchCitiesQuery) ([]ports.CityResult, error) {
	results, err := h.cities.SearchCities(ctx, query.Query)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []ports.CityResult{}
	}
	return results, nil
}
