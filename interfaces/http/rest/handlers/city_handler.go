package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"peoplenet/application/ports"
	"peoplenet/application/queries"
	querybus "peoplenet/application/queries/bus"
	"peoplenet/application/services/citysearch"
	"peoplenet/pkg/common"
	pkgerrors "peoplenet/pkg/errors"
)

// CityHandler serves city lookups for the location picker
type CityHandler struct {
	queryBus *querybus.QueryBus
	cities   *citysearch.Service
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewCityHandler creates a new city handler
func NewCityHandler(
	queryBus *querybus.QueryBus,
	cities *citysearch.Service,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *CityHandler {
	return &CityHandler{queryBus: queryBus, cities: cities, errors: errors, logger: logger}
}

// CachedResponse is the body of GET /cities/cached
type CachedResponse struct {
	Cached  bool               `json:"cached"`
	Results []ports.CityResult `json:"results"`
}

// Search handles GET /cities/search?q=
func (h *CityHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := querybus.AskAs[[]ports.CityResult](r.Context(), h.queryBus, queries.SearchCitiesQuery{
		Query: r.URL.Query().Get("q"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, results)
}

// Cached handles GET /cities/cached?q=, answering from memory only
func (h *CityHandler) Cached(w http.ResponseWriter, r *http.Request) {
	results, ok := h.cities.GetCachedResults(r.URL.Query().Get("q"))
	if !ok {
		results = []ports.CityResult{}
	}
	common.RespondJSON(w, http.StatusOK, CachedResponse{Cached: ok, Results: results})
}

// Usage handles GET /cities/usage
func (h *CityHandler) Usage(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.cities.Usage())
}

// ClearCache handles DELETE /cities/cache
func (h *CityHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.cities.ClearCache(r.Context()); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.logger.Info("City cache cleared")
	w.WriteHeader(http.StatusNoContent)
}
