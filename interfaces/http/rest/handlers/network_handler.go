package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"peoplenet/application/queries"
	querybus "peoplenet/application/queries/bus"
	"peoplenet/domain/core/aggregates"
	"peoplenet/domain/layout"
	"peoplenet/pkg/common"
	pkgerrors "peoplenet/pkg/errors"
	"peoplenet/pkg/utils"
)

// NetworkHandler serves the graph, path and issue read models
type NetworkHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewNetworkHandler creates a new network handler
func NewNetworkHandler(queryBus *querybus.QueryBus, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *NetworkHandler {
	return &NetworkHandler{queryBus: queryBus, errors: errors, logger: logger}
}

// GraphParams are the query parameters of GET /network/graph
type GraphParams struct {
	View     string  `json:"view" validate:"omitempty,oneof=all direct introduced external"`
	GroupBy  string  `json:"groupBy" validate:"omitempty,oneof=none team company role"`
	Selected string  `json:"selected" validate:"omitempty,max=64"`
	Layout   string  `json:"layout" validate:"omitempty,oneof=circular force"`
	Width    float64 `json:"width" validate:"gte=0,lte=20000"`
	Height   float64 `json:"height" validate:"gte=0,lte=20000"`
	Ticks    int     `json:"ticks" validate:"gte=0"`
}

func parseGraphParams(r *http.Request) (GraphParams, error) {
	q := r.URL.Query()
	params := GraphParams{
		View:     q.Get("view"),
		GroupBy:  q.Get("groupBy"),
		Selected: q.Get("selected"),
		Layout:   q.Get("layout"),
	}
	var err error
	if params.Width, err = queryFloat(r, "width"); err != nil {
		return params, err
	}
	if params.Height, err = queryFloat(r, "height"); err != nil {
		return params, err
	}
	if params.Ticks, err = queryInt(r, "ticks"); err != nil {
		return params, err
	}
	return params, utils.ValidateStruct(params)
}

// GetGraph handles GET /network/graph
func (h *NetworkHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	params, err := parseGraphParams(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	scene, err := querybus.AskAs[*layout.Scene](r.Context(), h.queryBus, queries.GetNetworkGraphQuery{
		UserID:   userID,
		ViewMode: params.View,
		GroupBy:  params.GroupBy,
		Selected: params.Selected,
		Layout:   params.Layout,
		Width:    params.Width,
		Height:   params.Height,
		Ticks:    params.Ticks,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, scene)
}

// GetPath handles GET /network/path/{personID}
func (h *NetworkHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	path, err := querybus.AskAs[*aggregates.ConnectionPath](r.Context(), h.queryBus, queries.GetConnectionPathQuery{
		UserID:   userID,
		PersonID: chi.URLParam(r, "personID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, path)
}

// GetIssues handles GET /network/issues
func (h *NetworkHandler) GetIssues(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := querybus.AskAs[*queries.NetworkIssuesResult](r.Context(), h.queryBus, queries.GetNetworkIssuesQuery{
		UserID: userID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
