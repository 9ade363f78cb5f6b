package handlers

import (
	"context"

	"peoplenet/application/ports"
	"peoplenet/application/queries"
	"peoplenet/domain/core/valueobjects"
	"peoplenet/pkg/common"
	pkgerrors "peoplenet/pkg/errors"

	"go.uber.org/zap"
)

// ListPeopleHandler handles people listing queries
type ListPeopleHandler struct {
	repo   ports.PersonRepository
	logger *zap.Logger
}

// NewListPeopleHandler creates a new list people handler
func NewListPeopleHandler(repo ports.PersonRepository, logger *zap.Logger) *ListPeopleHandler {
	return &ListPeopleHandler{repo: repo, logger: logger}
}

// Handle executes the list people query
func (h *ListPeopleHandler) Handle(ctx context.Context, query queries.ListPeopleQuery) (*queries.ListPeopleResult, error) {
	people, err := h.repo.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	views := make([]queries.PersonView, 0, len(people))
	for _, p := range people {
		if query.Matches(p) {
			views = append(views, queries.NewPersonView(p))
		}
	}

	page, info := common.Paginate(views, query.Pagination)
	h.logger.Debug("Listed people",
		zap.String("userID", query.UserID),
		zap.Int("total", len(views)),
		zap.Int("returned", len(page)),
	)
	return &queries.ListPeopleResult{People: page, Pagination: info}, nil
}

// GetPersonHandler handles single person queries
type GetPersonHandler struct {
	repo ports.PersonRepository
}

// NewGetPersonHandler creates a new get person handler
func NewGetPersonHandler(repo ports.PersonRepository) *GetPersonHandler {
	return &GetPersonHandler{repo: repo}
}

// Handle executes the get person query
func (h *GetPersonHandler) Handle(ctx context.Context, query queries.GetPersonQuery) (*queries.PersonView, error) {
	id, err := valueobjects.NewPersonIDFromString(query.PersonID)
	if err != nil {
		return nil, pkgerrors.NewFieldValidationError("id", err.Error())
	}
	person, err := h.repo.GetByID(ctx, query.UserID, id)
	if err != nil {
		return nil, err
	}
	view := queries.NewPersonView(person)
	return &view, nil
}
