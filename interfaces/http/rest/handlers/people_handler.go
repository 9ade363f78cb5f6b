package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"peoplenet/application/commands"
	"peoplenet/application/commands/bus"
	"peoplenet/application/queries"
	querybus "peoplenet/application/queries/bus"
	"peoplenet/domain/core/valueobjects"
	"peoplenet/pkg/common"
	pkgerrors "peoplenet/pkg/errors"
	"peoplenet/pkg/utils"
)

// PeopleHandler handles person-related HTTP requests
type PeopleHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewPeopleHandler creates a new people handler
func NewPeopleHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *PeopleHandler {
	return &PeopleHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errors,
		logger:     logger,
	}
}

// ListPeople handles GET /people
func (h *PeopleHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	minRank, err := queryInt(r, "minRank")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := querybus.AskAs[*queries.ListPeopleResult](r.Context(), h.queryBus, queries.ListPeopleQuery{
		UserID:     userID,
		Search:     r.URL.Query().Get("search"),
		MinRank:    minRank,
		Pagination: common.ExtractPaginationParams(r),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondWithMeta(w, http.StatusOK, result.People, &common.MetaInfo{Pagination: result.Pagination})
}

// GetPerson handles GET /people/{personID}
func (h *PeopleHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	view, err := h.fetch(r, userID, chi.URLParam(r, "personID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, view)
}

// CreatePerson handles POST /people. The id is generated here when the
// client does not supply one so the created person can be read back.
func (h *PeopleHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var cmd commands.AddPersonCommand
	if err := common.ParseJSONBody(w, r, &cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	cmd.UserID = userID
	if cmd.PersonID == "" {
		cmd.PersonID = valueobjects.NewPersonID().String()
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	view, err := h.fetch(r, userID, cmd.PersonID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v2/people/"+view.ID)
	common.RespondJSON(w, http.StatusCreated, view)
}

// UpdatePerson handles PATCH /people/{personID}
func (h *PeopleHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req UpdatePersonRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	updates, err := req.toUpdates()
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	personID := chi.URLParam(r, "personID")
	if err := h.commandBus.Send(r.Context(), commands.UpdatePersonCommand{
		UserID:   userID,
		PersonID: personID,
		Updates:  updates,
	}); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	view, err := h.fetch(r, userID, personID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, view)
}

// DeletePerson handles DELETE /people/{personID}
func (h *PeopleHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := h.commandBus.Send(r.Context(), commands.RemovePersonCommand{
		UserID:   userID,
		PersonID: chi.URLParam(r, "personID"),
	}); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PeopleHandler) fetch(r *http.Request, userID, personID string) (*queries.PersonView, error) {
	return querybus.AskAs[*queries.PersonView](r.Context(), h.queryBus, queries.GetPersonQuery{
		UserID:   userID,
		PersonID: personID,
	})
}
