package handlers

import (
	"context"
	"fmt"

	"peoplenet/application/commands"
	"peoplenet/application/ports"
	"peoplenet/domain/config"
	"peoplenet/domain/core/entities"
	"peoplenet/domain/core/valueobjects"
	pkgerrors "peoplenet/pkg/errors"

	"go.uber.org/zap"
)

// AddPersonHandler handles person creation commands
type AddPersonHandler struct {
	repo      ports.PersonRepository
	publisher ports.EventPublisher
	rules     config.Provider
	metrics   MutationRecorder
	logger    *zap.Logger
}

// NewAddPersonHandler creates a new add person handler
func NewAddPersonHandler(
	repo ports.PersonRepository,
	publisher ports.EventPublisher,
	rules config.Provider,
	metrics MutationRecorder,
	logger *zap.Logger,
) *AddPersonHandler {
	return &AddPersonHandler{
		repo:      repo,
		publisher: publisher,
		rules:     rules,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle executes the add person command
func (h *AddPersonHandler) Handle(ctx context.Context, cmd commands.AddPersonCommand) error {
	cfg := h.rules.Current()

	if cfg.MaxPeoplePerNetwork > 0 {
		count, err := h.repo.CountByUser(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		if count >= cfg.MaxPeoplePerNetwork {
			return pkgerrors.NewConflictError(fmt.Sprintf("network is full: %d people", cfg.MaxPeoplePerNetwork)).
				WithCode("NETWORK_FULL")
		}
	}

	var id valueobjects.PersonID
	if cmd.PersonID != "" {
		parsed, err := valueobjects.NewPersonIDFromString(cmd.PersonID)
		if err != nil {
			return pkgerrors.NewFieldValidationError("id", err.Error())
		}
		if parsed.String() == valueobjects.RootPersonID {
			return pkgerrors.NewFieldValidationError("id", "is reserved")
		}
		if _, err := h.repo.GetByID(ctx, cmd.UserID, parsed); err == nil {
			return pkgerrors.NewConflictError("person already exists").WithDetail("id", parsed.String())
		} else if !pkgerrors.IsNotFound(err) {
			return err
		}
		id = parsed
	}

	conn := cmd.Connection()
	if conn.IntroducedByType == valueobjects.IntroducedExisting {
		if err := ensureIntroducer(ctx, h.repo, cmd.UserID, conn.IntroducedBy); err != nil {
			return err
		}
	}

	if cmd.IsUserProfile {
		if err := h.ensureNoUserProfile(ctx, cmd.UserID); err != nil {
			return err
		}
	}

	draft := entities.Draft{
		ID:            id,
		UserID:        cmd.UserID,
		Name:          cmd.Name,
		Connection:    conn,
		Profile:       cmd.Profile(),
		IsUserProfile: cmd.IsUserProfile,
	}
	if cmd.Location != nil {
		draft.Location = *cmd.Location
	}

	person, err := entities.NewPersonFromDraft(draft, cfg)
	if err != nil {
		return err
	}

	if err := h.repo.Save(ctx, person); err != nil {
		return err
	}

	publishEvents(ctx, h.publisher, h.logger, person.GetUncommittedEvents())
	person.MarkEventsAsCommitted()
	h.metrics.PersonMutation(actionAdded)

	h.logger.Info("Person added",
		zap.String("personID", person.ID().String()),
		zap.String("userID", cmd.UserID),
		zap.String("introducedByType", string(conn.IntroducedByType)),
	)
	return nil
}

func (h *AddPersonHandler) ensureNoUserProfile(ctx context.Context, userID string) error {
	people, err := h.repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, p := range people {
		if p.IsUserProfile() {
			return pkgerrors.NewConflictError("user profile already exists").WithDetail("id", p.ID().String())
		}
	}
	return nil
}
