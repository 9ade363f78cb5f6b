package handlers

import (
	"context"

	"peoplenet/application/commands"
	"peoplenet/application/ports"
	"peoplenet/domain/config"
	"peoplenet/domain/core/entities"
	"peoplenet/domain/core/valueobjects"
	pkgerrors "peoplenet/pkg/errors"

	"go.uber.org/zap"
)

// UpdatePersonHandler handles person update commands
type UpdatePersonHandler struct {
	repo      ports.PersonRepository
	publisher ports.EventPublisher
	rules     config.Provider
	metrics   MutationRecorder
	logger    *zap.Logger
}

// NewUpdatePersonHandler creates a new update person handler
func NewUpdatePersonHandler(
	repo ports.PersonRepository,
	publisher ports.EventPublisher,
	rules config.Provider,
	metrics MutationRecorder,
	logger *zap.Logger,
) *UpdatePersonHandler {
	return &UpdatePersonHandler{
		repo:      repo,
		publisher: publisher,
		rules:     rules,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle executes the update person command
func (h *UpdatePersonHandler) Handle(ctx context.Context, cmd commands.UpdatePersonCommand) error {
	personID, err := valueobjects.NewPersonIDFromString(cmd.PersonID)
	if err != nil {
		return pkgerrors.NewFieldValidationError("id", err.Error())
	}

	person, err := h.repo.GetByID(ctx, cmd.UserID, personID)
	if err != nil {
		return err
	}

	cfg := h.rules.Current()
	before := person.Version()
	for i, u := range cmd.Updates {
		if intro, ok := u.(entities.IntroductionUpdate); ok &&
			valueobjects.ParseIntroductionType(string(intro.Type)) == valueobjects.IntroducedExisting {
			if err := ensureIntroducer(ctx, h.repo, cmd.UserID, intro.IntroducedBy); err != nil {
				return err
			}
		}
		if err := person.ApplyWithConfig(u, cfg); err != nil {
			return pkgerrors.Wrapf(err, "update %d (%s)", i, u.Kind())
		}
	}

	if person.Version() == before {
		h.logger.Debug("Person update was a no-op", zap.String("personID", cmd.PersonID))
		return nil
	}

	if err := h.repo.Save(ctx, person); err != nil {
		return err
	}

	publishEvents(ctx, h.publisher, h.logger, person.GetUncommittedEvents())
	person.MarkEventsAsCommitted()
	h.metrics.PersonMutation(actionUpdated)

	h.logger.Info("Person updated",
		zap.String("personID", cmd.PersonID),
		zap.String("userID", cmd.UserID),
		zap.Int("version", person.Version()),
	)
	return nil
}
