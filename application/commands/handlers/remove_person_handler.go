package handlers

import (
	"context"

	"peoplenet/application/commands"
	"peoplenet/application/ports"
	"peoplenet/domain/core/valueobjects"
	pkgerrors "peoplenet/pkg/errors"

	"go.uber.org/zap"
)

// RemovePersonHandler handles person removal commands
type RemovePersonHandler struct {
	repo      ports.PersonRepository
	publisher ports.EventPublisher
	metrics   MutationRecorder
	logger    *zap.Logger
}

// NewRemovePersonHandler creates a new remove person handler
func NewRemovePersonHandler(
	repo ports.PersonRepository,
	publisher ports.EventPublisher,
	metrics MutationRecorder,
	logger *zap.Logger,
) *RemovePersonHandler {
	return &RemovePersonHandler{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle executes the remove person command
func (h *RemovePersonHandler) Handle(ctx context.Context, cmd commands.RemovePersonCommand) error {
	personID, err := valueobjects.NewPersonIDFromString(cmd.PersonID)
	if err != nil {
		return pkgerrors.NewFieldValidationError("id", err.Error())
	}

	person, err := h.repo.GetByID(ctx, cmd.UserID, personID)
	if err != nil {
		return err
	}

	if err := h.repo.Delete(ctx, cmd.UserID, personID); err != nil {
		return err
	}

	person.MarkRemoved()
	publishEvents(ctx, h.publisher, h.logger, person.GetUncommittedEvents())
	person.MarkEventsAsCommitted()
	h.metrics.PersonMutation(actionRemoved)

	h.logger.Info("Person removed",
		zap.String("personID", cmd.PersonID),
		zap.String("userID", cmd.UserID),
	)
	return nil
}
