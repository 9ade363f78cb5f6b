package handlers

import (
	"context"

	"peoplenet/application/ports"
	"peoplenet/domain/core/valueobjects"
	"peoplenet/domain/events"
	pkgerrors "peoplenet/pkg/errors"

	"go.uber.org/zap"
)

// MutationRecorder counts people mutations by action
type MutationRecorder interface {
	PersonMutation(action string)
}

const (
	actionAdded   = "added"
	actionUpdated = "updated"
	actionRemoved = "removed"
)

// publishEvents sends events; failures are logged, not returned, because
// the person has already been saved
func publishEvents(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, evts []events.DomainEvent) {
	if publisher == nil || len(evts) == 0 {
		return
	}
	if err := publisher.PublishBatch(ctx, evts); err != nil {
		logger.Warn("Failed to publish events",
			zap.Int("count", len(evts)),
			zap.Error(err),
		)
	}
}

// ensureIntroducer checks that an existing-person introduction points at a
// stored person or the root
func ensureIntroducer(ctx context.Context, repo ports.PersonRepository, userID string, ref valueobjects.PersonID) error {
	if ref.IsZero() || ref.String() == valueobjects.RootPersonID {
		return nil
	}
	if _, err := repo.GetByID(ctx, userID, ref); err != nil {
		if pkgerrors.IsNotFound(err) {
			return pkgerrors.NewFieldValidationError("introducedBy", "references an unknown person")
		}
		return err
	}
	return nil
}
