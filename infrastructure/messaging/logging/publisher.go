// Package logging provides event publishers that do not leave the process.
package logging

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"peoplenet/application/ports"
	"peoplenet/domain/events"
)

// Publisher writes domain events to the structured log
type Publisher struct {
	logger *zap.Logger
}

// NewPublisher creates a log-only publisher
func NewPublisher(logger *zap.Logger) *Publisher {
	return &Publisher{logger: logger}
}

// Publish logs a single event
func (p *Publisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.logger.Info("Domain event",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
		zap.Int("version", event.GetVersion()),
		zap.Time("timestamp", event.GetTimestamp()),
	)
	return nil
}

// PublishBatch logs each event
func (p *Publisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for _, e := range domainEvents {
		_ = p.Publish(ctx, e)
	}
	return nil
}

// FanOut delivers every event to each publisher and joins their errors
type FanOut []ports.EventPublisher

// Publish implements ports.EventPublisher
func (f FanOut) Publish(ctx context.Context, event events.DomainEvent) error {
	return f.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch implements ports.EventPublisher
func (f FanOut) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishBatch(ctx, domainEvents); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
