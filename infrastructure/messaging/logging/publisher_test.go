package logging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"peoplenet/domain/core/valueobjects"
	"peoplenet/domain/events"
)

type recordingPublisher struct {
	got []events.DomainEvent
	err error
}

func (r *recordingPublisher) Publish(ctx context.Context, e events.DomainEvent) error {
	return r.PublishBatch(ctx, []events.DomainEvent{e})
}

func (r *recordingPublisher) PublishBatch(_ context.Context, es []events.DomainEvent) error {
	r.got = append(r.got, es...)
	return r.err
}

func removed() events.DomainEvent {
	return events.NewPersonRemoved(valueobjects.MustPersonID("p1"), "u1", time.Now())
}

func TestPublisher_LogsEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	pub := NewPublisher(zap.New(core))

	require.NoError(t, pub.Publish(context.Background(), removed()))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, events.TypePersonRemoved, entry.ContextMap()["eventType"])
	assert.Equal(t, "p1", entry.ContextMap()["aggregateID"])
}

func TestFanOut_DeliversToAllAndJoinsErrors(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("down")}
	fan := FanOut{failing, ok}

	err := fan.Publish(context.Background(), removed())

	assert.ErrorContains(t, err, "down")
	assert.Len(t, ok.got, 1, "a failing publisher does not stop delivery")
	assert.Len(t, failing.got, 1)
}
