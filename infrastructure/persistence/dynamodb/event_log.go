package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"peoplenet/domain/events"
)

const (
	// DynamoDB accepts at most 25 writes per BatchWriteItem call
	maxBatchWrite    = 25
	maxWriteAttempts = 3
	defaultEventTTL  = 90 * 24 * time.Hour
	entityTypeEvent  = "EVENT"
)

// BatchWriter is the client surface the event log needs
type BatchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// eventRecord is how a domain event is stored
type eventRecord struct {
	PK          string         `dynamodbav:"PK"` // EVENTS#<aggregate_id>
	SK          string         `dynamodbav:"SK"` // EVENT#<timestamp>#<event_id>
	EntityType  string         `dynamodbav:"EntityType"`
	EventID     string         `dynamodbav:"EventID"`
	EventType   string         `dynamodbav:"EventType"`
	AggregateID string         `dynamodbav:"AggregateID"`
	EventData   map[string]any `dynamodbav:"EventData"`
	Timestamp   string         `dynamodbav:"Timestamp"`
	Version     int            `dynamodbav:"Version"`
	TTL         int64          `dynamodbav:"TTL,omitempty"`
}

// EventLog appends domain events to the table as an audit trail. It
// implements ports.EventPublisher so it can sit beside the bus publisher.
type EventLog struct {
	client    BatchWriter
	tableName string
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewEventLog creates an event log that expires records after ninety days
func NewEventLog(client BatchWriter, tableName string, logger *zap.Logger) *EventLog {
	return &EventLog{
		client:    client,
		tableName: tableName,
		ttl:       defaultEventTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Publish records a single event
func (l *EventLog) Publish(ctx context.Context, event events.DomainEvent) error {
	return l.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch records events in batches, retrying unprocessed writes
func (l *EventLog) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	requests := make([]types.WriteRequest, 0, len(domainEvents))
	for _, event := range domainEvents {
		record, err := l.toRecord(event)
		if err != nil {
			return fmt.Errorf("failed to convert event to record: %w", err)
		}
		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("failed to marshal event record: %w", err)
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}

	for i := 0; i < len(requests); i += maxBatchWrite {
		end := min(i+maxBatchWrite, len(requests))
		if err := l.write(ctx, requests[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (l *EventLog) write(ctx context.Context, batch []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{l.tableName: batch}
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		out, err := l.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return fmt.Errorf("failed to write events batch: %w", err)
		}
		if len(out.UnprocessedItems[l.tableName]) == 0 {
			return nil
		}
		pending = out.UnprocessedItems
		l.logger.Debug("Retrying unprocessed event writes",
			zap.Int("attempt", attempt),
			zap.Int("unprocessed", len(pending[l.tableName])),
		)
	}
	return fmt.Errorf("failed to write %d events", len(pending[l.tableName]))
}

func (l *EventLog) toRecord(event events.DomainEvent) (eventRecord, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return eventRecord{}, err
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return eventRecord{}, err
	}

	id := uuid.New().String()
	ts := event.GetTimestamp().UTC().Format(time.RFC3339Nano)
	return eventRecord{
		PK:          fmt.Sprintf("EVENTS#%s", event.GetAggregateID()),
		SK:          fmt.Sprintf("EVENT#%s#%s", ts, id),
		EntityType:  entityTypeEvent,
		EventID:     id,
		EventType:   event.GetEventType(),
		AggregateID: event.GetAggregateID(),
		EventData:   data,
		Timestamp:   ts,
		Version:     event.GetVersion(),
		TTL:         l.now().Add(l.ttl).Unix(),
	}, nil
}
