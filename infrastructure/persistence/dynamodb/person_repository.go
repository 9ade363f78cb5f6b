// Package dynamodb persists people in a single DynamoDB table keyed by owner.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"peoplenet/domain/core/entities"
	"peoplenet/domain/core/valueobjects"
	pkgerrors "peoplenet/pkg/errors"
)

const (
	entityTypePerson = "PERSON"
	personSKPrefix   = "PERSON#"
)

// API is the subset of the DynamoDB client the repository uses
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// PersonRepository implements ports.PersonRepository on DynamoDB
type PersonRepository struct {
	client    API
	tableName string
	logger    *zap.Logger
}

// NewPersonRepository creates a new PersonRepository
func NewPersonRepository(client API, tableName string, logger *zap.Logger) *PersonRepository {
	return &PersonRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type locationItem struct {
	City     string  `dynamodbav:"City,omitempty"`
	Country  string  `dynamodbav:"Country,omitempty"`
	Timezone string  `dynamodbav:"Timezone,omitempty"`
	Lat      float64 `dynamodbav:"Lat"`
	Lng      float64 `dynamodbav:"Lng"`
}

type interactionItem struct {
	Date string `dynamodbav:"Date"`
	Kind string `dynamodbav:"Kind"`
	Note string `dynamodbav:"Note,omitempty"`
}

// personItem represents the DynamoDB item structure for a person
type personItem struct {
	PK               string            `dynamodbav:"PK"`
	SK               string            `dynamodbav:"SK"`
	EntityType       string            `dynamodbav:"EntityType"`
	PersonID         string            `dynamodbav:"PersonID"`
	UserID           string            `dynamodbav:"UserID"`
	Name             string            `dynamodbav:"Name"`
	Strength         string            `dynamodbav:"Strength"`
	IntroducedByType string            `dynamodbav:"IntroducedByType"`
	IntroducedBy     string            `dynamodbav:"IntroducedBy,omitempty"`
	IntroducedByName string            `dynamodbav:"IntroducedByName,omitempty"`
	Email            string            `dynamodbav:"Email,omitempty"`
	Phone            string            `dynamodbav:"Phone,omitempty"`
	Team             string            `dynamodbav:"Team,omitempty"`
	Company          string            `dynamodbav:"Company,omitempty"`
	Role             string            `dynamodbav:"Role,omitempty"`
	Notes            string            `dynamodbav:"Notes,omitempty"`
	Tags             []string          `dynamodbav:"Tags,omitempty"`
	Location         *locationItem     `dynamodbav:"Location,omitempty"`
	Interactions     []interactionItem `dynamodbav:"Interactions,omitempty"`
	IsUserProfile    bool              `dynamodbav:"IsUserProfile"`
	CreatedAt        string            `dynamodbav:"CreatedAt"`
	UpdatedAt        string            `dynamodbav:"UpdatedAt"`
	Version          int               `dynamodbav:"Version"`
}

func userPK(userID string) string {
	return fmt.Sprintf("USER#%s", userID)
}

func personSK(id valueobjects.PersonID) string {
	return personSKPrefix + id.String()
}

func personKey(userID string, id valueobjects.PersonID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
		"SK": &types.AttributeValueMemberS{Value: personSK(id)},
	}
}

func toItem(p *entities.Person) personItem {
	s := p.State()
	item := personItem{
		PK:               userPK(s.UserID),
		SK:               personSK(s.ID),
		EntityType:       entityTypePerson,
		PersonID:         s.ID.String(),
		UserID:           s.UserID,
		Name:             s.Name,
		Strength:         string(s.Connection.Strength),
		IntroducedByType: string(s.Connection.IntroducedByType),
		IntroducedBy:     s.Connection.IntroducedBy.String(),
		IntroducedByName: s.Connection.IntroducedByName,
		Email:            s.Profile.Email,
		Phone:            s.Profile.Phone,
		Team:             s.Profile.Team,
		Company:          s.Profile.Company,
		Role:             s.Profile.Role,
		Notes:            s.Profile.Notes,
		Tags:             s.Profile.Tags,
		IsUserProfile:    s.IsUserProfile,
		CreatedAt:        s.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:        s.UpdatedAt.Format(time.RFC3339Nano),
		Version:          s.Version,
	}
	if !s.Location.IsZero() {
		item.Location = &locationItem{
			City:     s.Location.City,
			Country:  s.Location.Country,
			Timezone: s.Location.Timezone,
			Lat:      s.Location.Lat,
			Lng:      s.Location.Lng,
		}
	}
	for _, in := range s.Interactions {
		item.Interactions = append(item.Interactions, interactionItem{
			Date: in.Date.Format(time.RFC3339Nano),
			Kind: in.Kind,
			Note: in.Note,
		})
	}
	return item
}

func (item personItem) toPerson() (*entities.Person, error) {
	id, err := valueobjects.NewPersonIDFromString(item.PersonID)
	if err != nil {
		return nil, err
	}
	state := entities.PersonState{
		ID:     id,
		UserID: item.UserID,
		Name:   item.Name,
		Connection: entities.Connection{
			Strength:         valueobjects.Strength(item.Strength),
			IntroducedByType: valueobjects.IntroductionType(item.IntroducedByType),
			IntroducedByName: item.IntroducedByName,
		},
		Profile: entities.Profile{
			Email:   item.Email,
			Phone:   item.Phone,
			Team:    item.Team,
			Company: item.Company,
			Role:    item.Role,
			Notes:   item.Notes,
			Tags:    item.Tags,
		},
		IsUserProfile: item.IsUserProfile,
		CreatedAt:     parseTime(item.CreatedAt),
		UpdatedAt:     parseTime(item.UpdatedAt),
		Version:       item.Version,
	}
	if item.IntroducedBy != "" {
		state.Connection.IntroducedBy = valueobjects.MustPersonID(item.IntroducedBy)
	}
	if item.Location != nil {
		state.Location = valueobjects.Location{
			City:     item.Location.City,
			Country:  item.Location.Country,
			Timezone: item.Location.Timezone,
			Lat:      item.Location.Lat,
			Lng:      item.Location.Lng,
		}
	}
	for _, in := range item.Interactions {
		state.Interactions = append(state.Interactions, entities.Interaction{
			Date: parseTime(in.Date),
			Kind: in.Kind,
			Note: in.Note,
		})
	}
	return entities.ReconstructPerson(state)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Save writes a person. A write that would overwrite a newer version is a conflict.
func (r *PersonRepository) Save(ctx context.Context, person *entities.Person) error {
	if person == nil {
		return pkgerrors.NewValidationError("person cannot be nil")
	}

	av, err := attributevalue.MarshalMap(toItem(person))
	if err != nil {
		return fmt.Errorf("failed to marshal person: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("PK")).
		Or(expression.Name("Version").LessThan(expression.Value(person.Version())))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewConflictError("person was modified concurrently").
				WithCode("VERSION_CONFLICT").
				WithDetail("id", person.ID().String())
		}
		r.logger.Error("Failed to save person to DynamoDB",
			zap.Error(err),
			zap.String("personID", person.ID().String()),
		)
		return pkgerrors.NewDatabaseError("save person", err)
	}

	r.logger.Debug("Saved person to DynamoDB",
		zap.String("personID", person.ID().String()),
		zap.String("userID", person.UserID()),
		zap.Int("version", person.Version()),
	)
	return nil
}

// GetByID retrieves a person owned by userID
func (r *PersonRepository) GetByID(ctx context.Context, userID string, id valueobjects.PersonID) (*entities.Person, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            personKey(userID, id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get person", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.NewNotFoundError("person").WithDetail("id", id.String())
	}

	var item personItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal person: %w", err)
	}
	return item.toPerson()
}

func (r *PersonRepository) userQuery(userID string) (*dynamodb.QueryInput, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").BeginsWith(personSKPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build key condition: %w", err)
	}
	return &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}

// ListByUser returns all of the user's people ordered by creation time
func (r *PersonRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Person, error) {
	input, err := r.userQuery(userID)
	if err != nil {
		return nil, err
	}

	people := make([]*entities.Person, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list people", err)
		}
		for _, raw := range page.Items {
			var item personItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal person item", zap.Error(err))
				continue
			}
			p, err := item.toPerson()
			if err != nil {
				r.logger.Warn("Failed to reconstruct person from item",
					zap.String("personID", item.PersonID),
					zap.Error(err),
				)
				continue
			}
			people = append(people, p)
		}
	}

	sort.SliceStable(people, func(i, j int) bool {
		if !people[i].CreatedAt().Equal(people[j].CreatedAt()) {
			return people[i].CreatedAt().Before(people[j].CreatedAt())
		}
		return people[i].ID().String() < people[j].ID().String()
	})
	return people, nil
}

// CountByUser counts the user's people without reading the items
func (r *PersonRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	input, err := r.userQuery(userID)
	if err != nil {
		return 0, err
	}
	input.Select = types.SelectCount

	total := 0
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, pkgerrors.NewDatabaseError("count people", err)
		}
		total += int(page.Count)
	}
	return total, nil
}

// Delete removes a person; deleting a missing person is NotFound
func (r *PersonRepository) Delete(ctx context.Context, userID string, id valueobjects.PersonID) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      personKey(userID, id),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewNotFoundError("person").WithDetail("id", id.String())
		}
		return pkgerrors.NewDatabaseError("delete person", err)
	}

	r.logger.Debug("Deleted person from DynamoDB",
		zap.String("personID", id.String()),
		zap.String("userID", userID),
	)
	return nil
}
