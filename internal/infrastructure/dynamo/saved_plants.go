package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/plant-catalog-api/internal/domain"
)

// SavedPlantRepo stores (user_email, plant_id) bookmarks.
type SavedPlantRepo struct {
	client    API
	tableName string
}

func NewSavedPlantRepo(client API, tableName string) *SavedPlantRepo {
	return &SavedPlantRepo{client: client, tableName: tableName}
}

func (r *SavedPlantRepo) Exists(ctx context.Context, email, plantID string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.tableName),
		Key:                  compositeKey(attrUserEmail, email, attrPlantID, plantID),
		ProjectionExpression: aws.String(attrPlantID),
	})
	if err != nil {
		return false, err
	}
	return out.Item != nil, nil
}

// Put inserts the bookmark. A row that already exists for the same pair,
// including one written concurrently after the caller's Exists check, is
// reported as domain.ErrConflict.
func (r *SavedPlantRepo) Put(ctx context.Context, s *domain.SavedPlant) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal saved plant: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + attrPlantID + ")"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("plant already saved: %w", domain.ErrConflict)
	}
	return err
}

// ListByUser returns every bookmark of email, following query pagination.
func (r *SavedPlantRepo) ListByUser(ctx context.Context, email string) ([]domain.SavedPlant, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("#u = :u"),
		ExpressionAttributeNames: map[string]string{
			"#u": attrUserEmail,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: email},
		},
	})
	var saved []domain.SavedPlant
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.SavedPlant
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal saved plants: %w", err)
		}
		saved = append(saved, page...)
	}
	return saved, nil
}
