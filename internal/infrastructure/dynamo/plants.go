package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/plant-catalog-api/internal/domain"
)

const (
	// BatchGetItem accepts at most 100 keys per request.
	batchGetLimit   = 100
	batchGetRetries = 5
)

// PlantRepo provides typed DynamoDB operations for the plant catalog table.
type PlantRepo struct {
	client    API
	tableName string
	backoff   time.Duration
}

func NewPlantRepo(client API, tableName string) *PlantRepo {
	return &PlantRepo{client: client, tableName: tableName, backoff: 50 * time.Millisecond}
}

func (r *PlantRepo) Get(ctx context.Context, plantID string) (domain.Plant, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrPlantID, plantID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("plant not found: %w", domain.ErrNotFound)
	}
	var p domain.Plant
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal plant: %w", err)
	}
	return p, nil
}

// BatchGet fetches the documents for ids and returns them in the order of
// ids. Ids with no document are skipped; repeated ids are returned once.
func (r *PlantRepo) BatchGet(ctx context.Context, ids []string) ([]domain.Plant, error) {
	ids = dedupe(ids)
	found := make(map[string]domain.Plant, len(ids))
	for _, group := range chunk(ids, batchGetLimit) {
		keys := make([]map[string]types.AttributeValue, len(group))
		for i, id := range group {
			keys[i] = strKey(attrPlantID, id)
		}
		if err := r.batchGet(ctx, keys, found); err != nil {
			return nil, err
		}
	}
	plants := make([]domain.Plant, 0, len(found))
	for _, id := range ids {
		if p, ok := found[id]; ok {
			plants = append(plants, p)
		}
	}
	return plants, nil
}

func (r *PlantRepo) batchGet(ctx context.Context, keys []map[string]types.AttributeValue, found map[string]domain.Plant) error {
	request := map[string]types.KeysAndAttributes{
		r.tableName: {Keys: keys},
	}
	for attempt := 0; ; attempt++ {
		out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
		if err != nil {
			return err
		}
		var page []domain.Plant
		if err := attributevalue.UnmarshalListOfMaps(out.Responses[r.tableName], &page); err != nil {
			return fmt.Errorf("unmarshal plants: %w", err)
		}
		for _, p := range page {
			found[p.ID()] = p
		}
		pending, ok := out.UnprocessedKeys[r.tableName]
		if !ok || len(pending.Keys) == 0 {
			return nil
		}
		if attempt+1 >= batchGetRetries {
			return errors.New("batch get plants: unprocessed keys remain after retries")
		}
		request = out.UnprocessedKeys
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoff << attempt):
		}
	}
}

// Put writes a whole catalog document, replacing any existing one.
func (r *PlantRepo) Put(ctx context.Context, p domain.Plant) error {
	if p.ID() == "" {
		return fmt.Errorf("plant document has no %s: %w", attrPlantID, domain.ErrBadRequest)
	}
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal plant: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Update sets the given attributes on an existing document.
func (r *PlantRepo) Update(ctx context.Context, plantID string, updates map[string]interface{}) error {
	updates[attrUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrPlantID, plantID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(" + attrPlantID + ")"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("plant not found: %w", domain.ErrNotFound)
	}
	return err
}
