package store

import (
	"context"
	"fmt"

	perrors "github.com/abgdnv/productcatalog/internal/product/errors"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// DynamoDBStore implements ProductStore on a DynamoDB table keyed by "id".
type DynamoDBStore struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

// NewDynamoDBStore creates a store bound to the given table.
func NewDynamoDBStore(client dynamodbiface.DynamoDBAPI, table string) *DynamoDBStore {
	return &DynamoDBStore{
		client: client,
		table:  table,
	}
}

// Put writes the item unconditionally.
func (s *DynamoDBStore) Put(ctx context.Context, product Product) error {
	av, err := dynamodbattribute.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product item: %w", err)
	}
	_, err = s.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put product item: %w", err)
	}
	return nil
}

// Get performs a strongly consistent read of the item.
// Returns ErrProductNotFound if the table has no item with the given ID.
func (s *DynamoDBStore) Get(ctx context.Context, id string) (*Product, error) {
	result, err := s.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            productKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product item: %w", err)
	}
	if len(result.Item) == 0 {
		return nil, perrors.ErrProductNotFound
	}
	var product Product
	if err := dynamodbattribute.UnmarshalMap(result.Item, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product item: %w", err)
	}
	return &product, nil
}

// Delete removes the item; DynamoDB treats a missing key as success.
func (s *DynamoDBStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       productKey(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete product item: %w", err)
	}
	return nil
}

// ListAll scans every page of the table.
func (s *DynamoDBStore) ListAll(ctx context.Context) ([]Product, error) {
	products := make([]Product, 0)
	var unmarshalErr error
	err := s.client.ScanPagesWithContext(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	}, func(page *dynamodb.ScanOutput, lastPage bool) bool {
		var items []Product
		if err := dynamodbattribute.UnmarshalListOfMaps(page.Items, &items); err != nil {
			unmarshalErr = err
			return false
		}
		products = append(products, items...)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan product items: %w", err)
	}
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal product items: %w", unmarshalErr)
	}
	return products, nil
}

func productKey(id string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"id": {S: aws.String(id)},
	}
}
