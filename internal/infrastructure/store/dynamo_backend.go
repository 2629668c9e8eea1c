package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoBackend.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoBackend stores bag blobs in a table keyed by the "key" hash attribute.
// When ttl is set, items carry an expires_at epoch attribute for DynamoDB TTL.
type DynamoBackend struct {
	client    DynamoAPI
	tableName string
	ttl       time.Duration
}

type dynamoBag struct {
	Key       string `dynamodbav:"key"`
	Data      string `dynamodbav:"data"`
	UpdatedAt string `dynamodbav:"updated_at"`
	ExpiresAt int64  `dynamodbav:"expires_at,omitempty"`
}

func NewDynamoBackend(client DynamoAPI, tableName string, ttl time.Duration) *DynamoBackend {
	return &DynamoBackend{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
	}
}

func (b *DynamoBackend) keyAttr(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"key": &types.AttributeValueMemberS{Value: key},
	}
}

func (b *DynamoBackend) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := b.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(b.tableName),
		Key:            b.keyAttr(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get bag: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var item dynamoBag
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bag: %w", err)
	}
	if item.ExpiresAt > 0 && time.Now().Unix() >= item.ExpiresAt {
		// TTL deletion in DynamoDB is lazy.
		return nil, ErrNotFound
	}
	return []byte(item.Data), nil
}

func (b *DynamoBackend) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC()
	item := dynamoBag{
		Key:       key,
		Data:      string(value),
		UpdatedAt: now.Format(time.RFC3339Nano),
	}
	if b.ttl > 0 {
		item.ExpiresAt = now.Add(b.ttl).Unix()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal bag: %w", err)
	}

	_, err = b.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put bag: %w", err)
	}
	return nil
}

func (b *DynamoBackend) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(b.tableName),
		Key:       b.keyAttr(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete bag: %w", err)
	}
	return nil
}
