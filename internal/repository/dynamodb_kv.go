package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	pkPrefixKV = "KV#"
	skValue    = "VALUE"
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoKV.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoKV stores each key as a single item in a PK/SK table.
type DynamoKV struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// NewDynamoKV creates a DynamoDB-backed KV.
func NewDynamoKV(api dynamodbAPI, tableName string) (*DynamoKV, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &DynamoKV{api: api, tableName: tableName, now: time.Now}, nil
}

// kvPK returns the partition key for a storage key.
func kvPK(key string) string {
	return pkPrefixKV + key
}

func (d *DynamoKV) itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: kvPK(key)},
		"SK": &types.AttributeValueMemberS{Value: skValue},
	}
}

// Get reads the payload stored under key with a strongly consistent read.
func (d *DynamoKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := d.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.tableName),
		Key:            d.itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("repository: DynamoKV.Get: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, false, nil
	}
	payload, err := strAttr(out.Item, "payload")
	if err != nil {
		// An item without a readable payload is treated like corrupt data.
		return []byte{}, true, nil
	}
	return []byte(payload), true, nil
}

// Put replaces the item stored under key.
func (d *DynamoKV) Put(ctx context.Context, key string, value []byte) error {
	item := d.itemKey(key)
	item["payload"] = &types.AttributeValueMemberS{Value: string(value)}
	item["updatedAt"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(d.now().UnixMilli(), 10)}

	_, err := d.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("repository: DynamoKV.Put: %w", err)
	}
	return nil
}

// Delete removes the item stored under key. Deleting a missing item succeeds.
func (d *DynamoKV) Delete(ctx context.Context, key string) error {
	_, err := d.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key:       d.itemKey(key),
	})
	if err != nil {
		return fmt.Errorf("repository: DynamoKV.Delete: %w", err)
	}
	return nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}
