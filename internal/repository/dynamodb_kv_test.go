package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"brainbox/internal/domain"
)

// fakeDynamo keeps items in a map keyed by PK so Put/Get/Delete round-trip.
type fakeDynamo struct {
	items        map[string]map[string]types.AttributeValue
	getErr       error
	putErr       error
	deleteErr    error
	lastGetInput *dynamodb.GetItemInput
	lastPutInput *dynamodb.PutItemInput
	lastDelInput *dynamodb.DeleteItemInput
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func pkOf(key map[string]types.AttributeValue) string {
	return key["PK"].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dynamodb.GetItemOutput{Item: f.items[pkOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.items[pkOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.lastDelInput = in
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	delete(f.items, pkOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func mustNewDynamoKV(t *testing.T, db *fakeDynamo) *DynamoKV {
	t.Helper()
	kv, err := NewDynamoKV(db, "test-table")
	require.NoError(t, err)
	kv.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return kv
}

func TestNewDynamoKV_Validates(t *testing.T) {
	_, err := NewDynamoKV(nil, "t")
	require.Error(t, err)
	_, err = NewDynamoKV(newFakeDynamo(), " ")
	require.Error(t, err)
}

func TestDynamoKV_GetMissing(t *testing.T) {
	db := newFakeDynamo()
	kv := mustNewDynamoKV(t, db)
	v, ok, err := kv.Get(context.Background(), "messages")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, v)
	require.True(t, *db.lastGetInput.ConsistentRead)
	require.Equal(t, "test-table", *db.lastGetInput.TableName)
}

func TestDynamoKV_PutThenGet(t *testing.T) {
	ctx := context.Background()
	db := newFakeDynamo()
	kv := mustNewDynamoKV(t, db)

	require.NoError(t, kv.Put(ctx, "messages", []byte(`[]`)))
	require.Equal(t, "KV#messages", pkOf(db.lastPutInput.Item))
	require.Equal(t, skValue, db.lastPutInput.Item["SK"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "1700000000000", db.lastPutInput.Item["updatedAt"].(*types.AttributeValueMemberN).Value)

	v, ok, err := kv.Get(ctx, "messages")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[]`, string(v))
}

func TestDynamoKV_GetMalformedPayload(t *testing.T) {
	db := newFakeDynamo()
	db.items["KV#messages"] = map[string]types.AttributeValue{
		"PK":      &types.AttributeValueMemberS{Value: "KV#messages"},
		"SK":      &types.AttributeValueMemberS{Value: skValue},
		"payload": &types.AttributeValueMemberN{Value: "12"},
	}
	kv := mustNewDynamoKV(t, db)
	v, ok, err := kv.Get(context.Background(), "messages")
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, v)
}

func TestDynamoKV_Delete(t *testing.T) {
	ctx := context.Background()
	db := newFakeDynamo()
	kv := mustNewDynamoKV(t, db)
	require.NoError(t, kv.Put(ctx, "messages", []byte(`[]`)))

	require.NoError(t, kv.Delete(ctx, "messages"))
	require.NoError(t, kv.Delete(ctx, "messages"))
	_, ok, err := kv.Get(ctx, "messages")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "KV#messages", pkOf(db.lastDelInput.Key))
}

func TestDynamoKV_Errors(t *testing.T) {
	ctx := context.Background()
	db := newFakeDynamo()
	db.getErr = errors.New("ResourceNotFoundException")
	db.putErr = errors.New("ProvisionedThroughputExceededException")
	db.deleteErr = errors.New("boom")
	kv := mustNewDynamoKV(t, db)

	_, _, err := kv.Get(ctx, "messages")
	require.ErrorContains(t, err, "DynamoKV.Get")
	require.ErrorContains(t, kv.Put(ctx, "messages", nil), "DynamoKV.Put")
	require.ErrorContains(t, kv.Delete(ctx, "messages"), "DynamoKV.Delete")
}

func TestDynamoKV_BacksTranscriptStore(t *testing.T) {
	ctx := context.Background()
	store := mustNewStore(t, mustNewDynamoKV(t, newFakeDynamo()))
	m1 := domain.Message{ID: "1", Content: "hi", IsFromUser: true, CreatedAt: 1}
	m2 := domain.Message{ID: "2", Content: "Hello!", CreatedAt: 2}

	require.NoError(t, store.Append(ctx, m1))
	require.NoError(t, store.Append(ctx, m2))
	msgs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Message{m1, m2}, msgs)

	require.NoError(t, store.Clear(ctx))
	msgs, err = store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, msgs)
}
