package dynamo

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/policy-letter-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo keeps items keyed by email and honours the "#c = :c" condition.
type fakeDynamo struct {
	items      map[string]map[string]types.AttributeValue
	created    []string
	ttlEnabled string
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func keyOf(m map[string]types.AttributeValue) string {
	return m["email"].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.items[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	k := keyOf(in.Key)
	if in.ConditionExpression != nil {
		item, ok := f.items[k]
		want := in.ExpressionAttributeValues[":c"].(*types.AttributeValueMemberS).Value
		if !ok || item["code"].(*types.AttributeValueMemberS).Value != want {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	delete(f.items, k)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.created = append(f.created, *in.TableName)
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeDynamo) UpdateTimeToLive(_ context.Context, in *dynamodb.UpdateTimeToLiveInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error) {
	f.ttlEnabled = *in.TimeToLiveSpecification.AttributeName
	return &dynamodb.UpdateTimeToLiveOutput{}, nil
}

func TestOTPRepo_PutGet(t *testing.T) {
	ctx := context.Background()
	repo := NewOTPRepo(newFakeDynamo(), "otp_codes")
	exp := time.UnixMilli(42_500)
	require.NoError(t, repo.Put(ctx, domain.NewOTPRecord("a@x.com", "123456", exp)))

	rec, err := repo.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", rec.Code)
	assert.Equal(t, int64(43), rec.ExpiresAt)
	assert.Equal(t, int64(42_500), rec.ExpiresAtMs)
	assert.False(t, rec.Expired(exp))
}

func TestOTPRepo_GetMissing(t *testing.T) {
	_, err := NewOTPRepo(newFakeDynamo(), "otp_codes").Get(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOTPRepo_DeleteIfMatch(t *testing.T) {
	ctx := context.Background()
	repo := NewOTPRepo(newFakeDynamo(), "otp_codes")
	require.NoError(t, repo.Put(ctx, &domain.OTPRecord{Email: "a@x.com", Code: "123456"}))

	ok, err := repo.DeleteIfMatch(ctx, "a@x.com", "654321")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DeleteIfMatch(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.Get(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBootstrap_CreatesTableWithTTL(t *testing.T) {
	f := newFakeDynamo()
	Bootstrap(context.Background(), f, "otp_codes")
	assert.Equal(t, []string{"otp_codes"}, f.created)
	assert.Equal(t, "expires_at", f.ttlEnabled)
}
