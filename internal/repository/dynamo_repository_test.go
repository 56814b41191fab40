package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/allan-almeida1/ecommerce/internal/domain"
)

// fakeDynamo is an in-memory stand-in for one DynamoDB table that honors
// the two condition expressions the repository issues.
type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	err   error // when set, every call fails with it
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func keyOf(key map[string]types.AttributeValue) string {
	return key["user_id"].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[keyOf(params.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	userID := keyOf(params.Item)
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(user_id)" {
		if _, exists := f.items[userID]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	f.items[userID] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	userID := keyOf(params.Key)
	item, exists := f.items[userID]
	if !exists {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if newItem, ok := params.ExpressionAttributeValues[":newItem"]; ok {
		appended := newItem.(*types.AttributeValueMemberL).Value
		current := []types.AttributeValue{}
		if existing, ok := item["items"].(*types.AttributeValueMemberL); ok {
			current = existing.Value
		}
		item["items"] = &types.AttributeValueMemberL{Value: append(current, appended...)}
	}
	if newItems, ok := params.ExpressionAttributeValues[":newItems"]; ok {
		item["items"] = newItems
	}
	return &dynamodb.UpdateItemOutput{Attributes: item}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	userID := keyOf(params.Key)
	if _, exists := f.items[userID]; !exists {
		return nil, &types.ConditionalCheckFailedException{}
	}
	delete(f.items, userID)
	return &dynamodb.DeleteItemOutput{}, nil
}

func newDynamoRepo(t *testing.T) (*DynamoRepository, *fakeDynamo) {
	t.Helper()
	db := newFakeDynamo()
	return NewDynamoRepository(db, "cart_table", zap.NewNop()), db
}

func TestDynamo_GetCart_NotFound(t *testing.T) {
	repo, _ := newDynamoRepo(t)

	_, err := repo.GetCartByUserID(context.Background(), "nobody")

	var notFound *domain.CartNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nobody", notFound.UserID)
}

func TestDynamo_CreateCart_ConditionalOnAbsence(t *testing.T) {
	repo, _ := newDynamoRepo(t)
	ctx := context.Background()

	_, err := repo.CreateCart(ctx, domain.NewCart("id-1", "u1", nil))
	require.NoError(t, err)

	_, err = repo.CreateCart(ctx, domain.NewCart("id-2", "u1", nil))
	var exists *domain.CartAlreadyExistsError
	require.ErrorAs(t, err, &exists)

	cart, err := repo.GetCartByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "id-1", cart.ID)
}

func TestDynamo_AddCartItem_CreatesCartForNewUser(t *testing.T) {
	repo, _ := newDynamoRepo(t)

	cart, err := repo.AddCartItem(context.Background(), "u1", domain.CartItem{ProductID: "p1", Amount: 3})
	require.NoError(t, err)

	assert.Equal(t, "u1", cart.UserID)
	assert.NotEmpty(t, cart.ID)
	assert.Equal(t, []domain.CartItem{{ProductID: "p1", Amount: 3}}, cart.Items)
}

func TestDynamo_AddCartItem_AppendsAndReturnsUpdatedCart(t *testing.T) {
	repo, _ := newDynamoRepo(t)
	ctx := context.Background()

	_, err := repo.AddCartItem(ctx, "u1", domain.CartItem{ProductID: "p1", Amount: 3})
	require.NoError(t, err)

	cart, err := repo.AddCartItem(ctx, "u1", domain.CartItem{ProductID: "p2", Amount: 7})
	require.NoError(t, err)

	assert.Equal(t, []domain.CartItem{
		{ProductID: "p1", Amount: 3},
		{ProductID: "p2", Amount: 7},
	}, cart.Items)
}

func TestDynamo_AddCartItem_DuplicateProductConflicts(t *testing.T) {
	repo, _ := newDynamoRepo(t)
	ctx := context.Background()

	_, err := repo.AddCartItem(ctx, "u1", domain.CartItem{ProductID: "p1", Amount: 3})
	require.NoError(t, err)

	_, err = repo.AddCartItem(ctx, "u1", domain.CartItem{ProductID: "p1", Amount: 5})
	var itemExists *domain.CartItemAlreadyExistsError
	require.ErrorAs(t, err, &itemExists)

	item, err := repo.GetCartItem(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, item.Amount)
}

func TestDynamo_UpdateCartItem_ReplacesOnlyMatchingItem(t *testing.T) {
	repo, _ := newDynamoRepo(t)
	ctx := context.Background()

	_, err := repo.AddCartItem(ctx, "u1", domain.CartItem{ProductID: "p1", Amount: 1})
	require.NoError(t, err)
	_, err = repo.AddCartItem(ctx, "u1", domain.CartItem{ProductID: "p2", Amount: 2})
	require.NoError(t, err)

	cart, err := repo.UpdateCartItem(ctx, "u1", domain.CartItem{ProductID: "p1", Amount: 9})
	require.NoError(t, err)

	assert.Equal(t, []domain.CartItem{
		{ProductID: "p1", Amount: 9},
		{ProductID: "p2", Amount: 2},
	}, cart.Items)
}

func TestDynamo_RemoveCartItem(t *testing.T) {
	repo, _ := newDynamoRepo(t)
	ctx := context.Background()

	_, err := repo.AddCartItem(ctx, "u1", domain.CartItem{ProductID: "p1", Amount: 1})
	require.NoError(t, err)

	require.NoError(t, repo.RemoveCartItem(ctx, "u1", "p1"))

	cart, err := repo.GetCartByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	err = repo.RemoveCartItem(ctx, "u1", "p1")
	var notFound *domain.CartItemNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDynamo_DeleteCart_ConditionalOnPresence(t *testing.T) {
	repo, _ := newDynamoRepo(t)
	ctx := context.Background()

	err := repo.DeleteCart(ctx, "nobody")
	var notFound *domain.CartNotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = repo.AddCartItem(ctx, "u1", domain.CartItem{ProductID: "p1", Amount: 1})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCart(ctx, "u1"))
	_, err = repo.GetCartByUserID(ctx, "u1")
	assert.ErrorAs(t, err, &notFound)
}

func TestDynamo_GetCartItem_MissingCartCollapsesToItemNotFound(t *testing.T) {
	repo, _ := newDynamoRepo(t)

	_, err := repo.GetCartItem(context.Background(), "nobody", "p1")

	var notFound *domain.CartItemNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "p1", notFound.ProductID)
}

// Storage failures that are not the expected precondition still surface
// as the operation's domain error.
func TestDynamo_StorageErrorsNormalizeToDomainErrors(t *testing.T) {
	repo, db := newDynamoRepo(t)
	ctx := context.Background()
	db.err = errors.New("network unreachable")

	_, err := repo.GetCartByUserID(ctx, "u1")
	var cartNotFound *domain.CartNotFoundError
	assert.ErrorAs(t, err, &cartNotFound)

	_, err = repo.CreateCart(ctx, domain.NewCart("id-1", "u1", nil))
	var cartExists *domain.CartAlreadyExistsError
	assert.ErrorAs(t, err, &cartExists)

	err = repo.DeleteCart(ctx, "u1")
	assert.ErrorAs(t, err, &cartNotFound)
}
