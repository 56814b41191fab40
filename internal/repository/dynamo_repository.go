package repository

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allan-almeida1/ecommerce/internal/domain"
)

// DynamoClient is the slice of the DynamoDB API the repository uses.
// *dynamodb.Client satisfies it; tests substitute a fake.
type DynamoClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoRepository persists carts in a DynamoDB table keyed by user_id.
// Every mutation is a conditional write on the partition key, so two
// concurrent operations on the same user cannot both succeed when their
// preconditions exclude each other. Failed conditions and unexpected
// storage errors surface as the same typed domain error; the underlying
// cause is only logged.
type DynamoRepository struct {
	db    DynamoClient
	table string
	log   *zap.Logger
}

// NewDynamoRepository returns a repository writing to the given table.
func NewDynamoRepository(db DynamoClient, table string, log *zap.Logger) *DynamoRepository {
	return &DynamoRepository{db: db, table: table, log: log}
}

// NewDynamoDBClient builds a DynamoDB client for the given region. A
// non-empty endpoint overrides the AWS one (LocalStack, dynamodb-local)
// and switches to static dev credentials.
func NewDynamoDBClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if endpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func (r *DynamoRepository) GetCartByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       userKey(userID),
	})
	if err != nil {
		r.log.Error("dynamodb get item", zap.String("user_id", userID), zap.Error(err))
		return nil, &domain.CartNotFoundError{UserID: userID}
	}
	if out.Item == nil {
		return nil, &domain.CartNotFoundError{UserID: userID}
	}
	return unmarshalCart(out.Item, userID)
}

func (r *DynamoRepository) CreateCart(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	av, err := attributevalue.MarshalMap(cart)
	if err != nil {
		r.log.Error("marshal cart", zap.String("user_id", cart.UserID), zap.Error(err))
		return nil, &domain.CartAlreadyExistsError{UserID: cart.UserID}
	}
	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	if err != nil {
		r.logConditional("dynamodb put item", cart.UserID, err)
		return nil, &domain.CartAlreadyExistsError{UserID: cart.UserID}
	}
	return cart, nil
}

func (r *DynamoRepository) GetCartItem(ctx context.Context, userID, productID string) (*domain.CartItem, error) {
	cart, err := r.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, &domain.CartItemNotFoundError{ProductID: productID}
	}
	item, ok := cart.FindItem(productID)
	if !ok {
		return nil, &domain.CartItemNotFoundError{ProductID: productID}
	}
	return &item, nil
}

func (r *DynamoRepository) AddCartItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	cart, err := r.GetCartByUserID(ctx, userID)
	if err != nil {
		// First item for this user: provision the cart. The conditional
		// create keeps a concurrent add from racing past us.
		return r.CreateCart(ctx, domain.NewCart(uuid.NewString(), userID, []domain.CartItem{item}))
	}
	if cart.HasItem(item.ProductID) {
		return nil, &domain.CartItemAlreadyExistsError{ProductID: item.ProductID}
	}

	newItem, err := marshalItems([]domain.CartItem{item})
	if err != nil {
		r.log.Error("marshal cart item", zap.String("product_id", item.ProductID), zap.Error(err))
		return nil, &domain.CartItemAlreadyExistsError{ProductID: item.ProductID}
	}
	out, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.table),
		Key:                      userKey(userID),
		UpdateExpression:         aws.String("SET #items = list_append(if_not_exists(#items, :emptyList), :newItem)"),
		ExpressionAttributeNames: map[string]string{"#items": "items"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":newItem":   newItem,
			":emptyList": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		},
		ConditionExpression: aws.String("attribute_exists(user_id)"),
		ReturnValues:        types.ReturnValueAllNew,
	})
	if err != nil {
		r.logConditional("dynamodb append item", userID, err)
		return nil, &domain.CartItemAlreadyExistsError{ProductID: item.ProductID}
	}
	return unmarshalCart(out.Attributes, userID)
}

func (r *DynamoRepository) RemoveCartItem(ctx context.Context, userID, productID string) error {
	cart, err := r.GetCartByUserID(ctx, userID)
	if err != nil {
		return &domain.CartItemNotFoundError{ProductID: productID}
	}
	if !cart.HasItem(productID) {
		return &domain.CartItemNotFoundError{ProductID: productID}
	}
	kept := make([]domain.CartItem, 0, len(cart.Items)-1)
	for _, existing := range cart.Items {
		if existing.ProductID != productID {
			kept = append(kept, existing)
		}
	}
	if _, err := r.setItems(ctx, userID, kept); err != nil {
		r.logConditional("dynamodb remove item", userID, err)
		return &domain.CartItemNotFoundError{ProductID: productID}
	}
	return nil
}

func (r *DynamoRepository) UpdateCartItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	cart, err := r.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, &domain.CartItemNotFoundError{ProductID: item.ProductID}
	}
	if !cart.HasItem(item.ProductID) {
		return nil, &domain.CartItemNotFoundError{ProductID: item.ProductID}
	}
	updated := make([]domain.CartItem, len(cart.Items))
	for i, existing := range cart.Items {
		if existing.ProductID == item.ProductID {
			updated[i] = item
		} else {
			updated[i] = existing
		}
	}
	out, err := r.setItems(ctx, userID, updated)
	if err != nil {
		r.logConditional("dynamodb update item", userID, err)
		return nil, &domain.CartItemNotFoundError{ProductID: item.ProductID}
	}
	return unmarshalCart(out.Attributes, userID)
}

func (r *DynamoRepository) DeleteCart(ctx context.Context, userID string) error {
	_, err := r.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table),
		Key:                 userKey(userID),
		ConditionExpression: aws.String("attribute_exists(user_id)"),
	})
	if err != nil {
		r.logConditional("dynamodb delete cart", userID, err)
		return &domain.CartNotFoundError{UserID: userID}
	}
	return nil
}

// setItems overwrites the item list of an existing cart.
func (r *DynamoRepository) setItems(ctx context.Context, userID string, items []domain.CartItem) (*dynamodb.UpdateItemOutput, error) {
	newItems, err := marshalItems(items)
	if err != nil {
		return nil, err
	}
	return r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       userKey(userID),
		UpdateExpression:          aws.String("SET #items = :newItems"),
		ExpressionAttributeNames:  map[string]string{"#items": "items"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":newItems": newItems},
		ConditionExpression:       aws.String("attribute_exists(user_id)"),
		ReturnValues:              types.ReturnValueAllNew,
	})
}

// logConditional records the storage cause. Failed preconditions are the
// expected path and stay at debug level.
func (r *DynamoRepository) logConditional(msg, userID string, err error) {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		r.log.Debug(msg, zap.String("user_id", userID), zap.Error(err))
		return
	}
	r.log.Error(msg, zap.String("user_id", userID), zap.Error(err))
}

func userKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user_id": &types.AttributeValueMemberS{Value: userID},
	}
}

func marshalItems(items []domain.CartItem) (types.AttributeValue, error) {
	avs, err := attributevalue.MarshalList(items)
	if err != nil {
		return nil, err
	}
	return &types.AttributeValueMemberL{Value: avs}, nil
}

func unmarshalCart(av map[string]types.AttributeValue, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := attributevalue.UnmarshalMap(av, &cart); err != nil {
		return nil, &domain.CartNotFoundError{UserID: userID}
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}
