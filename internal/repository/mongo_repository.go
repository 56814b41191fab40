package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/allan-almeida1/ecommerce/internal/domain"
)

// MongoRepository persists one document per cart, keyed by user_id. A
// unique index on user_id makes CreateCart atomic: a concurrent duplicate
// insert fails with a duplicate-key error and maps to CartAlreadyExists.
// Item mutations filter on user_id and treat MatchedCount == 0 as the
// not-found outcome.
type MongoRepository struct {
	collection *mongo.Collection
	log        *zap.Logger
}

// NewMongoRepository returns a repository over the carts collection.
func NewMongoRepository(db *mongo.Database, log *zap.Logger) *MongoRepository {
	return &MongoRepository{collection: db.Collection("carts"), log: log}
}

// ConnectMongoDB dials MongoDB and verifies the connection.
func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

// CreateIndexes installs the unique user_id index the conflict semantics
// depend on. Call once at startup.
func (r *MongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetCartByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Error("mongo find cart", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, &domain.CartNotFoundError{UserID: userID}
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

func (r *MongoRepository) CreateCart(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	_, err := r.collection.InsertOne(ctx, cart)
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			r.log.Error("mongo insert cart", zap.String("user_id", cart.UserID), zap.Error(err))
		}
		return nil, &domain.CartAlreadyExistsError{UserID: cart.UserID}
	}
	return cart, nil
}

func (r *MongoRepository) GetCartItem(ctx context.Context, userID, productID string) (*domain.CartItem, error) {
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

func (r *MongoRepository) AddCartItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	cart, err := r.GetCartByUserID(ctx, userID)
	if err != nil {
		// First item for this user: provision the cart. The unique index
		// keeps a concurrent add from racing past us.
		return r.CreateCart(ctx, domain.NewCart(uuid.NewString(), userID, []domain.CartItem{item}))
	}
	if cart.HasItem(item.ProductID) {
		return nil, &domain.CartItemAlreadyExistsError{ProductID: item.ProductID}
	}

	// Guard against a concurrent add of the same product: the filter only
	// matches while the product is still absent.
	filter := bson.M{
		"user_id":          userID,
		"items.product_id": bson.M{"$ne": item.ProductID},
	}
	update := bson.M{"$push": bson.M{"items": item}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.log.Error("mongo push item", zap.String("user_id", userID), zap.Error(err))
		return nil, &domain.CartItemAlreadyExistsError{ProductID: item.ProductID}
	}
	if result.MatchedCount == 0 {
		return nil, &domain.CartItemAlreadyExistsError{ProductID: item.ProductID}
	}
	return r.GetCartByUserID(ctx, userID)
}

func (r *MongoRepository) RemoveCartItem(ctx context.Context, userID, productID string) error {
	cart, err := r.GetCartByUserID(ctx, userID)
	if err != nil {
		return &domain.CartItemNotFoundError{ProductID: productID}
	}
	if !cart.HasItem(productID) {
		return &domain.CartItemNotFoundError{ProductID: productID}
	}
	update := bson.M{"$pull": bson.M{"items": bson.M{"product_id": productID}}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		r.log.Error("mongo pull item", zap.String("user_id", userID), zap.Error(err))
		return &domain.CartItemNotFoundError{ProductID: productID}
	}
	if result.MatchedCount == 0 {
		return &domain.CartItemNotFoundError{ProductID: productID}
	}
	return nil
}

func (r *MongoRepository) UpdateCartItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	filter := bson.M{
		"user_id":          userID,
		"items.product_id": item.ProductID,
	}
	update := bson.M{"$set": bson.M{"items.$[elem].amount": item.Amount}}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"elem.product_id": item.ProductID}},
	})
	result, err := r.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		r.log.Error("mongo update item", zap.String("user_id", userID), zap.Error(err))
		return nil, &domain.CartItemNotFoundError{ProductID: item.ProductID}
	}
	if result.MatchedCount == 0 {
		return nil, &domain.CartItemNotFoundError{ProductID: item.ProductID}
	}
	return r.GetCartByUserID(ctx, userID)
}

func (r *MongoRepository) DeleteCart(ctx context.Context, userID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		r.log.Error("mongo delete cart", zap.String("user_id", userID), zap.Error(err))
		return &domain.CartNotFoundError{UserID: userID}
	}
	if result.DeletedCount == 0 {
		return &domain.CartNotFoundError{UserID: userID}
	}
	return nil
}
