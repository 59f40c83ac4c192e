package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Archer110/nexus/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{
		collection: db.Collection("carts"),
	}
}

func (m *CartRepository) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"session_id": sessionID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

// AddItem adds quantity to the line for productID, appending a new line (and
// creating the cart) when there is none yet.
func (m *CartRepository) AddItem(ctx context.Context, sessionID, productID string, quantity int) error {
	incremented, err := m.incrementItem(ctx, sessionID, productID, quantity)
	if err != nil || incremented {
		return err
	}

	now := time.Now().UTC()
	item := domain.CartItem{ProductID: productID, Quantity: quantity, AddedAt: now}

	filter := bson.M{
		"session_id":       sessionID,
		"items.product_id": bson.M{"$ne": productID},
	}
	update := bson.M{
		"$push":        bson.M{"items": item},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}

	_, err = m.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent add created the line between the two updates
		_, err = m.incrementItem(ctx, sessionID, productID, quantity)
	}
	if err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}
	return nil
}

func (m *CartRepository) incrementItem(ctx context.Context, sessionID, productID string, quantity int) (bool, error) {
	filter := bson.M{
		"session_id":       sessionID,
		"items.product_id": productID,
	}
	update := bson.M{
		"$inc": bson.M{"items.$.quantity": quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to increment item: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (m *CartRepository) UpdateItemQuantity(ctx context.Context, sessionID, productID string, quantity int) error {
	filter := bson.M{
		"session_id":       sessionID,
		"items.product_id": productID,
	}

	update := bson.M{
		"$set": bson.M{
			"items.$[elem].quantity": quantity,
			"updated_at":             time.Now().UTC(),
		},
	}

	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.product_id": productID},
		},
	})

	result, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to update item quantity: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (m *CartRepository) RemoveItem(ctx context.Context, sessionID, productID string) error {
	filter := bson.M{"session_id": sessionID}
	update := bson.M{
		"$pull": bson.M{
			"items": bson.M{"product_id": productID},
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrCartNotFound
	}

	return nil
}

func (m *CartRepository) DeleteCart(ctx context.Context, sessionID string) error {
	filter := bson.M{"session_id": sessionID}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return domain.ErrCartNotFound
	}

	return nil
}

// DeleteCartUnchangedSince deletes the cart only if it was last modified at or
// before since. It reports whether a cart was deleted.
func (m *CartRepository) DeleteCartUnchangedSince(ctx context.Context, sessionID string, since time.Time) (bool, error) {
	filter := bson.M{
		"session_id": sessionID,
		"updated_at": bson.M{"$lte": since},
	}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete cart: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// CreateIndexes makes session_id unique and expires carts idle for longer than ttl.
func (m *CartRepository) CreateIndexes(ctx context.Context, ttl time.Duration) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
