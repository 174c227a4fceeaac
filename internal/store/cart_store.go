package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecomstore/storefront-api/internal/models"
)

type mongoCartStore struct {
	collection *mongo.Collection
}

func NewMongoCartStore(db *mongo.Database) CartStore {
	return &mongoCartStore{collection: db.Collection("shopcarts")}
}

func (s *mongoCartStore) Create(ctx context.Context, cart *models.Shopcart) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = time.Now()
	}
	if cart.Items == nil {
		cart.Items = []models.ShopcartItem{}
	}

	res, err := s.collection.InsertOne(ctx, cart)
	if err != nil {
		// The unique index on the owner reference turns two concurrent
		// creates for the same user into exactly one cart.
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCart
		}
		return fmt.Errorf("failed to insert shopcart: %w", err)
	}

	cart.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoCartStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Shopcart, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var cart models.Shopcart
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get shopcart: %w", err)
	}
	return &cart, nil
}

func (s *mongoCartStore) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Shopcart, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var cart models.Shopcart
	err := s.collection.FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get shopcart by user: %w", err)
	}
	return &cart, nil
}

func (s *mongoCartStore) ListAll(ctx context.Context) ([]models.Shopcart, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	cur, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list shopcarts: %w", err)
	}

	carts := []models.Shopcart{}
	if err := cur.All(ctx, &carts); err != nil {
		return nil, fmt.Errorf("failed to decode shopcarts: %w", err)
	}
	return carts, nil
}

func (s *mongoCartStore) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	if len(fields) == 0 {
		return nil
	}

	ctx, cancel := opCtx(ctx)
	defer cancel()

	res, err := s.collection.UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update shopcart: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoCartStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete shopcart: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoCartStore) IncrementItem(ctx context.Context, cartID, productID primitive.ObjectID) (bool, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	// Single conditional $inc: two concurrent adds of the same product
	// both land, neither increment is lost.
	filter := bson.M{"_id": cartID, "items.product": productID}
	update := bson.M{"$inc": bson.M{"items.$.quantity": 1}}

	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to increment item quantity: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (s *mongoCartStore) PushItem(ctx context.Context, cartID primitive.ObjectID, item models.ShopcartItem) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	// The $ne guard keeps a concurrent first add of the same product from
	// producing a second line item.
	filter := bson.M{"_id": cartID, "items.product": bson.M{"$ne": item.ProductID}}

	res, err := s.collection.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"items": item}})
	if err != nil {
		return fmt.Errorf("failed to push item: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrDuplicateItem
	}
	return nil
}

func (s *mongoCartStore) SetItemQuantity(ctx context.Context, cartID, itemID primitive.ObjectID, quantity int) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	filter := bson.M{"_id": cartID, "items._id": itemID}
	update := bson.M{"$set": bson.M{"items.$.quantity": quantity}}

	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set item quantity: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *mongoCartStore) PullItem(ctx context.Context, cartID, itemID primitive.ObjectID) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	filter := bson.M{"_id": cartID}
	update := bson.M{"$pull": bson.M{"items": bson.M{"_id": itemID}}}

	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to pull item: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	if res.ModifiedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

// EnsureCartIndexes creates the unique index that caps carts at one per
// user, closing the concurrent-create race.
func EnsureCartIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("shopcarts").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create shopcart indexes: %w", err)
	}
	return nil
}
