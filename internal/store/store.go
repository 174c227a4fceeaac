// Package store is the document-store layer of the API. Handlers consume
// the interfaces below; the MongoDB implementations live alongside them.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ecomstore/storefront-api/internal/models"
)

var (
	// ErrNotFound covers any lookup whose target document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateEmail is returned when a user insert hits the unique
	// index on email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateCart is returned when a cart insert hits the unique
	// index on the owner reference.
	ErrDuplicateCart = errors.New("user already has a shopcart")
	// ErrItemNotFound is returned when a cart item operation matches the
	// cart but not the item.
	ErrItemNotFound = errors.New("item not found in shopcart")
	// ErrDuplicateItem is returned when a push finds the cart already
	// holding a line item for the product.
	ErrDuplicateItem = errors.New("product already in shopcart")
)

// UserStore handles the 'users' collection.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// SetShopcart updates the user's owned-cart reference. A nil cartID
	// clears it.
	SetShopcart(ctx context.Context, userID primitive.ObjectID, cartID *primitive.ObjectID) error
}

// ProductListOptions narrows a catalog listing.
type ProductListOptions struct {
	Category string
	Latest   bool // sort by createdAt descending
	Limit    int64
}

// ProductStore handles the 'products' collection.
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	// GetByIDs fetches several products at once, keyed by id. Missing ids
	// are simply absent from the result; it is the read-time join used to
	// resolve cart item references.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error)
	List(ctx context.Context, opts ProductListOptions) ([]models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, patch bson.M) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

// CartStore handles the 'shopcarts' collection. Item mutations are
// expressed as single conditional updates so that concurrent requests
// against the same cart cannot lose writes.
type CartStore interface {
	Create(ctx context.Context, cart *models.Shopcart) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Shopcart, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Shopcart, error)
	ListAll(ctx context.Context) ([]models.Shopcart, error)
	// UpdateFields merges the given fields onto the cart document. The
	// caller is responsible for stripping fields that must not change
	// (owner, items).
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// IncrementItem bumps the quantity of the item referencing productID
	// by one, atomically. It reports false when the cart holds no item
	// for that product.
	IncrementItem(ctx context.Context, cartID, productID primitive.ObjectID) (bool, error)
	// PushItem appends a new line item, guarded so the cart never ends up
	// with two items for the same product. ErrDuplicateItem means a
	// concurrent add got there first and the caller should increment
	// instead.
	PushItem(ctx context.Context, cartID primitive.ObjectID, item models.ShopcartItem) error
	SetItemQuantity(ctx context.Context, cartID, itemID primitive.ObjectID, quantity int) error
	PullItem(ctx context.Context, cartID, itemID primitive.ObjectID) error
}
