package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shopcart is the document stored in the 'shopcarts' collection.
// The owner reference is set on creation and never reassigned; items are
// embedded in the document and cannot outlive it.
type Shopcart struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"user"`
	Items     []ShopcartItem     `json:"items" bson:"items"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`

	// Join (not in the document, populated manually at read time)
	User *User `json:"user,omitempty" bson:"-"`
}

// ShopcartItem is a line item embedded in a Shopcart document.
// One item per distinct product per cart; quantity is at least 1.
type ShopcartItem struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	ProductID primitive.ObjectID `json:"productId" bson:"product"`
	Quantity  int                `json:"quantity" bson:"quantity"`

	// Join (not in the document, populated manually at read time)
	Product *Product `json:"product,omitempty" bson:"-"`
}

// OwnedBy reports whether the cart belongs to the given user.
func (s *Shopcart) OwnedBy(userID primitive.ObjectID) bool {
	return s.UserID == userID
}

// FindItem returns the index of the item with the given id, or -1.
func (s *Shopcart) FindItem(itemID primitive.ObjectID) int {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// FindItemByProduct returns the index of the item referencing the given
// product, or -1.
func (s *Shopcart) FindItemByProduct(productID primitive.ObjectID) int {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
