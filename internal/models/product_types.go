package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the document stored in the 'products' collection.
// Field names mirror the storefront frontend contract (new_price is the
// current price, old_price the pre-discount one).
type Product struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Image     string             `json:"image" bson:"image"`
	Category  string             `json:"category" bson:"category"`
	NewPrice  float64            `json:"new_price" bson:"new_price"`
	OldPrice  float64            `json:"old_price" bson:"old_price"`
	Available bool               `json:"available" bson:"available"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
