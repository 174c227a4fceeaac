package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ecomstore/storefront-api/internal/auth"
	"github.com/ecomstore/storefront-api/internal/store"
)

// Handlers holds all dependencies for our handlers.
type Handlers struct {
	Users    store.UserStore
	Products store.ProductStore
	Carts    store.CartStore
	Tokens   *auth.TokenCodec
}

// fail writes the standard failure envelope.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// parseObjectID validates an externally supplied identifier before any
// store lookup happens. On a malformed value it answers 400 itself and
// returns false; the caller must bail out without touching the store.
func parseObjectID(c *gin.Context, raw string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid ID format")
		return primitive.NilObjectID, false
	}
	return oid, true
}
