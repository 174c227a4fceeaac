package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ecomstore/storefront-api/internal/middleware"
	"github.com/ecomstore/storefront-api/internal/models"
	"github.com/ecomstore/storefront-api/internal/store"
)

//
// --- Shopcart Item Handlers ---
//

// ListItems is the handler for GET /shopcarts/:id/items. Unauthenticated
// read with product references resolved.
func (h *Handlers) ListItems(c *gin.Context) {
	cartID, ok := parseObjectID(c, c.Param("id"))
	if !ok {
		return
	}

	ctx := c.Request.Context()

	cart, err := h.Carts.GetByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Shopcart not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	if err := h.populateCartProducts(ctx, cart); err != nil {
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"items":   cart.Items,
	})
}

// AddItemInput holds the payload for POST /shopcarts/:id/items.
type AddItemInput struct {
	ProductID string `json:"productId" binding:"required"`
}

// AddItem is the handler for POST /shopcarts/:id/items. One line item per
// distinct product: adding a product already in the cart bumps its
// quantity by exactly one, otherwise a new item is appended with
// quantity 1. The product must exist before the cart is touched.
func (h *Handlers) AddItem(c *gin.Context) {
	var input AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Product ID is required")
		return
	}

	cartID, ok := parseObjectID(c, c.Param("id"))
	if !ok {
		return
	}
	productID, ok := parseObjectID(c, input.ProductID)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	cart, err := h.Carts.GetByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Shopcart not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	if !cart.OwnedBy(middleware.CallerID(c)) {
		fail(c, http.StatusForbidden, "Unauthorized access")
		return
	}

	if _, err := h.Products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Product not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	// Merge policy: $inc the existing line item, else a guarded push.
	// Losing the push guard means a concurrent add created the line item
	// between the two calls; fold this request into it.
	merged, err := h.Carts.IncrementItem(ctx, cartID, productID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to update shopcart")
		return
	}
	if !merged {
		item := models.ShopcartItem{
			ID:        primitive.NewObjectID(),
			ProductID: productID,
			Quantity:  1,
		}
		err := h.Carts.PushItem(ctx, cartID, item)
		if errors.Is(err, store.ErrDuplicateItem) {
			merged, err = h.Carts.IncrementItem(ctx, cartID, productID)
		}
		if err != nil {
			fail(c, http.StatusInternalServerError, "Failed to update shopcart")
			return
		}
	}

	updated, err := h.loadPopulatedCart(c, cartID)
	if err != nil {
		return
	}

	message := "Item added to shopcart"
	if merged {
		message = "Item quantity increased by one"
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  message,
		"shopcart": updated,
	})
}

// GetItem is the handler for GET /shopcarts/:id/items/:itemId.
func (h *Handlers) GetItem(c *gin.Context) {
	cartID, ok := parseObjectID(c, c.Param("id"))
	if !ok {
		return
	}
	itemID, ok := parseObjectID(c, c.Param("itemId"))
	if !ok {
		return
	}

	ctx := c.Request.Context()

	cart, err := h.Carts.GetByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Shopcart not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	idx := cart.FindItem(itemID)
	if idx < 0 {
		fail(c, http.StatusNotFound, "Item not found in shopcart")
		return
	}

	if err := h.populateCartProducts(ctx, cart); err != nil {
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"item":    cart.Items[idx],
	})
}

// UpdateItemInput holds the payload for PUT /shopcarts/:id/items/:itemId.
// A pointer keeps "quantity absent" distinguishable from "quantity 0";
// the value itself is stored verbatim.
type UpdateItemInput struct {
	Quantity *int `json:"quantity"`
}

// UpdateItem is the handler for PUT /shopcarts/:id/items/:itemId.
func (h *Handlers) UpdateItem(c *gin.Context) {
	var input UpdateItemInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Quantity == nil {
		fail(c, http.StatusBadRequest, "Quantity is required")
		return
	}

	cartID, ok := parseObjectID(c, c.Param("id"))
	if !ok {
		return
	}
	itemID, ok := parseObjectID(c, c.Param("itemId"))
	if !ok {
		return
	}

	ctx := c.Request.Context()

	cart, err := h.Carts.GetByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Shopcart not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	if !cart.OwnedBy(middleware.CallerID(c)) {
		fail(c, http.StatusForbidden, "Unauthorized access")
		return
	}

	if err := h.Carts.SetItemQuantity(ctx, cartID, itemID, *input.Quantity); err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			fail(c, http.StatusNotFound, "Item not found in shopcart")
			return
		}
		fail(c, http.StatusInternalServerError, "Failed to update shopcart item")
		return
	}

	updated, err := h.loadPopulatedCart(c, cartID)
	if err != nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Shopcart item updated",
		"shopcart": updated,
	})
}

// RemoveItem is the handler for DELETE /shopcarts/:id/items/:itemId.
func (h *Handlers) RemoveItem(c *gin.Context) {
	cartID, ok := parseObjectID(c, c.Param("id"))
	if !ok {
		return
	}
	itemID, ok := parseObjectID(c, c.Param("itemId"))
	if !ok {
		return
	}

	ctx := c.Request.Context()

	cart, err := h.Carts.GetByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Shopcart not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	if !cart.OwnedBy(middleware.CallerID(c)) {
		fail(c, http.StatusForbidden, "Unauthorized access")
		return
	}

	if err := h.Carts.PullItem(ctx, cartID, itemID); err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			fail(c, http.StatusNotFound, "Item not found in shopcart")
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Shopcart not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Failed to delete shopcart item")
		return
	}

	updated, err := h.loadPopulatedCart(c, cartID)
	if err != nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Shopcart item deleted",
		"shopcart": updated,
	})
}

// loadPopulatedCart re-reads a cart after a mutation and resolves its
// product references. On error it has already answered the client.
func (h *Handlers) loadPopulatedCart(c *gin.Context, cartID primitive.ObjectID) (*models.Shopcart, error) {
	ctx := c.Request.Context()

	cart, err := h.Carts.GetByID(ctx, cartID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Database error")
		return nil, err
	}
	if err := h.populateCartProducts(ctx, cart); err != nil {
		fail(c, http.StatusInternalServerError, "Database error")
		return nil, err
	}
	return cart, nil
}
