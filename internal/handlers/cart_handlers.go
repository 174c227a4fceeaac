package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ecomstore/storefront-api/internal/middleware"
	"github.com/ecomstore/storefront-api/internal/models"
	"github.com/ecomstore/storefront-api/internal/store"
)

//
// --- Shopcart Handlers ---
//

// createCartForUser creates an empty shopcart owned by the user and points
// the user's shopcart reference at it. The unique index on the cart's
// owner field makes sure a concurrent call cannot produce a second cart;
// the loser of that race gets store.ErrDuplicateCart.
func (h *Handlers) createCartForUser(ctx context.Context, user *models.User) (*models.Shopcart, error) {
	if user.ShopcartID != nil {
		return nil, store.ErrDuplicateCart
	}

	cart := &models.Shopcart{
		UserID: user.ID,
		Items:  []models.ShopcartItem{},
	}
	if err := h.Carts.Create(ctx, cart); err != nil {
		return nil, err
	}

	if err := h.Users.SetShopcart(ctx, user.ID, &cart.ID); err != nil {
		return nil, err
	}
	return cart, nil
}

// ListShopcarts is the handler for GET /shopcarts. Unauthenticated,
// returns every cart with its owner resolved; debug-shaped, no pagination.
func (h *Handlers) ListShopcarts(c *gin.Context) {
	ctx := c.Request.Context()

	carts, err := h.Carts.ListAll(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to list shopcarts")
		return
	}

	for i := range carts {
		owner, err := h.Users.GetByID(ctx, carts[i].UserID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusInternalServerError, "Database error")
			return
		}
		carts[i].User = owner
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"count":     len(carts),
		"shopcarts": carts,
	})
}

// CreateShopcart is the handler for POST /shopcarts. A user gets at most
// one cart; asking again returns the existing one with a 400 so callers
// can discover it idempotently.
func (h *Handlers) CreateShopcart(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := h.Users.GetByID(ctx, middleware.CallerID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	cart, err := h.createCartForUser(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateCart) {
			existing, lookupErr := h.Carts.GetByUser(ctx, user.ID)
			if lookupErr != nil {
				fail(c, http.StatusInternalServerError, "Database error")
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"success":  false,
				"message":  "User already has a shopcart",
				"shopcart": existing,
			})
			return
		}
		fail(c, http.StatusInternalServerError, "Failed to create shopcart")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Shopcart created and assigned to user successfully",
		"shopcart": cart,
	})
}

// GetShopcart is the handler for GET /shopcarts/:id. No ownership check:
// anyone who knows a cart's identifier may read it.
func (h *Handlers) GetShopcart(c *gin.Context) {
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

	if err := h.populateCartOwner(ctx, cart); err != nil {
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}
	if err := h.populateCartProducts(ctx, cart); err != nil {
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"shopcart": cart,
	})
}

// UpdateShopcart is the handler for PUT /shopcarts/:id. Only non-item
// metadata is merged: the items array has its own endpoints and the owner
// reference is immutable.
func (h *Handlers) UpdateShopcart(c *gin.Context) {
	cartID, ok := parseObjectID(c, c.Param("id"))
	if !ok {
		return
	}

	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input")
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

	fields := bson.M{}
	for key, value := range patch {
		if !updatableCartField(key) {
			continue
		}
		fields[key] = value
	}

	if err := h.Carts.UpdateFields(ctx, cartID, fields); err != nil {
		fail(c, http.StatusInternalServerError, "Failed to update shopcart")
		return
	}

	updated, err := h.Carts.GetByID(ctx, cartID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Shopcart updated successfully",
		"shopcart": updated,
	})
}

// DeleteShopcart is the handler for DELETE /shopcarts/:id. The owning
// user's cart reference is cleared as well, so no dangling reference is
// left behind.
func (h *Handlers) DeleteShopcart(c *gin.Context) {
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

	if !cart.OwnedBy(middleware.CallerID(c)) {
		fail(c, http.StatusForbidden, "Unauthorized access")
		return
	}

	if err := h.Carts.Delete(ctx, cartID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Shopcart not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Failed to delete shopcart")
		return
	}

	if err := h.Users.SetShopcart(ctx, cart.UserID, nil); err != nil && !errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusInternalServerError, "Failed to clear user's shopcart reference")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Shopcart deleted successfully",
	})
}

// updatableCartField reports whether a metadata patch key may reach the
// store. A dotted key is a Mongo path into the document and a '$' prefix
// is an update operator; either could reach into the items array or the
// owner reference, so only plain top-level keys outside the protected
// set pass.
func updatableCartField(key string) bool {
	if strings.Contains(key, ".") || strings.HasPrefix(key, "$") {
		return false
	}
	switch key {
	case "items", "user", "_id", "id", "createdAt":
		return false
	}
	return true
}

// populateCartOwner resolves the cart's owner reference. A missing owner
// leaves the field nil rather than failing the read.
func (h *Handlers) populateCartOwner(ctx context.Context, cart *models.Shopcart) error {
	owner, err := h.Users.GetByID(ctx, cart.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	cart.User = owner
	return nil
}

// populateCartProducts resolves every item's product reference with a
// single batched lookup.
func (h *Handlers) populateCartProducts(ctx context.Context, cart *models.Shopcart) error {
	if len(cart.Items) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for i := range cart.Items {
		ids = append(ids, cart.Items[i].ProductID)
	}

	products, err := h.Products.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for i := range cart.Items {
		cart.Items[i].Product = products[cart.Items[i].ProductID]
	}
	return nil
}
