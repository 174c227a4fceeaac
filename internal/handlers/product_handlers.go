package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ecomstore/storefront-api/internal/models"
	"github.com/ecomstore/storefront-api/internal/store"
)

// CreateProductInput holds the payload for POST /products.
type CreateProductInput struct {
	Name     string  `json:"name" binding:"required"`
	Image    string  `json:"image" binding:"required"`
	Category string  `json:"category" binding:"required"`
	NewPrice float64 `json:"new_price" binding:"required"`
	OldPrice float64 `json:"old_price" binding:"required"`
}

// CreateProduct is the handler for POST /products.
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Name, image, category, new_price and old_price are required")
		return
	}

	product := &models.Product{
		Name:      input.Name,
		Image:     input.Image,
		Category:  input.Category,
		NewPrice:  input.NewPrice,
		OldPrice:  input.OldPrice,
		Available: true,
	}

	if err := h.Products.Create(c.Request.Context(), product); err != nil {
		fail(c, http.StatusInternalServerError, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"product": product,
	})
}

// ListProducts is the handler for GET /products. It supports filtering by
// category, sorting by latest and a result limit (default 10).
func (h *Handlers) ListProducts(c *gin.Context) {
	opts := store.ProductListOptions{
		Category: c.Query("category"),
		Latest:   c.Query("sort") == "latest",
		Limit:    10,
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.ParseInt(raw, 10, 64); err == nil {
			opts.Limit = limit
		}
	}

	products, err := h.Products.List(c.Request.Context(), opts)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(products),
		"products": products,
	})
}

// GetProduct is the handler for GET /products/:id.
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := parseObjectID(c, c.Param("id"))
	if !ok {
		return
	}

	product, err := h.Products.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Product not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": product,
	})
}

// UpdateProductInput holds the patch for PUT /products/:id. Pointers keep
// absent fields distinguishable from zero values.
type UpdateProductInput struct {
	Name      *string  `json:"name"`
	Image     *string  `json:"image"`
	Category  *string  `json:"category"`
	NewPrice  *float64 `json:"new_price"`
	OldPrice  *float64 `json:"old_price"`
	Available *bool    `json:"available"`
}

// UpdateProduct is the handler for PUT /products/:id.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, ok := parseObjectID(c, c.Param("id"))
	if !ok {
		return
	}

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input")
		return
	}

	patch := bson.M{}
	if input.Name != nil {
		patch["name"] = *input.Name
	}
	if input.Image != nil {
		patch["image"] = *input.Image
	}
	if input.Category != nil {
		patch["category"] = *input.Category
	}
	if input.NewPrice != nil {
		patch["new_price"] = *input.NewPrice
	}
	if input.OldPrice != nil {
		patch["old_price"] = *input.OldPrice
	}
	if input.Available != nil {
		patch["available"] = *input.Available
	}

	product, err := h.Products.Update(c.Request.Context(), id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Product not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Product updated successfully",
		"updatedProduct": product,
	})
}

// DeleteProduct is the handler for DELETE /products/:id.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := parseObjectID(c, c.Param("id"))
	if !ok {
		return
	}

	product, err := h.Products.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Product not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Product deleted successfully",
		"deletedProduct": product,
	})
}
