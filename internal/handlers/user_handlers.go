package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecomstore/storefront-api/internal/middleware"
	"github.com/ecomstore/storefront-api/internal/models"
	"github.com/ecomstore/storefront-api/internal/store"
)

// RegisterUserInput holds the registration payload. Kept separate from
// models.User so a client cannot smuggle in an id or a cart reference.
type RegisterUserInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register is the handler for POST /users. It creates the user, then an
// empty shopcart owned by them, links the two, and issues a token.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	ctx := c.Request.Context()

	// Friendly pre-check; the unique index on email is the real guard.
	if _, err := h.Users.GetByEmail(ctx, input.Email); err == nil {
		fail(c, http.StatusBadRequest, "User already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		fail(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: password.Hash,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			fail(c, http.StatusBadRequest, "User already exists")
			return
		}
		fail(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	cart, err := h.createCartForUser(ctx, user)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to create shopcart")
		return
	}
	user.ShopcartID = &cart.ID

	token, err := h.Tokens.Issue(user.ID.Hex())
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"token":   token,
		"user":    user,
	})
}

// LoginInput holds the credentials for POST /sessions.
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /sessions.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx := c.Request.Context()

	user, err := h.Users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusBadRequest, "User not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to verify password")
		return
	}
	if !match {
		fail(c, http.StatusBadRequest, "Invalid password")
		return
	}

	token, err := h.Tokens.Issue(user.ID.Hex())
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User logged in successfully",
		"token":   token,
	})
}

// Me is the handler for GET /users/me. The token only proves who the
// caller was at issue time, so the user is looked up again here.
func (h *Handlers) Me(c *gin.Context) {
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

	// Resolve the owned cart reference, if any.
	if user.ShopcartID != nil {
		cart, err := h.Carts.GetByID(ctx, *user.ShopcartID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusInternalServerError, "Database error")
			return
		}
		user.Shopcart = cart
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}
