package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ecomstore/storefront-api/internal/handlers"
	"github.com/ecomstore/storefront-api/internal/middleware"
)

// SetupRouter wires every endpoint to its handler. Reads of carts and
// items are public; everything that mutates a cart, plus /users/me, sits
// behind the bearer-token middleware.
func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	authRequired := middleware.Auth(h.Tokens)

	// --- Ping Route (Public) ---
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Storefront API is running")
	})

	// --- Auth Routes (Public) ---
	router.POST("/users", h.Register)
	router.POST("/sessions", h.Login)
	router.GET("/users/me", authRequired, h.Me)

	// --- Product Routes ---
	router.POST("/products", h.CreateProduct)
	router.GET("/products", h.ListProducts)
	router.GET("/products/:id", h.GetProduct)
	router.PUT("/products/:id", h.UpdateProduct)
	router.DELETE("/products/:id", h.DeleteProduct)

	// --- Shopcart Routes ---
	router.GET("/shopcarts", h.ListShopcarts)
	router.POST("/shopcarts", authRequired, h.CreateShopcart)
	router.GET("/shopcarts/:id", h.GetShopcart)
	router.PUT("/shopcarts/:id", authRequired, h.UpdateShopcart)
	router.DELETE("/shopcarts/:id", authRequired, h.DeleteShopcart)

	// --- Shopcart Item Routes ---
	router.GET("/shopcarts/:id/items", h.ListItems)
	router.POST("/shopcarts/:id/items", authRequired, h.AddItem)
	router.GET("/shopcarts/:id/items/:itemId", h.GetItem)
	router.PUT("/shopcarts/:id/items/:itemId", authRequired, h.UpdateItem)
	router.DELETE("/shopcarts/:id/items/:itemId", authRequired, h.RemoveItem)

	return router
}
