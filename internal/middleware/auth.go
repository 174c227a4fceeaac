package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ecomstore/storefront-api/internal/auth"
)

const userIDKey = "userID"

// Auth guards the routes that require a caller identity. It expects an
// "Authorization: Bearer <token>" header, verifies the token with the
// codec and stores the caller's user ID in the request context. It does
// not check that the user still exists; handlers that need that look the
// user up themselves.
func Auth(codec *auth.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Access token is missing",
			})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Access token is missing",
			})
			return
		}

		userHex, err := codec.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid token",
			})
			return
		}

		// The codec only vouches for the signature; the embedded ID still
		// has to be a well-formed ObjectID.
		userID, err := primitive.ObjectIDFromHex(userHex)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid token",
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// CallerID returns the authenticated user's ID set by Auth.
func CallerID(c *gin.Context) primitive.ObjectID {
	id, _ := c.Get(userIDKey)
	oid, _ := id.(primitive.ObjectID)
	return oid
}
