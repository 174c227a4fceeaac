package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_CreatesUserCartAndToken(t *testing.T) {
	env := newTestEnv(t)

	token, userID, cartID := env.registerUser(t, "alice", "a@x.com", "pass1234")

	// The stored user links to the cart and the cart links back.
	user := env.users.users[userID]
	require.NotNil(t, user)
	require.NotNil(t, user.ShopcartID)
	assert.Equal(t, cartID, *user.ShopcartID)
	assert.Equal(t, "alice", user.Username)

	cart := env.carts.carts[cartID]
	require.NotNil(t, cart)
	assert.Equal(t, userID, cart.UserID)
	assert.Empty(t, cart.Items)

	// The token decodes straight back to the registered user.
	decoded, err := env.codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID.Hex(), decoded)

	// The password is stored hashed and never serialized.
	assert.NotEqual(t, "pass1234", user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "pass1234")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice", "a@x.com", "pass1234")

	rec := env.do(t, http.MethodPost, "/users", "", gin.H{
		"username": "mallory",
		"email":    "a@x.com",
		"password": "other",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "User already exists", body["message"])

	// No second user record was created.
	assert.Len(t, env.users.users, 1)
}

func TestRegister_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/users", "", gin.H{"username": "alice"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.users.users)
}

func TestLogin_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	_, userID, _ := env.registerUser(t, "alice", "a@x.com", "pass1234")

	rec := env.do(t, http.MethodPost, "/sessions", "", gin.H{
		"email":    "a@x.com",
		"password": "pass1234",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	decoded, err := env.codec.Verify(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, userID.Hex(), decoded)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice", "a@x.com", "pass1234")

	rec := env.do(t, http.MethodPost, "/sessions", "", gin.H{
		"email":    "a@x.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid password", decodeBody(t, rec)["message"])
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/sessions", "", gin.H{
		"email":    "nobody@x.com",
		"password": "whatever",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User not found", decodeBody(t, rec)["message"])
}

func TestMe_ResolvesCart(t *testing.T) {
	env := newTestEnv(t)
	token, userID, cartID := env.registerUser(t, "alice", "a@x.com", "pass1234")

	rec := env.do(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, userID.Hex(), user["id"])

	cart := user["shopcart"].(map[string]interface{})
	assert.Equal(t, cartID.Hex(), cart["id"])

	// The password never leaks into a response.
	_, present := user["password"]
	assert.False(t, present)
}

func TestMe_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/users/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe_DeletedUser(t *testing.T) {
	env := newTestEnv(t)
	token, userID, _ := env.registerUser(t, "alice", "a@x.com", "pass1234")

	// A valid token for a user that no longer resolves.
	delete(env.users.users, userID)

	rec := env.do(t, http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
