package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ecomstore/storefront-api/internal/auth"
	"github.com/ecomstore/storefront-api/internal/handlers"
	"github.com/ecomstore/storefront-api/internal/models"
	"github.com/ecomstore/storefront-api/internal/routes"
	"github.com/ecomstore/storefront-api/internal/store"
)

const testSecret = "test-secret"

//
// --- In-memory fakes ---
//
// Every method bumps calls so tests can assert that malformed input is
// rejected before the store is touched.

type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
	calls int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.calls++
	for _, u := range f.users {
		if u.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	user.ID = primitive.NewObjectID()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.calls++
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.calls++
	for _, u := range f.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) SetShopcart(_ context.Context, userID primitive.ObjectID, cartID *primitive.ObjectID) error {
	f.calls++
	user, ok := f.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	user.ShopcartID = cartID
	return nil
}

type fakeProductStore struct {
	products map[primitive.ObjectID]*models.Product
	calls    int
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[primitive.ObjectID]*models.Product{}}
}

func (f *fakeProductStore) Create(_ context.Context, product *models.Product) error {
	f.calls++
	product.ID = primitive.NewObjectID()
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	f.calls++
	product, ok := f.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copy := *product
	return &copy, nil
}

func (f *fakeProductStore) GetByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	f.calls++
	result := map[primitive.ObjectID]*models.Product{}
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			copy := *product
			result[id] = &copy
		}
	}
	return result, nil
}

func (f *fakeProductStore) List(_ context.Context, opts store.ProductListOptions) ([]models.Product, error) {
	f.calls++
	products := []models.Product{}
	for _, p := range f.products {
		if opts.Category != "" && p.Category != opts.Category {
			continue
		}
		products = append(products, *p)
	}
	if opts.Limit > 0 && int64(len(products)) > opts.Limit {
		products = products[:opts.Limit]
	}
	return products, nil
}

func (f *fakeProductStore) Update(_ context.Context, id primitive.ObjectID, patch bson.M) (*models.Product, error) {
	f.calls++
	product, ok := f.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if name, ok := patch["name"].(string); ok {
		product.Name = name
	}
	if price, ok := patch["new_price"].(float64); ok {
		product.NewPrice = price
	}
	copy := *product
	return &copy, nil
}

func (f *fakeProductStore) Delete(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	f.calls++
	product, ok := f.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(f.products, id)
	return product, nil
}

type fakeCartStore struct {
	carts map[primitive.ObjectID]*models.Shopcart
	calls int
	// lastUpdate records the fields the most recent UpdateFields call
	// received, so tests can assert what the handler let through.
	lastUpdate bson.M
	// incrementMisses forces IncrementItem to report no match that many
	// times, simulating a first add racing in between two store calls.
	incrementMisses int
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[primitive.ObjectID]*models.Shopcart{}}
}

func (f *fakeCartStore) Create(_ context.Context, cart *models.Shopcart) error {
	f.calls++
	for _, c := range f.carts {
		if c.UserID == cart.UserID {
			return store.ErrDuplicateCart
		}
	}
	cart.ID = primitive.NewObjectID()
	if cart.Items == nil {
		cart.Items = []models.ShopcartItem{}
	}
	f.carts[cart.ID] = cart
	return nil
}

func (f *fakeCartStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Shopcart, error) {
	f.calls++
	cart, ok := f.carts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copy := *cart
	copy.Items = append([]models.ShopcartItem{}, cart.Items...)
	return &copy, nil
}

func (f *fakeCartStore) GetByUser(_ context.Context, userID primitive.ObjectID) (*models.Shopcart, error) {
	f.calls++
	for _, cart := range f.carts {
		if cart.UserID == userID {
			copy := *cart
			return &copy, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeCartStore) ListAll(_ context.Context) ([]models.Shopcart, error) {
	f.calls++
	carts := []models.Shopcart{}
	for _, cart := range f.carts {
		carts = append(carts, *cart)
	}
	return carts, nil
}

func (f *fakeCartStore) UpdateFields(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	f.calls++
	if _, ok := f.carts[id]; !ok {
		return store.ErrNotFound
	}
	// The metadata fields are schemaless; nothing on the typed model to
	// merge them into, which is exactly what the items-ignored tests need.
	f.lastUpdate = fields
	return nil
}

func (f *fakeCartStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.calls++
	if _, ok := f.carts[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.carts, id)
	return nil
}

func (f *fakeCartStore) IncrementItem(_ context.Context, cartID, productID primitive.ObjectID) (bool, error) {
	f.calls++
	if f.incrementMisses > 0 {
		f.incrementMisses--
		return false, nil
	}
	cart, ok := f.carts[cartID]
	if !ok {
		return false, nil
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity++
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCartStore) PushItem(_ context.Context, cartID primitive.ObjectID, item models.ShopcartItem) error {
	f.calls++
	cart, ok := f.carts[cartID]
	if !ok {
		return store.ErrNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == item.ProductID {
			return store.ErrDuplicateItem
		}
	}
	cart.Items = append(cart.Items, item)
	return nil
}

func (f *fakeCartStore) SetItemQuantity(_ context.Context, cartID, itemID primitive.ObjectID, quantity int) error {
	f.calls++
	cart, ok := f.carts[cartID]
	if !ok {
		return store.ErrItemNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			return nil
		}
	}
	return store.ErrItemNotFound
}

func (f *fakeCartStore) PullItem(_ context.Context, cartID, itemID primitive.ObjectID) error {
	f.calls++
	cart, ok := f.carts[cartID]
	if !ok {
		return store.ErrNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
	}
	return store.ErrItemNotFound
}

//
// --- Test harness ---
//

type testEnv struct {
	router   *gin.Engine
	users    *fakeUserStore
	products *fakeProductStore
	carts    *fakeCartStore
	codec    *auth.TokenCodec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		users:    newFakeUserStore(),
		products: newFakeProductStore(),
		carts:    newFakeCartStore(),
		codec:    auth.NewTokenCodec(testSecret),
	}
	env.router = routes.SetupRouter(&handlers.Handlers{
		Users:    env.users,
		Products: env.products,
		Carts:    env.carts,
		Tokens:   env.codec,
	})
	return env
}

// storeCalls is the total number of collaborator calls across all stores.
func (env *testEnv) storeCalls() int {
	return env.users.calls + env.products.calls + env.carts.calls
}

func (env *testEnv) resetCalls() {
	env.users.calls = 0
	env.products.calls = 0
	env.carts.calls = 0
}

// do performs a JSON request against the test router. An empty token
// means no Authorization header.
func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// registerUser runs a full registration through the API and returns the
// issued token plus the new user and cart IDs.
func (env *testEnv) registerUser(t *testing.T, username, email, password string) (token string, userID, cartID primitive.ObjectID) {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/users", "", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	token = body["token"].(string)

	user := body["user"].(map[string]interface{})
	userID, err := primitive.ObjectIDFromHex(user["id"].(string))
	require.NoError(t, err)
	cartID, err = primitive.ObjectIDFromHex(user["shopcartId"].(string))
	require.NoError(t, err)
	return token, userID, cartID
}

// seedProduct inserts a product directly into the fake store.
func (env *testEnv) seedProduct(t *testing.T, name string, newPrice, oldPrice float64) primitive.ObjectID {
	t.Helper()
	product := &models.Product{
		Name:      name,
		Image:     "/images/" + name + ".png",
		Category:  "test",
		NewPrice:  newPrice,
		OldPrice:  oldPrice,
		Available: true,
	}
	require.NoError(t, env.products.Create(context.Background(), product))
	return product.ID
}
