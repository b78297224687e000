package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/internal/app/repository"
	"github.com/petmarket/petmarket-backend/internal/app/service"
	"github.com/petmarket/petmarket-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartControllerTest(t *testing.T) (*gin.Engine, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := service.NewCartService(cartRepo, productRepo)
	cartController := NewCartController(cartService)

	product := &model.Product{Name: "Croquettes", Price: 25.00}
	require.NoError(t, productRepo.Create(product))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	carts := router.Group("/api/carts")
	{
		carts.POST("", cartController.Create)
		carts.GET("", cartController.GetUserCart)
		carts.GET("/list", cartController.ListUserCarts)
		carts.GET("/:cartId", cartController.Get)
		carts.DELETE("/:cartId", cartController.Delete)
		carts.GET("/:cartId/summary", cartController.Summary)
		carts.POST("/:cartId/items", cartController.AddItem)
		carts.DELETE("/:cartId/items/:itemId", cartController.RemoveItem)
	}

	return router, product
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createCart(t *testing.T, router *gin.Engine, userID uint) uint {
	w := doJSON(router, http.MethodPost, "/api/carts", gin.H{"user_id": userID})
	require.Equal(t, http.StatusOK, w.Code)

	// The created cart row comes back bare, not wrapped.
	var cart model.Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	require.NotZero(t, cart.ID)
	require.Equal(t, userID, cart.UserID)
	return cart.ID
}

func TestCartController_Create_RequiresUserID(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := doJSON(router, http.MethodPost, "/api/carts", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "user_id required")
}

func TestCartController_GetUserCart_RequiresUserID(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := doJSON(router, http.MethodGet, "/api/carts", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartController_GetUserCart_EmptyUser(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := doJSON(router, http.MethodGet, "/api/carts?user_id=42", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp["cart"])
	assert.Empty(t, resp["items"])
}

func TestCartController_GetCart_NotFound(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := doJSON(router, http.MethodGet, "/api/carts/999", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "CART_NOT_FOUND")
}

func TestCartController_AddItem_And_Summary(t *testing.T) {
	router, product := setupCartControllerTest(t)
	cartID := createCart(t, router, 1)

	for i := 0; i < 2; i++ {
		w := doJSON(router, http.MethodPost, fmt.Sprintf("/api/carts/%d/items", cartID), gin.H{
			"product_id": product.ID,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var item model.CartItem
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
		assert.NotZero(t, item.ID)
		assert.Equal(t, product.ID, item.ProductID)
	}

	w := doJSON(router, http.MethodGet, fmt.Sprintf("/api/carts/%d/summary", cartID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []struct {
			Quantity int `json:"quantity"`
			Product  struct {
				Name string `json:"name"`
			} `json:"product"`
		} `json:"items"`
		Totals struct {
			Subtotal float64 `json:"subtotal"`
			VAT      float64 `json:"vat"`
			Shipping float64 `json:"shipping"`
			Total    float64 `json:"total"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.Equal(t, "Croquettes", resp.Items[0].Product.Name)
	assert.Equal(t, 50.00, resp.Totals.Subtotal)
	assert.Equal(t, 5.00, resp.Totals.Shipping)
	assert.Equal(t, 55.00, resp.Totals.Total)
}

func TestCartController_AddItem_UnknownCart(t *testing.T) {
	router, product := setupCartControllerTest(t)

	w := doJSON(router, http.MethodPost, "/api/carts/999/items", gin.H{
		"product_id": product.ID,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartController_RemoveItem(t *testing.T) {
	router, product := setupCartControllerTest(t)
	cartID := createCart(t, router, 1)

	w := doJSON(router, http.MethodPost, fmt.Sprintf("/api/carts/%d/items", cartID), gin.H{
		"product_id": product.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var added model.CartItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &added))

	w = doJSON(router, http.MethodDelete, fmt.Sprintf("/api/carts/%d/items/%d", cartID, added.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/carts/%d", cartID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var getResp struct {
		Items []model.CartItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &getResp))
	assert.Empty(t, getResp.Items)
}

func TestCartController_Delete(t *testing.T) {
	router, product := setupCartControllerTest(t)
	cartID := createCart(t, router, 1)

	w := doJSON(router, http.MethodPost, fmt.Sprintf("/api/carts/%d/items", cartID), gin.H{
		"product_id": product.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodDelete, fmt.Sprintf("/api/carts/%d", cartID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/carts/%d", cartID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartController_ListUserCarts(t *testing.T) {
	router, product := setupCartControllerTest(t)
	cartID := createCart(t, router, 3)
	createCart(t, router, 3)

	w := doJSON(router, http.MethodPost, fmt.Sprintf("/api/carts/%d/items", cartID), gin.H{
		"product_id": product.ID,
		"quantity":   4,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/carts/list?user_id=3", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Carts []model.CartWithCount `json:"carts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Carts, 2)

	counts := map[uint]int64{}
	for _, c := range resp.Carts {
		counts[c.ID] = c.ItemCount
	}
	assert.Equal(t, int64(4), counts[cartID])
}
