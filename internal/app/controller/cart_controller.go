package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/petmarket/petmarket-backend/internal/app/service"
	apperrors "github.com/petmarket/petmarket-backend/internal/errors"
	"github.com/petmarket/petmarket-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type CreateCartRequest struct {
	UserID uint `json:"user_id"`
}

type AddItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity"`
	Metadata  *string `json:"metadata"`
}

func parseCartID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("cartId"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "cartId must be a number")
		return 0, false
	}
	return uint(id), true
}

func parseUserID(c *gin.Context) (uint, bool) {
	raw := c.Query("user_id")
	if raw == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "user_id required")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "user_id must be a number")
		return 0, false
	}
	return uint(id), true
}

// Create opens a new cart for a user
// POST /api/carts
func (ctrl *CartController) Create(c *gin.Context) {
	var req CreateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "user_id required")
		return
	}

	cart, err := ctrl.cartService.CreateCart(req.UserID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// GetUserCart returns the user's latest cart with its raw items
// GET /api/carts?user_id=
func (ctrl *CartController) GetUserCart(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	cart, items, err := ctrl.cartService.GetUserCart(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart":  cart,
		"items": items,
	})
}

// ListUserCarts returns every cart of a user with aggregated item counts
// GET /api/carts/list?user_id=
func (ctrl *CartController) ListUserCarts(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	carts, err := ctrl.cartService.ListUserCarts(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"carts": carts})
}

// Get returns one cart by id with its raw items
// GET /api/carts/:cartId
func (ctrl *CartController) Get(c *gin.Context) {
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}

	cart, items, err := ctrl.cartService.GetCart(cartID)
	if err != nil {
		if errors.Is(err, service.ErrCartNotFound) {
			apperrors.NotFound(c, apperrors.CartNotFound, "Cart not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart":  cart,
		"items": items,
	})
}

// Delete removes a cart and all of its items
// DELETE /api/carts/:cartId
func (ctrl *CartController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cartID, ok := parseCartID(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.DeleteCart(cartID); err != nil {
		log.Error("Cart deletion failed", err, map[string]interface{}{
			"cart_id": cartID,
		})
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AddItem appends one item row to a cart
// POST /api/carts/:cartId/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	item, err := ctrl.cartService.AddItem(cartID, req.ProductID, req.Quantity, req.Metadata)
	if err != nil {
		if errors.Is(err, service.ErrCartNotFound) {
			apperrors.NotFound(c, apperrors.CartNotFound, "Cart not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, item)
}

// RemoveItem deletes one item row from a cart
// DELETE /api/carts/:cartId/items/:itemId
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}

	itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "itemId must be a number")
		return
	}

	if err := ctrl.cartService.RemoveItem(cartID, uint(itemID)); err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Summary returns aggregated display lines and totals for a cart
// GET /api/carts/:cartId/summary
func (ctrl *CartController) Summary(c *gin.Context) {
	cartID, ok := parseCartID(c)
	if !ok {
		return
	}

	items, totals, err := ctrl.cartService.Summary(cartID)
	if err != nil {
		if errors.Is(err, service.ErrCartNotFound) {
			apperrors.NotFound(c, apperrors.CartNotFound, "Cart not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  items,
		"totals": totals,
	})
}
