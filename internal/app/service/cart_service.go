package service

import (
	"errors"
	"math"

	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/internal/app/repository"
	"github.com/petmarket/petmarket-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartNotFound = errors.New("cart not found")
)

// VAT is included in catalog prices, not added on top. 5.5% (food rate).
const vatRate = 0.055

// Free shipping above this subtotal, flat fee below or at it. Euros/cents.
const (
	freeShippingAboveCents = 5000
	shippingFlatCents      = 500
)

// ProductLookup resolves a product id for display. Aggregation treats a
// failed lookup as a missing product, never as a fatal error.
type ProductLookup func(productID string) (*model.Product, error)

// DisplayItem is one aggregated cart line: all raw rows sharing a product
// collapsed into a single quantity. RepresentativeItemID is the id of the
// first raw row encountered for the product; a decrement deletes exactly
// that row.
type DisplayItem struct {
	RepresentativeItemID uint          `json:"representative_item_id"`
	Product              model.Product `json:"product"`
	Quantity             int           `json:"quantity"`
}

type CartTotals struct {
	Subtotal float64 `json:"subtotal"`
	VAT      float64 `json:"vat"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// AggregateItems groups raw cart rows by product id, in first-occurrence
// order. Quantities are summed per product; the representative id stays
// pinned to the first row seen. Products that fail to resolve get a
// placeholder record so one bad reference cannot blank the whole cart.
func AggregateItems(items []model.CartItem, lookup ProductLookup) []DisplayItem {
	if len(items) == 0 {
		return []DisplayItem{}
	}

	type group struct {
		quantity         int
		representativeID uint
	}
	grouped := make(map[string]*group)
	var order []string

	for _, item := range items {
		g, ok := grouped[item.ProductID]
		if !ok {
			g = &group{representativeID: item.ID}
			grouped[item.ProductID] = g
			order = append(order, item.ProductID)
		}
		g.quantity += item.Quantity
	}

	display := make([]DisplayItem, 0, len(order))
	for _, productID := range order {
		g := grouped[productID]
		product := placeholderProduct(productID)
		if lookup != nil {
			if p, err := lookup(productID); err == nil && p != nil {
				product = *p
			} else if err != nil {
				logger.Warn("Product lookup failed during cart aggregation, using placeholder", map[string]interface{}{
					"product_id": productID,
					"error":      err.Error(),
				})
			}
		}
		display = append(display, DisplayItem{
			RepresentativeItemID: g.representativeID,
			Product:              product,
			Quantity:             g.quantity,
		})
	}
	return display
}

func placeholderProduct(productID string) model.Product {
	return model.Product{
		ID:       productID,
		Name:     "Produit",
		Price:    0,
		Category: "",
		Image:    "",
	}
}

// ComputeTotals derives subtotal, included-VAT portion, shipping and
// total from aggregated lines. All arithmetic runs in integer cents,
// rounding half away from zero, to keep the figures float-drift free.
func ComputeTotals(items []DisplayItem) CartTotals {
	var subtotalCents int64
	for _, item := range items {
		subtotalCents += toCents(item.Product.Price) * int64(item.Quantity)
	}

	// VAT portion included in the subtotal: subtotal * rate / (1 + rate).
	vatCents := int64(math.Round(float64(subtotalCents) * vatRate / (1 + vatRate)))

	var shippingCents int64 = shippingFlatCents
	if subtotalCents > freeShippingAboveCents {
		shippingCents = 0
	}

	return CartTotals{
		Subtotal: fromCents(subtotalCents),
		VAT:      fromCents(vatCents),
		Shipping: fromCents(shippingCents),
		Total:    fromCents(subtotalCents + shippingCents),
	}
}

func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}

type CartService interface {
	CreateCart(userID uint) (*model.Cart, error)
	GetUserCart(userID uint) (*model.Cart, []model.CartItem, error)
	ListUserCarts(userID uint) ([]model.CartWithCount, error)
	GetCart(cartID uint) (*model.Cart, []model.CartItem, error)
	DeleteCart(cartID uint) error
	AddItem(cartID uint, productID string, quantity int, metadata *string) (*model.CartItem, error)
	RemoveItem(cartID, itemID uint) error
	Summary(cartID uint) ([]DisplayItem, CartTotals, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) CreateCart(userID uint) (*model.Cart, error) {
	logger.Info("Creating cart", map[string]interface{}{
		"user_id": userID,
	})

	cart := &model.Cart{UserID: userID}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, err
	}

	logger.Info("Cart created successfully", map[string]interface{}{
		"cart_id": cart.ID,
		"user_id": userID,
	})
	return cart, nil
}

// GetUserCart returns the user's most recently updated cart with its raw
// items. A user without a cart gets (nil, empty, nil) rather than an error.
func (s *cartService) GetUserCart(userID uint) (*model.Cart, []model.CartItem, error) {
	cart, err := s.cartRepo.FindLatestByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, []model.CartItem{}, nil
		}
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, nil, err
	}

	items, err := s.cartRepo.FindItems(cart.ID)
	if err != nil {
		return nil, nil, err
	}
	return cart, items, nil
}

func (s *cartService) ListUserCarts(userID uint) ([]model.CartWithCount, error) {
	carts, err := s.cartRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	if carts == nil {
		carts = []model.CartWithCount{}
	}
	return carts, nil
}

func (s *cartService) GetCart(cartID uint) (*model.Cart, []model.CartItem, error) {
	cart, err := s.cartRepo.FindByID(cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCartNotFound
		}
		return nil, nil, err
	}

	items, err := s.cartRepo.FindItems(cartID)
	if err != nil {
		return nil, nil, err
	}
	return cart, items, nil
}

func (s *cartService) DeleteCart(cartID uint) error {
	logger.Info("Deleting cart", map[string]interface{}{
		"cart_id": cartID,
	})

	if err := s.cartRepo.DeleteCascade(cartID); err != nil {
		logger.Error("Failed to delete cart", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}

	logger.Info("Cart deleted", map[string]interface{}{
		"cart_id": cartID,
	})
	return nil
}

// AddItem inserts a new raw row. Deliberately no upsert: repeated adds of
// the same product pile up rows that the aggregator merges at read time.
func (s *cartService) AddItem(cartID uint, productID string, quantity int, metadata *string) (*model.CartItem, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if _, err := s.cartRepo.FindByID(cartID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}

	item := &model.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		Metadata:  metadata,
	}
	if err := s.cartRepo.CreateItem(item); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Touch(cartID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *cartService) RemoveItem(cartID, itemID uint) error {
	logger.Info("Removing cart item", map[string]interface{}{
		"cart_id":      cartID,
		"cart_item_id": itemID,
	})

	if err := s.cartRepo.DeleteItem(cartID, itemID); err != nil {
		return err
	}
	return s.cartRepo.Touch(cartID)
}

// Summary aggregates the cart's raw rows into display lines and totals.
func (s *cartService) Summary(cartID uint) ([]DisplayItem, CartTotals, error) {
	_, items, err := s.GetCart(cartID)
	if err != nil {
		return nil, CartTotals{}, err
	}

	display := AggregateItems(items, s.productRepo.FindByID)
	return display, ComputeTotals(display), nil
}
