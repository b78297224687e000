package repository

import (
	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	Create(cart *model.Cart) error
	FindByID(id uint) (*model.Cart, error)
	FindLatestByUserID(userID uint) (*model.Cart, error)
	ListByUserID(userID uint) ([]model.CartWithCount, error)
	DeleteCascade(id uint) error
	CreateItem(item *model.CartItem) error
	FindItems(cartID uint) ([]model.CartItem, error)
	DeleteItem(cartID, itemID uint) error
	Touch(cartID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(cart *model.Cart) error {
	logger.Debug("Creating cart in database", map[string]interface{}{
		"user_id": cart.UserID,
	})

	if err := r.db.Create(cart).Error; err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"user_id": cart.UserID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) FindByID(id uint) (*model.Cart, error) {
	var cart model.Cart
	if err := r.db.First(&cart, id).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindLatestByUserID returns the most recently updated cart for a user.
func (r *cartRepository) FindLatestByUserID(userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// ListByUserID returns every cart owned by the user, newest first, each
// annotated with the sum of its item quantities.
func (r *cartRepository) ListByUserID(userID uint) ([]model.CartWithCount, error) {
	var carts []model.CartWithCount
	err := r.db.Model(&model.Cart{}).
		Select("carts.*, COALESCE(SUM(cart_items.quantity), 0) AS item_count").
		Joins("LEFT JOIN cart_items ON cart_items.cart_id = carts.id").
		Where("carts.user_id = ?", userID).
		Group("carts.id").
		Order("carts.updated_at DESC").
		Scan(&carts).Error
	if err != nil {
		logger.Error("Failed to list carts by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return carts, nil
}

// DeleteCascade removes a cart and all of its items in one transaction.
// Any failure rolls the whole deletion back.
func (r *cartRepository) DeleteCascade(id uint) error {
	logger.Debug("Deleting cart with items from database", map[string]interface{}{
		"cart_id": id,
	})

	tx := r.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Where("cart_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to delete cart items, rolled back", err, map[string]interface{}{
			"cart_id": id,
		})
		return err
	}
	if err := tx.Delete(&model.Cart{}, id).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to delete cart, rolled back", err, map[string]interface{}{
			"cart_id": id,
		})
		return err
	}
	return tx.Commit().Error
}

func (r *cartRepository) CreateItem(item *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"cart_id":    item.CartID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"cart_id":    item.CartID,
			"product_id": item.ProductID,
		})
		return err
	}
	return nil
}

// FindItems returns a cart's raw item rows in insertion order. The
// aggregator depends on this order for representative-id selection.
func (r *cartRepository) FindItems(cartID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find cart items in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) DeleteItem(cartID, itemID uint) error {
	logger.Debug("Deleting cart item from database", map[string]interface{}{
		"cart_id":      cartID,
		"cart_item_id": itemID,
	})

	err := r.db.Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&model.CartItem{}).Error
	if err != nil {
		logger.Error("Failed to delete cart item from database", err, map[string]interface{}{
			"cart_id":      cartID,
			"cart_item_id": itemID,
		})
		return err
	}
	return nil
}

// Touch bumps the cart's updated_at after an item mutation.
func (r *cartRepository) Touch(cartID uint) error {
	return r.db.Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}
