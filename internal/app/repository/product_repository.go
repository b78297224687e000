package repository

import (
	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindRandom(count int) ([]model.Product, error)
	FindByID(id string) (*model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":  product.Name,
		"price": product.Price,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}
	return nil
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Order("name ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to list products in database", err)
		return nil, err
	}
	return products, nil
}

// FindRandom returns up to count products in random order.
func (r *productRepository) FindRandom(count int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("RANDOM()").Limit(count).Find(&products).Error
	if err != nil {
		logger.Error("Failed to pick random products in database", err, map[string]interface{}{
			"count": count,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindByID(id string) (*model.Product, error) {
	var product model.Product
	err := r.db.Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}
