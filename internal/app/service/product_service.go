package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/internal/app/repository"
	"github.com/petmarket/petmarket-backend/pkg/logger"
	"github.com/petmarket/petmarket-backend/pkg/redis"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

const (
	defaultRandomCount = 3
	productCacheTTL    = 10 * time.Minute
)

type CreateProductInput struct {
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"required"`
	Image    string  `json:"image"`
	Origin   string  `json:"origin"`
	Weight   float64 `json:"weight"`
	Category string  `json:"category"`
	Animal   string  `json:"animal"`
}

type ProductService interface {
	ListProducts() ([]model.Product, error)
	RandomProducts(count int) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	CreateProduct(input CreateProductInput) (*model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	cache       *goredis.Client
}

// NewProductService builds the product service. cache may be nil, in
// which case every read goes to the database.
func NewProductService(productRepo repository.ProductRepository, cache *goredis.Client) ProductService {
	return &productService{
		productRepo: productRepo,
		cache:       cache,
	}
}

func (s *productService) ListProducts() ([]model.Product, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func (s *productService) RandomProducts(count int) ([]model.Product, error) {
	if count <= 0 {
		count = defaultRandomCount
	}

	products, err := s.productRepo.FindRandom(count)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// GetProduct reads through the cache when one is configured. Cache
// failures fall back to the database and are only logged.
func (s *productService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if s.cache != nil {
		payload, err := redis.CachedProduct(ctx, s.cache, id)
		if err == nil {
			var cached model.Product
			if err := json.Unmarshal(payload, &cached); err == nil {
				return &cached, nil
			}
			logger.Warn("Discarding unreadable product cache entry", map[string]interface{}{
				"product_id": id,
			})
		} else if !errors.Is(err, redis.ErrCacheMiss) {
			logger.Warn("Product cache read failed, falling back to database", map[string]interface{}{
				"product_id": id,
				"error":      err.Error(),
			})
		}
	}

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(product); err == nil {
			_ = redis.CacheProduct(ctx, s.cache, id, payload, productCacheTTL)
		}
	}
	return product, nil
}

func (s *productService) CreateProduct(input CreateProductInput) (*model.Product, error) {
	logger.Info("Creating product", map[string]interface{}{
		"name":  input.Name,
		"price": input.Price,
	})

	product := &model.Product{
		Name:     input.Name,
		Price:    input.Price,
		Image:    input.Image,
		Origin:   input.Origin,
		Weight:   input.Weight,
		Category: input.Category,
		Animal:   input.Animal,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	logger.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
	})
	return product, nil
}
