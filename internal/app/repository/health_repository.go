package repository

import (
	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/pkg/logger"
	"gorm.io/gorm"
)

type HealthRepository interface {
	Create(check *model.HealthCheck) error
	FindRecent(serviceName string, limit int) ([]model.HealthCheck, error)
}

type healthRepository struct {
	db *gorm.DB
}

func NewHealthRepository(db *gorm.DB) HealthRepository {
	return &healthRepository{db: db}
}

// Create appends one probe outcome. The log is append-only.
func (r *healthRepository) Create(check *model.HealthCheck) error {
	if err := r.db.Create(check).Error; err != nil {
		logger.Error("Failed to record health check in database", err, map[string]interface{}{
			"service": check.ServiceName,
		})
		return err
	}
	return nil
}

// FindRecent returns the newest rows first, optionally filtered by
// service name, bounded by limit.
func (r *healthRepository) FindRecent(serviceName string, limit int) ([]model.HealthCheck, error) {
	query := r.db.Order("checked_at DESC, id DESC").Limit(limit)
	if serviceName != "" {
		query = query.Where("service_name = ?", serviceName)
	}

	var checks []model.HealthCheck
	if err := query.Find(&checks).Error; err != nil {
		logger.Error("Failed to read health history from database", err, map[string]interface{}{
			"service": serviceName,
			"limit":   limit,
		})
		return nil, err
	}
	return checks, nil
}
