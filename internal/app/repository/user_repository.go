package repository

import (
	"errors"

	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByGoogleIDOrEmail(googleID, email string) (*model.User, error)
	Update(user *model.User) error
	CreateLoginLog(log *model.LoginLog) error
	FindLogsByUserID(userID uint, limit int) ([]model.LoginLog, error)
	FindAddressByUserID(userID uint) (*model.Address, error)
	SaveAddress(address *model.Address) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email":    user.Email,
		"username": user.Username,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByGoogleIDOrEmail matches a Google sign-in either to a previously
// linked account or to an existing password account with the same email.
func (r *userRepository) FindByGoogleIDOrEmail(googleID, email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("google_id = ? OR email = ?", googleID, email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *model.User) error {
	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

func (r *userRepository) CreateLoginLog(log *model.LoginLog) error {
	if err := r.db.Create(log).Error; err != nil {
		logger.Error("Failed to create login log in database", err, map[string]interface{}{
			"user_id": log.UserID,
			"event":   log.Event,
		})
		return err
	}
	return nil
}

func (r *userRepository) FindLogsByUserID(userID uint, limit int) ([]model.LoginLog, error) {
	var logs []model.LoginLog
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		logger.Error("Failed to find login logs in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return logs, nil
}

func (r *userRepository) FindAddressByUserID(userID uint) (*model.Address, error) {
	var address model.Address
	err := r.db.Where("user_id = ?", userID).First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// SaveAddress creates or replaces the user's address. Check-then-write
// without a transaction: concurrent saves for the same user are
// last-write-wins, as in the rest of the profile endpoints.
func (r *userRepository) SaveAddress(address *model.Address) error {
	var existing model.Address
	err := r.db.Where("user_id = ?", address.UserID).First(&existing).Error
	if err == nil {
		address.ID = existing.ID
		address.CreatedAt = existing.CreatedAt
		return r.db.Save(address).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.Create(address).Error
}
