package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petmarket/petmarket-backend/internal/app/service"
	apperrors "github.com/petmarket/petmarket-backend/internal/errors"
	"github.com/petmarket/petmarket-backend/internal/middleware"
)

type UserController struct {
	authService service.AuthService
}

func NewUserController(authService service.AuthService) *UserController {
	return &UserController{
		authService: authService,
	}
}

type UpdateProfileRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Picture   *string `json:"picture"`
}

type AddressRequest struct {
	Line1      *string `json:"line1"`
	Line2      *string `json:"line2"`
	City       *string `json:"city"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
}

// GetProfile returns the authenticated user
// GET /api/users/me
func (ctrl *UserController) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.UserNotFound, "User not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile applies a partial profile update
// PUT /api/users/me
func (ctrl *UserController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid profile payload")
		return
	}

	user, err := ctrl.authService.UpdateProfile(userID, service.ProfileUpdate{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Picture:   req.Picture,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.UserNotFound, "User not found")
			return
		}
		log.Error("Profile update failed", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetLogs returns the user's recent login events
// GET /api/users/me/logs
func (ctrl *UserController) GetLogs(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	logs, err := ctrl.authService.GetLoginLogs(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// GetAddress returns the user's saved address, null when none
// GET /api/users/me/address
func (ctrl *UserController) GetAddress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	address, err := ctrl.authService.GetAddress(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": address})
}

// SaveAddress creates or replaces the user's address
// PUT /api/users/me/address
func (ctrl *UserController) SaveAddress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid address payload")
		return
	}

	address, err := ctrl.authService.SaveAddress(userID, service.AddressInput{
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": address})
}
