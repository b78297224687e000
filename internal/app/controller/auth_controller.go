package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/internal/app/service"
	apperrors "github.com/petmarket/petmarket-backend/internal/errors"
	"github.com/petmarket/petmarket-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

func userBody(user *model.User) gin.H {
	return gin.H{
		"id":             user.ID,
		"username":       user.Username,
		"email":          user.Email,
		"providerGoogle": user.ProviderGoogle,
		"picture":        user.Picture,
		"firstName":      user.FirstName,
		"lastName":       user.LastName,
	}
}

// Register handles user registration
// POST /api/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "username, email and password are required")
		return
	}

	user, token, err := ctrl.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "Email is already registered")
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userBody(user),
	})
}

// Login handles email/password login
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "email and password are required")
		return
	}

	ip := c.ClientIP()
	userAgent := c.Request.UserAgent()

	user, token, err := ctrl.authService.Login(req.Email, req.Password, &ip, &userAgent)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userBody(user),
	})
}

// GoogleLogin handles Google ID-token sign-in
// POST /api/auth/google
func (ctrl *AuthController) GoogleLogin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "id_token is required")
		return
	}

	ip := c.ClientIP()
	userAgent := c.Request.UserAgent()

	user, token, err := ctrl.authService.GoogleLogin(c.Request.Context(), req.IDToken, &ip, &userAgent)
	if err != nil {
		if errors.Is(err, service.ErrGoogleAuthFailed) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthGoogleFailed, "Google sign-in could not be verified")
			return
		}
		log.Error("Google login failed", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userBody(user),
	})
}

// Health reports service liveness
// GET /api/auth/health
func (ctrl *AuthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"service": "auth",
	})
}
