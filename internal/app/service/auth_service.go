package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/internal/app/repository"
	"github.com/petmarket/petmarket-backend/pkg/logger"
	"github.com/petmarket/petmarket-backend/pkg/util"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrGoogleAuthFailed   = errors.New("google auth failed")
)

// GoogleTokenVerifier validates a Google ID token against an audience.
// Injectable so tests do not call Google.
type GoogleTokenVerifier func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type ProfileUpdate struct {
	Username  *string
	FirstName *string
	LastName  *string
	Picture   *string
}

type AddressInput struct {
	Line1      *string
	Line2      *string
	City       *string
	PostalCode *string
	Country    *string
}

type AuthService interface {
	Register(username, email, password string) (*model.User, string, error)
	Login(email, password string, ip, userAgent *string) (*model.User, string, error)
	GoogleLogin(ctx context.Context, idToken string, ip, userAgent *string) (*model.User, string, error)
	GetProfile(userID uint) (*model.User, error)
	UpdateProfile(userID uint, update ProfileUpdate) (*model.User, error)
	GetLoginLogs(userID uint) ([]model.LoginLog, error)
	GetAddress(userID uint) (*model.Address, error)
	SaveAddress(userID uint, input AddressInput) (*model.Address, error)
}

type authService struct {
	userRepo         repository.UserRepository
	jwtSecret        string
	tokenExpiry      time.Duration
	allowedClientIDs []string
	verifyGoogle     GoogleTokenVerifier
}

func NewAuthService(
	userRepo repository.UserRepository,
	jwtSecret string,
	tokenExpiry time.Duration,
	allowedClientIDs []string,
	verifier ...GoogleTokenVerifier,
) AuthService {
	verify := GoogleTokenVerifier(idtoken.Validate)
	if len(verifier) > 0 && verifier[0] != nil {
		verify = verifier[0]
	}
	return &authService{
		userRepo:         userRepo,
		jwtSecret:        jwtSecret,
		tokenExpiry:      tokenExpiry,
		allowedClientIDs: allowedClientIDs,
		verifyGoogle:     verify,
	}
}

func (s *authService) Register(username, email, password string) (*model.User, string, error) {
	logger.Info("Registering user", map[string]interface{}{
		"email":    email,
		"username": username,
	})

	hash, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, nil)
		return nil, "", err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Warn("Registration rejected: email already taken", map[string]interface{}{
				"email": email,
			})
			return nil, "", ErrUserExists
		}
		return nil, "", err
	}

	token, err := util.GenerateToken(user.ID, user.Email, user.Username, s.jwtSecret, s.tokenExpiry)
	if err != nil {
		return nil, "", err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, token, nil
}

func (s *authService) Login(email, password string, ip, userAgent *string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		logger.Error("Failed to fetch user for login", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login rejected: password mismatch", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.GenerateToken(user.ID, user.Email, user.Username, s.jwtSecret, s.tokenExpiry)
	if err != nil {
		return nil, "", err
	}

	s.recordLoginEvent(user.ID, "login", ip, userAgent)

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, token, nil
}

// GoogleLogin verifies the ID token and finds or creates the matching
// user, linking the Google identity to an existing email account when
// one exists.
func (s *authService) GoogleLogin(ctx context.Context, rawToken string, ip, userAgent *string) (*model.User, string, error) {
	payload, err := s.verifyIDToken(ctx, rawToken)
	if err != nil {
		logger.Error("Google ID token verification failed", err, nil)
		return nil, "", ErrGoogleAuthFailed
	}

	googleID := payload.Subject
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	if name == "" && email != "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	now := time.Now()
	user, err := s.userRepo.FindByGoogleIDOrEmail(googleID, email)
	if err == nil {
		user.ProviderGoogle = true
		user.GoogleID = &googleID
		if picture != "" {
			user.Picture = &picture
		}
		user.LastLogin = &now
		if err := s.userRepo.Update(user); err != nil {
			return nil, "", err
		}
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &model.User{
			Username:       name,
			Email:          email,
			ProviderGoogle: true,
			GoogleID:       &googleID,
			LastLogin:      &now,
		}
		if picture != "" {
			user.Picture = &picture
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, "", err
		}
	} else {
		return nil, "", err
	}

	token, err := util.GenerateToken(user.ID, user.Email, user.Username, s.jwtSecret, s.tokenExpiry)
	if err != nil {
		return nil, "", err
	}

	s.recordLoginEvent(user.ID, "google_login", ip, userAgent)

	logger.Info("User logged in with Google", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, token, nil
}

// verifyIDToken tries every configured client id as audience. With no ids
// configured, audience checking is skipped (development convenience, the
// warning tells the operator to set GOOGLE_CLIENT_ID).
func (s *authService) verifyIDToken(ctx context.Context, rawToken string) (*idtoken.Payload, error) {
	if len(s.allowedClientIDs) == 0 {
		logger.Warn("No GOOGLE_CLIENT_ID configured, skipping audience verification", nil)
		return s.verifyGoogle(ctx, rawToken, "")
	}

	var lastErr error
	for _, clientID := range s.allowedClientIDs {
		payload, err := s.verifyGoogle(ctx, rawToken, clientID)
		if err == nil {
			return payload, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// recordLoginEvent is best-effort: a failed write is logged and ignored.
func (s *authService) recordLoginEvent(userID uint, event string, ip, userAgent *string) {
	err := s.userRepo.CreateLoginLog(&model.LoginLog{
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		Event:     event,
	})
	if err != nil {
		logger.Warn("Failed to record login event", map[string]interface{}{
			"user_id": userID,
			"event":   event,
			"error":   err.Error(),
		})
	}
}

func (s *authService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies only the provided fields (partial update).
func (s *authService) UpdateProfile(userID uint, update ProfileUpdate) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil && *update.Username != "" {
		user.Username = *update.Username
	}
	if update.FirstName != nil {
		user.FirstName = update.FirstName
	}
	if update.LastName != nil {
		user.LastName = update.LastName
	}
	if update.Picture != nil {
		user.Picture = update.Picture
	}
	now := time.Now()
	user.LastLogin = &now

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) GetLoginLogs(userID uint) ([]model.LoginLog, error) {
	logs, err := s.userRepo.FindLogsByUserID(userID, 100)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []model.LoginLog{}
	}
	return logs, nil
}

// GetAddress returns nil without error when the user has no address yet.
func (s *authService) GetAddress(userID uint) (*model.Address, error) {
	address, err := s.userRepo.FindAddressByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return address, nil
}

func (s *authService) SaveAddress(userID uint, input AddressInput) (*model.Address, error) {
	address := &model.Address{
		UserID:     userID,
		Line1:      input.Line1,
		Line2:      input.Line2,
		City:       input.City,
		PostalCode: input.PostalCode,
		Country:    input.Country,
	}
	if err := s.userRepo.SaveAddress(address); err != nil {
		logger.Error("Failed to save address", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return address, nil
}
