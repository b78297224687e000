package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/petmarket/petmarket-backend/internal/app/repository"
	"github.com/petmarket/petmarket-backend/internal/db"
	"github.com/petmarket/petmarket-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

const testSecret = "test-secret"

func fakeVerifier(payload *idtoken.Payload, err error) GoogleTokenVerifier {
	return func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		return payload, err
	}
}

func setupAuthServiceTest(t *testing.T, verifier GoogleTokenVerifier) (AuthService, repository.UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	svc := NewAuthService(userRepo, testSecret, 7*24*time.Hour, []string{"client-id"}, verifier)
	return svc, userRepo
}

func TestAuthService_Register(t *testing.T) {
	svc, _ := setupAuthServiceTest(t, nil)

	user, token, err := svc.Register("marie", "marie@example.com", "secret123")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "marie", user.Username)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	claims, err := util.ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "marie@example.com", claims.Email)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := setupAuthServiceTest(t, nil)

	_, _, err := svc.Register("marie", "marie@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = svc.Register("other", "marie@example.com", "different")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestAuthService_Login(t *testing.T) {
	svc, userRepo := setupAuthServiceTest(t, nil)

	registered, _, err := svc.Register("marie", "marie@example.com", "secret123")
	require.NoError(t, err)

	user, token, err := svc.Login("marie@example.com", "secret123", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	// A login event was recorded.
	logs, err := userRepo.FindLogsByUserID(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "login", logs[0].Event)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _ := setupAuthServiceTest(t, nil)

	_, _, err := svc.Register("marie", "marie@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = svc.Login("marie@example.com", "wrong", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _ := setupAuthServiceTest(t, nil)

	_, _, err := svc.Login("nobody@example.com", "whatever", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GoogleLogin_CreatesUser(t *testing.T) {
	payload := &idtoken.Payload{
		Subject: "google-123",
		Claims: map[string]interface{}{
			"email":   "new@example.com",
			"name":    "New User",
			"picture": "https://example.com/p.jpg",
		},
	}
	svc, userRepo := setupAuthServiceTest(t, fakeVerifier(payload, nil))

	user, token, err := svc.GoogleLogin(context.Background(), "raw-token", nil, nil)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "New User", user.Username)
	assert.True(t, user.ProviderGoogle)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "google-123", *user.GoogleID)

	logs, err := userRepo.FindLogsByUserID(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "google_login", logs[0].Event)
}

func TestAuthService_GoogleLogin_LinksExistingAccount(t *testing.T) {
	payload := &idtoken.Payload{
		Subject: "google-456",
		Claims: map[string]interface{}{
			"email": "marie@example.com",
			"name":  "Marie",
		},
	}
	svc, _ := setupAuthServiceTest(t, fakeVerifier(payload, nil))

	registered, _, err := svc.Register("marie", "marie@example.com", "secret123")
	require.NoError(t, err)

	user, _, err := svc.GoogleLogin(context.Background(), "raw-token", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.True(t, user.ProviderGoogle)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "google-456", *user.GoogleID)
}

func TestAuthService_GoogleLogin_InvalidToken(t *testing.T) {
	svc, _ := setupAuthServiceTest(t, fakeVerifier(nil, errors.New("bad signature")))

	_, _, err := svc.GoogleLogin(context.Background(), "raw-token", nil, nil)
	assert.ErrorIs(t, err, ErrGoogleAuthFailed)
}

func TestAuthService_Profile(t *testing.T) {
	svc, _ := setupAuthServiceTest(t, nil)

	registered, _, err := svc.Register("marie", "marie@example.com", "secret123")
	require.NoError(t, err)

	first := "Marie"
	updated, err := svc.UpdateProfile(registered.ID, ProfileUpdate{FirstName: &first})
	require.NoError(t, err)
	require.NotNil(t, updated.FirstName)
	assert.Equal(t, "Marie", *updated.FirstName)
	// Untouched fields survive a partial update.
	assert.Equal(t, "marie", updated.Username)

	_, err = svc.GetProfile(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_Address_Upsert(t *testing.T) {
	svc, _ := setupAuthServiceTest(t, nil)

	registered, _, err := svc.Register("marie", "marie@example.com", "secret123")
	require.NoError(t, err)

	// No address yet: nil without error.
	address, err := svc.GetAddress(registered.ID)
	require.NoError(t, err)
	assert.Nil(t, address)

	line1 := "1 rue des Lilas"
	city := "Lyon"
	_, err = svc.SaveAddress(registered.ID, AddressInput{Line1: &line1, City: &city})
	require.NoError(t, err)

	saved, err := svc.GetAddress(registered.ID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	firstID := saved.ID

	// Saving again replaces in place.
	newLine := "2 avenue du Parc"
	_, err = svc.SaveAddress(registered.ID, AddressInput{Line1: &newLine, City: &city})
	require.NoError(t, err)

	saved, err = svc.GetAddress(registered.ID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, firstID, saved.ID)
	require.NotNil(t, saved.Line1)
	assert.Equal(t, "2 avenue du Parc", *saved.Line1)
}
