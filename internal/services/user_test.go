package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopworks/storefront/internal/config"
	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	service "github.com/shopworks/storefront/internal/services"
)

func testSecurity() config.Security {
	return config.Security{
		JWTKey:        "test-signing-key",
		TokenTTL:      time.Hour,
		ResetTokenTTL: 15 * time.Minute,
	}
}

func newUserService() (*service.UserService, *MockUserRepository, *MockRateLimitRepository, *MockNotificationService) {
	repo := new(MockUserRepository)
	rateLimit := new(MockRateLimitRepository)
	notifications := new(MockNotificationService)

	svc := service.NewUserService(repo, rateLimit, notifications, testSecurity(), "https://shop.example.com")

	return svc, repo, rateLimit, notifications
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(hash)
}

func TestUserService_Register(t *testing.T) {

	svc, repo, _, notifications := newUserService()

	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(user *models.User) bool {
		return user.Email == "jo@example.com" && user.Password != "secret-password"
	})).Return(nil)
	notifications.On("SendWelcome", "jo@example.com", "Jo").Return()

	auth, err := svc.Register(context.Background(), &models.RegisterRequest{
		Email:    "jo@example.com",
		Password: "secret-password",
		FullName: "Jo",
	})

	assert.NoError(t, err)
	require.NotNil(t, auth)
	require.NotNil(t, auth.User)
	assert.NotEmpty(t, auth.Token)
	assert.Positive(t, auth.ExpiresIn)
	assert.Empty(t, auth.User.Password)
	notifications.AssertExpectations(t)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {

	svc, repo, _, _ := newUserService()

	repo.On("CreateUser", mock.Anything, mock.Anything).Return(&pq.Error{Code: "23505"})

	auth, err := svc.Register(context.Background(), &models.RegisterRequest{
		Email:    "jo@example.com",
		Password: "secret-password",
		FullName: "Jo",
	})

	assert.Nil(t, auth)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDuplicateEntry, appErr.Code)
}

func TestUserService_Login(t *testing.T) {

	svc, repo, rateLimit, _ := newUserService()

	user := &models.User{
		ID:       7,
		Email:    "jo@example.com",
		Password: hashPassword(t, "secret-password"),
		IsActive: true,
	}

	rateLimit.On("CheckLoginRateLimit", mock.Anything, "jo@example.com").Return(true, 4, 0, nil)
	repo.On("GetUserByEmail", mock.Anything, "jo@example.com").Return(user, nil)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "jo@example.com",
		Password: "secret-password",
	})

	assert.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	assert.Empty(t, resp.User.Password)
}

func TestUserService_Login_WrongPassword(t *testing.T) {

	svc, repo, rateLimit, _ := newUserService()

	user := &models.User{
		ID:       7,
		Email:    "jo@example.com",
		Password: hashPassword(t, "secret-password"),
		IsActive: true,
	}

	rateLimit.On("CheckLoginRateLimit", mock.Anything, "jo@example.com").Return(true, 3, 0, nil)
	repo.On("GetUserByEmail", mock.Anything, "jo@example.com").Return(user, nil)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "jo@example.com",
		Password: "wrong",
	})

	assert.NoError(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid email or password", resp.Message)
	assert.Equal(t, 3, resp.RemainingTries)
	assert.Empty(t, resp.Token)
}

func TestUserService_Login_UnknownEmailMatchesWrongPassword(t *testing.T) {

	svc, repo, rateLimit, _ := newUserService()

	rateLimit.On("CheckLoginRateLimit", mock.Anything, "nobody@example.com").Return(true, 4, 0, nil)
	repo.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, sql.ErrNoRows)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	assert.NoError(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid email or password", resp.Message)
}

func TestUserService_Login_RateLimited(t *testing.T) {

	svc, repo, rateLimit, _ := newUserService()

	rateLimit.On("CheckLoginRateLimit", mock.Anything, "jo@example.com").Return(false, 0, 42, nil)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "jo@example.com",
		Password: "secret-password",
	})

	assert.NoError(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.Equal(t, 42, resp.RetryAfter)
	repo.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
}

func TestUserService_Login_InactiveAccount(t *testing.T) {

	svc, repo, rateLimit, _ := newUserService()

	user := &models.User{
		ID:       7,
		Email:    "jo@example.com",
		Password: hashPassword(t, "secret-password"),
		IsActive: false,
	}

	rateLimit.On("CheckLoginRateLimit", mock.Anything, "jo@example.com").Return(true, 4, 0, nil)
	repo.On("GetUserByEmail", mock.Anything, "jo@example.com").Return(user, nil)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "jo@example.com",
		Password: "secret-password",
	})

	assert.NoError(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
}

func TestUserService_PasswordReset_RoundTrip(t *testing.T) {

	svc, repo, _, notifications := newUserService()

	user := &models.User{ID: 7, Email: "jo@example.com", FullName: "Jo", IsActive: true}
	repo.On("GetUserByEmail", mock.Anything, "jo@example.com").Return(user, nil)

	var resetURL string

	notifications.On("SendPasswordReset", "jo@example.com", "Jo", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { resetURL = args.String(2) }).
		Return()

	err := svc.RequestPasswordReset(context.Background(), &models.PasswordResetRequest{Email: "jo@example.com"})
	require.NoError(t, err)
	require.Contains(t, resetURL, "https://shop.example.com/reset-password?token=")

	token := resetURL[len("https://shop.example.com/reset-password?token="):]

	repo.On("UpdatePassword", mock.Anything, int64(7), mock.AnythingOfType("string")).Return(nil)

	err = svc.ConfirmPasswordReset(context.Background(), &models.PasswordResetConfirm{
		Token:    token,
		Password: "new-password-123",
	})

	assert.NoError(t, err)
	repo.AssertCalled(t, "UpdatePassword", mock.Anything, int64(7), mock.AnythingOfType("string"))
}

func TestUserService_RequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {

	svc, repo, _, notifications := newUserService()

	repo.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, sql.ErrNoRows)

	err := svc.RequestPasswordReset(context.Background(), &models.PasswordResetRequest{Email: "nobody@example.com"})

	assert.NoError(t, err)
	notifications.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_ConfirmPasswordReset_RejectsLoginToken(t *testing.T) {

	svc, repo, rateLimit, _ := newUserService()

	user := &models.User{
		ID:       7,
		Email:    "jo@example.com",
		Password: hashPassword(t, "secret-password"),
		IsActive: true,
	}

	rateLimit.On("CheckLoginRateLimit", mock.Anything, "jo@example.com").Return(true, 4, 0, nil)
	repo.On("GetUserByEmail", mock.Anything, "jo@example.com").Return(user, nil)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "jo@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	// A session token must not be usable to reset the password.
	err = svc.ConfirmPasswordReset(context.Background(), &models.PasswordResetConfirm{
		Token:    resp.Token,
		Password: "new-password-123",
	})

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUnauthorized, appErr.Code)
	repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_ConfirmPasswordReset_GarbageToken(t *testing.T) {

	svc, _, _, _ := newUserService()

	err := svc.ConfirmPasswordReset(context.Background(), &models.PasswordResetConfirm{
		Token:    "not-a-jwt",
		Password: "new-password-123",
	})

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUnauthorized, appErr.Code)
}
