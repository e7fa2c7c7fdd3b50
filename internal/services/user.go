package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopworks/storefront/internal/config"
	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	repository "github.com/shopworks/storefront/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo          repository.UserRepository
	rateLimitRepo repository.RateLimitRepository
	notifications NotificationService
	security      config.Security
	frontendURL   string
}

func NewUserService(repo repository.UserRepository, rateLimitRepo repository.RateLimitRepository, notifications NotificationService, security config.Security, frontendURL string) *UserService {
	return &UserService{
		repo:          repo,
		rateLimitRepo: rateLimitRepo,
		notifications: notifications,
		security:      security,
		frontendURL:   frontendURL,
	}
}

// Register creates the account and signs the first session token so the
// client does not have to follow up with a login call.
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.InternalError("Failed to secure password").WithError(err)
	}

	user := &models.User{
		Email:    req.Email,
		Password: string(hashedPassword),
		FullName: req.FullName,
		Phone:    req.Phone,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, errors.DuplicateEntryError("Email already registered")
		}

		return nil, errors.DatabaseError("Failed to create user").WithError(err)
	}

	tokenString, expiresAt, err := s.generateToken(user, "", s.security.TokenTTL)
	if err != nil {
		return nil, errors.InternalError("Failed to generate authentication token").WithError(err)
	}

	s.notifications.SendWelcome(user.Email, user.FullName)

	user.Password = ""

	return &models.AuthResponse{
		User:      user,
		Token:     tokenString,
		ExpiresIn: int(time.Until(expiresAt).Seconds()),
	}, nil
}

func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {

	allowed, remaining, retryAfter, err := s.rateLimitRepo.CheckLoginRateLimit(ctx, req.Email)
	if err != nil {
		return nil, errors.ThirdPartyError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		return &models.LoginResponse{
			Success:    false,
			Message:    "Too many login attempts. Please try again later.",
			RetryAfter: retryAfter,
		}, nil
	}

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil || !user.IsActive || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return &models.LoginResponse{
			Success:        false,
			Message:        "Invalid email or password",
			RemainingTries: remaining,
		}, nil
	}

	tokenString, expiresAt, err := s.generateToken(user, "", s.security.TokenTTL)
	if err != nil {
		return nil, errors.InternalError("Failed to generate authentication token").WithError(err)
	}

	user.Password = ""

	return &models.LoginResponse{
		Success:   true,
		User:      user,
		Token:     tokenString,
		ExpiresIn: int(time.Until(expiresAt).Seconds()),
	}, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("User not found").WithError(err)
	}

	return user, nil
}

// RequestPasswordReset issues a short-lived scoped token and mails the
// reset link. Unknown emails are silently accepted so the endpoint does
// not reveal which addresses exist.
func (s *UserService) RequestPasswordReset(ctx context.Context, req *models.PasswordResetRequest) error {

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil
	}

	tokenString, _, err := s.generateToken(user, models.ScopePasswordReset, s.security.ResetTokenTTL)
	if err != nil {
		return errors.InternalError("Failed to generate reset token").WithError(err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, tokenString)

	s.notifications.SendPasswordReset(user.Email, user.FullName, resetURL)

	return nil
}

func (s *UserService) ConfirmPasswordReset(ctx context.Context, req *models.PasswordResetConfirm) error {

	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(req.Token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(s.security.JWTKey), nil
	})
	if err != nil || !token.Valid || claims.Scope != models.ScopePasswordReset {
		return errors.UnauthorizedError("Invalid or expired reset token")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.InternalError("Failed to secure password").WithError(err)
	}

	if err := s.repo.UpdatePassword(ctx, claims.UserID, string(hashedPassword)); err != nil {
		return errors.DatabaseError("Failed to update password").WithError(err)
	}

	return nil
}

func (s *UserService) ListUsers(ctx context.Context, page, size int) (*models.PaginatedResponse, error) {

	users, total, err := s.repo.ListUsers(ctx, page, size)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list users").WithError(err)
	}

	return &models.PaginatedResponse{
		Items:   users,
		Page:    page,
		PerPage: size,
		Total:   total,
	}, nil
}

func (s *UserService) SetUserActive(ctx context.Context, id int64, active bool) error {

	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return errors.NotFoundError("User not found").WithError(err)
	}

	return nil
}

func (s *UserService) generateToken(user *models.User, scope string, ttl time.Duration) (string, time.Time, error) {

	expiresAt := time.Now().Add(ttl)

	claims := &models.Claims{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		Scope:   scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.security.JWTKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}
