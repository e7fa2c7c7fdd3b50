package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/shopworks/storefront/internal/api/middleware"
	"github.com/shopworks/storefront/internal/models"
)

func CreateTestRequestWithContext(method, target string, body io.Reader, userID int64, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	claims := &models.Claims{UserID: userID, Email: "test@example.com"}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, claims)
	ctx = middleware.ContextWithLogger(ctx, logger)

	return req.WithContext(ctx)
}

func CreateTestAdminRequest(method, target string, body io.Reader, userID int64, pathParams map[string]string) *http.Request {
	req := CreateTestRequestWithContext(method, target, body, userID, pathParams)

	claims, _ := middleware.ClaimsFromContext(req.Context())
	claims.IsAdmin = true

	return req
}

func CreateTestRequestWithoutContext(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := middleware.ContextWithLogger(req.Context(), logger)

	return req.WithContext(ctx)
}
