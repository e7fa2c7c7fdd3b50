package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/utils/response"
)

func DecodeJSONBody(r *http.Request, dest any) error {

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	defer r.Body.Close()

	if len(body) == 0 {
		return errors.New("request body cannot be empty")
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("invalid JSON format: %w", err)
	}

	return nil
}

// ParseAndValidate decodes the body into dest and runs struct validation,
// writing the error response itself. Returns false when the handler should
// bail out.
func ParseAndValidate(r *http.Request, w http.ResponseWriter, dest any, validate *validator.Validate) bool {

	if err := DecodeJSONBody(r, dest); err != nil {
		slog.Warn("Invalid request", slog.String("error", err.Error()), slog.String("endpoint", r.URL.Path))
		response.Error(w, apperrors.BadRequestError("Invalid request body").WithError(err))
		return false
	}

	if err := validate.Struct(dest); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			response.ValidationError(w, validationErrs)
			return false
		}

		response.Error(w, apperrors.ValidationError("Invalid input data").WithError(err))
		return false
	}

	return true
}

// ParseID reads a positive integer path value.
func ParseID(r *http.Request, name string) (int64, error) {

	raw := r.PathValue(name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.BadRequestError(fmt.Sprintf("Invalid %s", name))
	}

	return id, nil
}

// Pagination reads page/per_page query params with defaults and caps.
func Pagination(r *http.Request, defaultPerPage, maxPerPage int) (int, int) {

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil || perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}

	return page, perPage
}
