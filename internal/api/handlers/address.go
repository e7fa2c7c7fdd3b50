package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopworks/storefront/internal/api/middleware"
	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	service "github.com/shopworks/storefront/internal/services"
	"github.com/shopworks/storefront/internal/utils"
	"github.com/shopworks/storefront/internal/utils/response"
)

type AddressHandler struct {
	addressService *service.AddressService
	validator      *validator.Validate
}

func NewAddressHandler(addressService *service.AddressService) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
		validator:      validator.New(),
	}
}

func (h *AddressHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		var req models.AddressRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		address, err := h.addressService.CreateAddress(r.Context(), claims.UserID, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusCreated, address)
	}
}

func (h *AddressHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		addresses, err := h.addressService.ListAddresses(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, addresses)
	}
}

func (h *AddressHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		addressID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		var req models.AddressRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		address, err := h.addressService.UpdateAddress(r.Context(), claims.UserID, addressID, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, address)
	}
}

func (h *AddressHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		addressID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		if err := h.addressService.DeleteAddress(r.Context(), claims.UserID, addressID); err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]string{"message": "Address deleted"})
	}
}
