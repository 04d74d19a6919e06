package handler

import (
	"net/http"

	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/middleware"
	"zawawiya-store/internal/service"

	"github.com/labstack/echo/v4"
)

type AddressHandler struct {
	addressService service.AddressService
}

func NewAddressHandler(addressService service.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

func (h *AddressHandler) List(c echo.Context) error {
	addresses, err := h.addressService.List(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, addresses)
}

func (h *AddressHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	address, err := h.addressService.Create(ctx, middleware.UserID(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, address)
}

func (h *AddressHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	addressID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.AddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	address, err := h.addressService.Update(ctx, middleware.UserID(c), addressID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, address)
}

func (h *AddressHandler) Delete(c echo.Context) error {
	addressID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.addressService.Delete(c.Request().Context(), middleware.UserID(c), addressID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "address deleted"})
}
