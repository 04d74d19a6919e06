package handler

import (
	"net/http"

	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/middleware"
	"zawawiya-store/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) Get(c echo.Context) error {
	cart, err := h.cartService.Get(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.cartService.AddItem(ctx, middleware.UserID(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.cartService.UpdateItem(ctx, middleware.UserID(c), itemID, &req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "cart item updated"})
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	itemID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.cartService.RemoveItem(c.Request().Context(), middleware.UserID(c), itemID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "cart item removed"})
}
