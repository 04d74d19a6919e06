package handler

import (
	"net/http"

	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/middleware"
	"zawawiya-store/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	checkoutService service.CheckoutService
	orderService    service.OrderService
	paymentService  service.PaymentService
}

func NewOrderHandler(
	checkoutService service.CheckoutService,
	orderService service.OrderService,
	paymentService service.PaymentService,
) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
		paymentService:  paymentService,
	}
}

func (h *OrderHandler) CheckoutSummary(c echo.Context) error {
	ctx := c.Request().Context()

	summary, err := h.checkoutService.Summary(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.checkoutService.Checkout(ctx, middleware.UserID(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.orderService.List(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.Get(ctx, middleware.UserID(c), orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.orderService.Cancel(ctx, middleware.UserID(c), orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) ConfirmReceived(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.ConfirmReceived(ctx, middleware.UserID(c), orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Pay(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.paymentService.CreateSession(ctx, middleware.UserID(c), orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}
