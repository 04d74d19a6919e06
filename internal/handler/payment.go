package handler

import (
	"encoding/json"
	"net/http"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/service"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Notification receives gateway status callbacks. The body is decoded
// leniently because the gateway sends many fields we do not use.
func (h *PaymentHandler) Notification(c echo.Context) error {
	ctx := c.Request().Context()

	var n dto.PaymentNotification
	if err := json.NewDecoder(c.Request().Body).Decode(&n); err != nil {
		return apperror.New(apperror.KindInvalidRequest, "invalid notification body", err)
	}
	if err := c.Validate(&n); err != nil {
		return validationError(err)
	}

	if err := h.paymentService.HandleNotification(ctx, &n); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}
