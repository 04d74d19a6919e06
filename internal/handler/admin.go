package handler

import (
	"net/http"

	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/service"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	adminOrderService service.AdminOrderService
	returnService     service.ReturnService
	reportService     service.ReportService
}

func NewAdminHandler(
	adminOrderService service.AdminOrderService,
	returnService service.ReturnService,
	reportService service.ReportService,
) *AdminHandler {
	return &AdminHandler{
		adminOrderService: adminOrderService,
		returnService:     returnService,
		reportService:     reportService,
	}
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	var filter dto.AdminOrderFilter
	if err := bindAndValidate(c, &filter); err != nil {
		return err
	}

	orders, err := h.adminOrderService.List(ctx, &filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.adminOrderService.Get(ctx, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateOrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.adminOrderService.UpdateStatus(ctx, orderID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *AdminHandler) ListReturns(c echo.Context) error {
	ctx := c.Request().Context()

	var filter dto.AdminReturnFilter
	if err := bindAndValidate(c, &filter); err != nil {
		return err
	}

	returns, err := h.returnService.List(ctx, &filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, returns)
}

func (h *AdminHandler) GetReturn(c echo.Context) error {
	ctx := c.Request().Context()

	returnID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ret, err := h.returnService.Get(ctx, returnID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ret)
}

func (h *AdminHandler) UpdateReturn(c echo.Context) error {
	ctx := c.Request().Context()

	returnID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateReturnRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ret, err := h.returnService.Update(ctx, returnID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ret)
}

func (h *AdminHandler) DeleteReturn(c echo.Context) error {
	ctx := c.Request().Context()

	returnID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.returnService.Delete(ctx, returnID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "return deleted"})
}

func (h *AdminHandler) SalesReport(c echo.Context) error {
	ctx := c.Request().Context()

	var filter dto.ReportFilter
	if err := bindAndValidate(c, &filter); err != nil {
		return err
	}

	report, err := h.reportService.Sales(ctx, &filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, report)
}
