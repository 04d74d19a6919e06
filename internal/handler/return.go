package handler

import (
	"net/http"

	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/middleware"
	"zawawiya-store/internal/service"

	"github.com/labstack/echo/v4"
)

type ReturnHandler struct {
	returnService service.ReturnService
}

func NewReturnHandler(returnService service.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

func (h *ReturnHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateReturnRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ret, err := h.returnService.Create(ctx, middleware.UserID(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, ret)
}

func (h *ReturnHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	returns, err := h.returnService.ListMine(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, returns)
}

func (h *ReturnHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	returnID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ret, err := h.returnService.GetMine(ctx, middleware.UserID(c), returnID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ret)
}

func (h *ReturnHandler) SubmitShipment(c echo.Context) error {
	ctx := c.Request().Context()

	returnID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.ReturnShipmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ret, err := h.returnService.SubmitReturnShipment(ctx, middleware.UserID(c), returnID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ret)
}

func (h *ReturnHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	returnID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.returnService.DeleteMine(ctx, middleware.UserID(c), returnID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "return withdrawn"})
}
