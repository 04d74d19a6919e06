package handler

import (
	"net/http"

	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/middleware"
	"zawawiya-store/internal/service"

	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.CreateReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reviews, err := h.reviewService.Create(ctx, middleware.UserID(c), orderID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, reviews)
}

func (h *ReviewHandler) ListMine(c echo.Context) error {
	reviews, err := h.reviewService.ListMine(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) ListForProduct(c echo.Context) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	reviews, err := h.reviewService.ListForProduct(c.Request().Context(), productID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) Delete(c echo.Context) error {
	reviewID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.reviewService.Delete(c.Request().Context(), middleware.UserID(c), reviewID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "review deleted"})
}
