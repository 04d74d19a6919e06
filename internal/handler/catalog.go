package handler

import (
	"net/http"

	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/service"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService  service.CatalogService
	shippingService service.ShippingService
}

func NewCatalogHandler(catalogService service.CatalogService, shippingService service.ShippingService) *CatalogHandler {
	return &CatalogHandler{
		catalogService:  catalogService,
		shippingService: shippingService,
	}
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	var filter dto.ProductFilter
	if err := bindAndValidate(c, &filter); err != nil {
		return err
	}

	products, err := h.catalogService.List(c.Request().Context(), &filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.catalogService.Get(c.Request().Context(), productID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.catalogService.Categories(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) ListShippingServices(c echo.Context) error {
	services, err := h.shippingService.List(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, services)
}

func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.catalogService.Create(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.catalogService.Update(ctx, productID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) ReplaceVariants(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req dto.ReplaceVariantsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.catalogService.ReplaceVariants(ctx, productID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}
