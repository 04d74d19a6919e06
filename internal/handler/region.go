package handler

import (
	"net/http"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/client"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/service"

	"github.com/labstack/echo/v4"
)

type RegionHandler struct {
	regionService service.RegionService
}

func NewRegionHandler(regionService service.RegionService) *RegionHandler {
	return &RegionHandler{regionService: regionService}
}

func (h *RegionHandler) Provinces(c echo.Context) error {
	return h.list(c, client.RegionProvinces, "")
}

func (h *RegionHandler) Regencies(c echo.Context) error {
	return h.list(c, client.RegionRegencies, c.Param("code"))
}

func (h *RegionHandler) Districts(c echo.Context) error {
	return h.list(c, client.RegionDistricts, c.Param("code"))
}

func (h *RegionHandler) Villages(c echo.Context) error {
	return h.list(c, client.RegionVillages, c.Param("code"))
}

// list keeps the response shape stable for the address form: an upstream
// failure still answers with an empty data list.
func (h *RegionHandler) list(c echo.Context, level client.RegionLevel, code string) error {
	regions, err := h.regionService.List(c.Request().Context(), level, code)
	if err != nil {
		if apperror.Is(err, apperror.KindUpstream) {
			return c.JSON(http.StatusBadGateway, dto.RegionResponse{
				Status:  "error",
				Message: "region service unavailable",
				Data:    []dto.Region{},
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, dto.RegionResponse{Status: "ok", Data: regions})
}
