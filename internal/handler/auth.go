package handler

import (
	"net/http"

	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/service"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req dto.ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.ForgotPassword(c.Request().Context(), &req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "if the email is registered, a reset code has been sent"})
}

func (h *AuthHandler) VerifyCode(c echo.Context) error {
	var req dto.VerifyCodeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.VerifyCode(c.Request().Context(), &req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "code verified"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(c.Request().Context(), &req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "password updated"})
}
