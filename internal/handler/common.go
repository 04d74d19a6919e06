package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"zawawiya-store/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return apperror.New(apperror.KindInvalidRequest, fmt.Sprint(he.Message), err)
		}
		return apperror.New(apperror.KindInvalidRequest, "invalid request body", err)
	}

	if err := c.Validate(req); err != nil {
		return validationError(err)
	}

	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.New(apperror.KindInvalidRequest, "invalid request", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}

	return apperror.InvalidRequest(strings.Join(msgs, "; "))
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.InvalidRequest(fmt.Sprintf("%s must be a positive number", name))
	}
	return uint(id), nil
}
