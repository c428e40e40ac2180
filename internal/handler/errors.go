package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"posapp/internal/config"
	"posapp/internal/middleware"
	"posapp/internal/repository"
	"posapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	ProductID string `json:"product_id,omitempty"`
	Requested int64  `json:"requested,omitempty"`
	Available *int64 `json:"available,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func errorJSON(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// usecaseのエラーをHTTPに変換する。知らないエラーは500としてecho側でログに出す
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	var stock *usecase.InsufficientStockError
	if errors.As(err, &stock) {
		available := stock.Available
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:     "insufficient stock",
			ProductID: stock.ProductID,
			Requested: stock.Requested,
			Available: &available,
			Retryable: true,
		})
	}

	var invalid *usecase.ValidationError
	if errors.As(err, &invalid) {
		return c.JSON(http.StatusBadRequest, errorJSON(invalid.Msg))
	}

	switch {
	case errors.Is(err, usecase.ErrEmptyTransaction):
		return c.JSON(http.StatusBadRequest, errorJSON("transaction must have at least one line item"))
	case errors.Is(err, usecase.ErrInvalidQuantity):
		return c.JSON(http.StatusBadRequest, errorJSON("invalid quantity"))
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorJSON("invalid credentials"))
	case errors.Is(err, usecase.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorJSON("not found"))
	case errors.Is(err, usecase.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, errorJSON("transaction is not pending"))
	case errors.Is(err, usecase.ErrConflict):
		return c.JSON(http.StatusConflict, errorJSON("already exists"))
	case errors.Is(err, usecase.ErrConcurrentUpdate):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "concurrent update, retry", Retryable: true})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "timeout", Retryable: true})
	}

	//500
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
}

// JWT必須 + DB上のユーザー確認
func authChain(cfg config.Config, userRepo repository.UserRepository) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.ActiveUserGuard(userRepo),
	}
}

// page / limit（default 1 / 20）
func pageParams(c echo.Context) (int, int, error) {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, errors.New("invalid page")
		}
		page = p
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, errors.New("invalid limit")
		}
		limit = l
	}
	return page, limit, nil
}
