package handler

import (
	"net/http"

	"posapp/internal/config"
	"posapp/internal/middleware"
	"posapp/internal/repository"
	"posapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /sales の取引API
type TransactionHandler struct {
	cfg      config.Config
	userRepo repository.UserRepository
	uc       *usecase.TransactionUsecase
}

// DI
func NewTransactionHandler(cfg config.Config, userRepo repository.UserRepository, uc *usecase.TransactionUsecase) *TransactionHandler {
	return &TransactionHandler{cfg: cfg, userRepo: userRepo, uc: uc}
}

type linesRequest struct {
	Products []usecase.LineInput `json:"products"`
}

func (h *TransactionHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/sales", authChain(h.cfg, h.userRepo)...)

	g.POST("/transaction", h.create)
	g.GET("/transactions", h.list)
	g.GET("/transaction/:id", h.detail)

	g.POST("/transaction/:id/items", h.addOrUpdateLine)
	g.PUT("/transaction/:id/items", h.replaceLineItems)
	g.DELETE("/transaction/:id/items/:product_id", h.removeLine)

	g.POST("/transaction/:id/finalize", h.finalize)
	g.POST("/transaction/:id/cancel", h.cancel)
}

func (h *TransactionHandler) create(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req linesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.uc.Create(c.Request().Context(), caller, req.Products)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *TransactionHandler) list(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	page, limit, err := pageParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON(err.Error()))
	}

	out, err := h.uc.List(c.Request().Context(), caller, usecase.ListTransactionsInput{
		SellerID: c.QueryParam("seller_id"),
		Status:   c.QueryParam("status"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TransactionHandler) detail(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	out, err := h.uc.Get(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// quantity は今の数量への加算分（負なら減らす）
func (h *TransactionHandler) addOrUpdateLine(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req usecase.LineInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.uc.AddOrUpdateLine(c.Request().Context(), caller, c.Param("id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TransactionHandler) replaceLineItems(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req linesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.uc.ReplaceLineItems(c.Request().Context(), caller, c.Param("id"), req.Products)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TransactionHandler) removeLine(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	out, err := h.uc.RemoveLine(c.Request().Context(), caller, c.Param("id"), c.Param("product_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TransactionHandler) finalize(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	out, err := h.uc.Finalize(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TransactionHandler) cancel(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	out, err := h.uc.Cancel(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
