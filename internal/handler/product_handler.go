package handler

import (
	"context"
	"net/http"

	"posapp/internal/config"
	"posapp/internal/domain/model"
	"posapp/internal/domain/policy"
	"posapp/internal/middleware"
	"posapp/internal/repository"
	"posapp/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /products
type ProductHandler struct {
	cfg      config.Config
	userRepo repository.UserRepository
	uc       *usecase.ProductUsecase
}

// DI
func NewProductHandler(cfg config.Config, userRepo repository.UserRepository, uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{cfg: cfg, userRepo: userRepo, uc: uc}
}

type createProductRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int64           `json:"stock"`
}

type stockRequest struct {
	Quantity *int64 `json:"quantity"`
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/products", authChain(h.cfg, h.userRepo)...)
	g.GET("", h.list)
	g.GET("/:id", h.detail)

	// 商品登録・在庫調整は manager / admin
	manage := middleware.RequireRoles(model.RoleManager, model.RoleAdmin)
	g.POST("", h.create, manage)
	g.POST("/:id/increase-stock", h.increaseStock, manage)
	g.POST("/:id/update-stocks", h.updateStocks, manage)
}

func (h *ProductHandler) list(c echo.Context) error {
	page, limit, err := pageParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON(err.Error()))
	}

	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:  page,
		Limit: limit,
		Name:  c.QueryParam("name"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	p, err := h.uc.GetProductDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) create(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), caller, usecase.CreateProductInput{
		Name:  req.Name,
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) increaseStock(c echo.Context) error {
	return h.adjust(c, h.uc.IncreaseStock)
}

func (h *ProductHandler) updateStocks(c echo.Context) error {
	return h.adjust(c, h.uc.SetStock)
}

type adjustFunc func(ctx context.Context, caller policy.Caller, productID string, qty int64) (model.Product, error)

func (h *ProductHandler) adjust(c echo.Context, fn adjustFunc) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req stockRequest
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		return c.JSON(http.StatusBadRequest, errorJSON("quantity is required"))
	}

	p, err := fn(c.Request().Context(), caller, c.Param("id"), *req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
