package handler

import (
	"net/http"

	"posapp/internal/config"
	"posapp/internal/domain/model"
	"posapp/internal/middleware"
	"posapp/internal/repository"
	auth "posapp/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	cfg      config.Config
	userRepo repository.UserRepository
	uc       *auth.UserAdminUsecase
}

func NewAdminUserHandler(cfg config.Config, userRepo repository.UserRepository, uc *auth.UserAdminUsecase) *AdminUserHandler {
	return &AdminUserHandler{cfg: cfg, userRepo: userRepo, uc: uc}
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo) {
	// /admin 配下は全部「JWT必須 + DB上のユーザー確認 + admin限定」
	mws := append(authChain(h.cfg, h.userRepo), middleware.RequireRoles(model.RoleAdmin))
	admin := e.Group("/admin", mws...)

	admin.GET("/users", h.list)
	admin.POST("/users", h.create)
	admin.PUT("/users/:id/role", h.updateRole)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	users, err := h.uc.ListUsers(c.Request().Context(), caller)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]model.User{"items": users})
}

func (h *AdminUserHandler) create(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	user, err := h.uc.CreateUser(c.Request().Context(), caller, auth.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *AdminUserHandler) updateRole(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	user, err := h.uc.UpdateRole(c.Request().Context(), caller, c.Param("id"), req.Role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
