package handler

import (
	"net/http"

	"posapp/internal/config"
	"posapp/internal/middleware"
	"posapp/internal/repository"
	auth "posapp/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	cfg      config.Config
	userRepo repository.UserRepository
	loginUC  *auth.LoginUsecase     // ログインusecase
	usersUC  *auth.UserAdminUsecase // /auth/me
}

// DIコンストラクタ
func NewAuthHandler(cfg config.Config, userRepo repository.UserRepository, loginUC *auth.LoginUsecase, usersUC *auth.UserAdminUsecase) *AuthHandler {
	return &AuthHandler{cfg: cfg, userRepo: userRepo, loginUC: loginUC, usersUC: usersUC}
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/login", h.login)
	e.GET("/auth/me", h.me, authChain(h.cfg, h.userRepo)...)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) me(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	user, err := h.usersUC.Me(c.Request().Context(), caller)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
