package middleware

import (
	"net/http"

	"posapp/internal/domain/policy"
	"posapp/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTのユーザーがまだ存在するか確認し、roleをDBの最新値で上書きする。
// adminによるロール変更はトークンの再発行を待たずに効く。
func ActiveUserGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたcallerを取得する
			caller, ok := CallerFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//DBから最新のuserを取得する
			user, err := userRepo.FindByID(c.Request().Context(), caller.ID)
			if err != nil || user == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxCallerKey, policy.Caller{ID: user.ID, Username: user.Username, Role: user.Role})
			return next(c)
		}
	}
}
