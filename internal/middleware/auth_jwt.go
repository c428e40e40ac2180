package middleware

import (
	"errors"
	"net/http"
	"strings"

	"posapp/internal/config"
	"posapp/internal/domain/model"
	"posapp/internal/domain/policy"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// contextに入れる呼び出し元（policy.Caller）
const CtxCallerKey = "caller"

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//JWTをパースして検証する
			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//claimsを取り出す
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//sub（user id）
			userID, err := parseString(claims["sub"])
			if err != nil || userID == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//roleを取り出す（staff/manager/admin）
			rawRole, err := parseString(claims["role"])
			role := model.Role(rawRole)
			if err != nil || !role.IsValid() {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			username, _ := parseString(claims["username"])

			//contextへ保存
			c.Set(CtxCallerKey, policy.Caller{ID: userID, Username: username, Role: role})

			return next(c)
		}
	}
}

// CallerFrom はAuthJWTが入れた呼び出し元を取り出す
func CallerFrom(c echo.Context) (policy.Caller, bool) {
	caller, ok := c.Get(CtxCallerKey).(policy.Caller)
	if !ok || caller.ID == "" {
		return policy.Caller{}, false
	}
	return caller, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func parseString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New("invalid string")
	}
	return s, nil
}
