package server

import "github.com/labstack/echo/v4"

// 各handlerはこの形でルートを持つ
type RouteRegistrar interface {
	RegisterRoutes(e *echo.Echo)
}

func RegisterRoutes(e *echo.Echo, registrars ...RouteRegistrar) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
	for _, r := range registrars {
		r.RegisterRoutes(e)
	}
}
