package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"posapp/pkg/logger"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type errorResponse struct {
	Error string `json:"error"`
}

// New は共通ミドルウェア付きのechoを作ってルートを登録する
func New(l logger.Logger, requestTimeout time.Duration, registrars ...RouteRegistrar) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				l.Errorf(v.Error, "%s %s -> %d (%s) request_id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
				return nil
			}
			l.Infof("%s %s -> %d (%s) request_id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	// 1リクエストの上限。ctxはusecase・DBまで渡る
	e.Use(echomw.ContextTimeout(requestTimeout))

	RegisterRoutes(e, registrars...)
	return e
}

// echo.HTTPErrorを {"error": "..."} で返す。ログはRequestLoggerが出す
func errorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errorResponse{Error: msg})
	}
}

// Start はShutdownされるまでブロックする
func Start(e *echo.Echo, addr string) error {
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func Shutdown(ctx context.Context, e *echo.Echo) error {
	return e.Shutdown(ctx)
}
