package server

import (
	"lumiere/internal/config"
	"lumiere/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handlers はルート登録に必要なハンドラ一式。
type Handlers struct {
	Auth          *handler.AuthHandler
	Cart          *handler.CartHandler
	Order         *handler.OrderHandler
	Notifications *handler.NotificationHandler
}

// New はechoを組み立てて返す。
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	h.Auth.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.Notifications.RegisterRoutes(e, cfg)

	return e
}

// Start はサーバーを起動する。
func Start(e *echo.Echo, cfg config.Config) error {
	addr := cfg.Port
	if addr != "" && addr[0] != ':' {
		addr = ":" + addr
	}
	return e.Start(addr)
}
