package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

//contextのマネージャーフラグを確認します。

func ManagerGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get(CtxUserIDKey).(int64); !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//一般ユーザーは拒否、マネージャーだけ許可
			isManager, ok := c.Get(CtxIsManagerKey).(bool)
			if !ok || !isManager {
				return c.JSON(http.StatusForbidden, errorJSON("manager only"))
			}

			return next(c)
		}
	}
}
