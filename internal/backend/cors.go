package backend

import (
	"github.com/jo-hoe/foodspots/internal/core"
	"github.com/labstack/echo/v4"
)

// PermissiveCORS sets the configured cross-origin headers on every response.
// Install it with echo.Pre so it also covers 404/405 responses from the router.
func PermissiveCORS(config core.CORSConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Response().Header()
			header.Set(echo.HeaderAccessControlAllowOrigin, config.AllowOrigin)
			header.Set(echo.HeaderAccessControlAllowMethods, config.AllowMethods)
			header.Set(echo.HeaderAccessControlAllowHeaders, config.AllowHeaders)
			return next(ctx)
		}
	}
}
