package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireAdmin aborts with 403 unless the identity stored by JWTAuth has
// the admin flag.  It must be chained after JWTAuth.
func RequireAdmin() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, ok := IdentityFrom(c)
            if !ok || !id.IsAdmin {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
            }
            return next(c)
        }
    }
}
