package middleware

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/video-rental/internal/utils"
)

const identityKey = "identity"

// IdentityFrom returns the identity JWTAuth stored on the context.  ok is
// false on routes that are not behind JWTAuth.
func IdentityFrom(c echo.Context) (id utils.Identity, ok bool) {
    id, ok = c.Get(identityKey).(utils.Identity)
    return id, ok
}

// currentUserID keys per-user limits; anonymous callers share "anon".
func currentUserID(c echo.Context) string {
    if s, ok := c.Get("user_id").(string); ok && s != "" {
        return s
    }
    return "anon"
}
