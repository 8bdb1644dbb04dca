package middleware

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/video-rental/internal/utils"
)

// AuthTokenHeader is the header clients send the token in.  A standard
// "Authorization: Bearer" header is accepted as well.
const AuthTokenHeader = "x-auth-token"

// JWTAuth returns an Echo middleware that validates the caller's token
// and stores the resulting utils.Identity on the context.  The secret must
// match the one used when issuing tokens.  Handlers read the identity with
// IdentityFrom.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := tokenFrom(c.Request())
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "access denied. no token provided"})
            }
            id, err := utils.ParseAuthToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            setIdentity(c, id)
            return next(c)
        }
    }
}

func tokenFrom(r *http.Request) string {
    if v := strings.TrimSpace(r.Header.Get(AuthTokenHeader)); v != "" {
        return v
    }
    auth := r.Header.Get(echo.HeaderAuthorization)
    if strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    }
    return ""
}

// hasCredentials reports whether the request carries any token at all.
func hasCredentials(r *http.Request) bool {
    return r.Header.Get(AuthTokenHeader) != "" || r.Header.Get(echo.HeaderAuthorization) != ""
}

func setIdentity(c echo.Context, id utils.Identity) {
    c.Set(identityKey, id)
    c.Set("user_id", strconv.FormatUint(id.ID, 10))
}
