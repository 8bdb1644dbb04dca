package handler

import (
    "context"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/video-rental/internal/validation"
)

// storeTimeout bounds every store call made while serving a request.
const storeTimeout = 5 * time.Second

func storeCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), storeTimeout)
}

// parseID reads the :id path parameter.  Anything that is not a positive
// integer is reported as not ok, and callers answer 404 exactly as for an
// unknown id.
func parseID(c echo.Context) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// request is implemented by every payload type.  normalize trims and
// lowercases fields before the validation rules run.
type request interface {
    normalize()
}

// bindValid decodes the JSON body into req, normalizes it and checks its
// validate tags.  The returned error is safe to show to the client.
func bindValid(c echo.Context, req request) error {
    if err := (&echo.DefaultBinder{}).BindBody(c, req); err != nil {
        return errBadBody
    }
    req.normalize()
    return validation.Struct(req)
}
