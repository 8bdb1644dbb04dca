package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/video-rental/internal/repository"
    "github.com/iliyamo/video-rental/internal/service"
    "github.com/iliyamo/video-rental/internal/validation"
)

var errBadBody = errors.New("invalid request body")

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func notFound(c echo.Context, msg string) error {
    return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
}

// serverError logs err with the request id and answers with a generic
// message; driver errors never reach the client.
func serverError(c echo.Context, log *zap.Logger, err error) error {
    log.Error("request failed",
        zap.String("method", c.Request().Method),
        zap.String("path", c.Path()),
        zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
        zap.Error(err))
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "something failed"})
}

// respond maps the errors shared by all resources onto a status code.
func respond(c echo.Context, log *zap.Logger, err error) error {
    var verr *validation.Error
    switch {
    case errors.As(err, &verr), errors.Is(err, errBadBody):
        return badRequest(c, err.Error())
    case errors.Is(err, repository.ErrInvalidSort):
        return badRequest(c, "invalid sort field")
    case errors.Is(err, service.ErrNotInStock), errors.Is(err, service.ErrAlreadyReturned):
        return badRequest(c, err.Error())
    case errors.Is(err, repository.ErrDuplicate):
        return badRequest(c, "user already registered")
    case errors.Is(err, repository.ErrCustomerNotFound):
        return notFound(c, "customer not found")
    case errors.Is(err, repository.ErrGenreNotFound):
        return notFound(c, "genre not found")
    case errors.Is(err, repository.ErrMovieNotFound):
        return notFound(c, "movie not found")
    case errors.Is(err, repository.ErrRentalNotFound):
        return notFound(c, "rental not found")
    case errors.Is(err, repository.ErrUserNotFound):
        return notFound(c, "user not found")
    default:
        return serverError(c, log, err)
    }
}
