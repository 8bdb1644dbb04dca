package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/video-rental/internal/repository"
    "github.com/iliyamo/video-rental/internal/service"
)

// RentalHandler serves /api/rentals and /api/returns.
type RentalHandler struct {
    Rentals *repository.RentalRepo
    Service *service.RentalService
    Log     *zap.Logger
}

func NewRentalHandler(rentals *repository.RentalRepo, svc *service.RentalService, log *zap.Logger) *RentalHandler {
    return &RentalHandler{Rentals: rentals, Service: svc, Log: log}
}

// rentalReq is the body of both POST /api/rentals and POST /api/returns.
type rentalReq struct {
    CustomerID uint64 `json:"customerId" validate:"required"`
    MovieID    uint64 `json:"movieId" validate:"required"`
}

func (r *rentalReq) normalize() {}

func (h *RentalHandler) List(c echo.Context) error {
    ctx, cancel := storeCtx(c)
    defer cancel()
    list, err := h.Rentals.List(ctx, c.QueryParam("sort"))
    if err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, list)
}

func (h *RentalHandler) Get(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return notFound(c, "rental not found")
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    r, err := h.Rentals.GetByID(ctx, id)
    if err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, r)
}

// Create handles POST /api/rentals.
func (h *RentalHandler) Create(c echo.Context) error {
    var req rentalReq
    if err := bindValid(c, &req); err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := storeCtx(c)
    defer cancel()

    r, err := h.Service.Create(ctx, req.CustomerID, req.MovieID)
    switch {
    case err == nil:
        return c.JSON(http.StatusOK, r)
    case errors.Is(err, repository.ErrCustomerNotFound):
        return notFound(c, "invalid customer")
    case errors.Is(err, repository.ErrMovieNotFound):
        return notFound(c, "invalid movie")
    default:
        return respond(c, h.Log, err)
    }
}

// Return handles POST /api/returns.
func (h *RentalHandler) Return(c echo.Context) error {
    var req rentalReq
    if err := bindValid(c, &req); err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := storeCtx(c)
    defer cancel()

    r, err := h.Service.Return(ctx, req.CustomerID, req.MovieID)
    if err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, r)
}
