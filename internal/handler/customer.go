package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/video-rental/internal/model"
    "github.com/iliyamo/video-rental/internal/repository"
)

// CustomerHandler serves /api/customers.
type CustomerHandler struct {
    Customers *repository.CustomerRepo
    Log       *zap.Logger
}

func NewCustomerHandler(customers *repository.CustomerRepo, log *zap.Logger) *CustomerHandler {
    return &CustomerHandler{Customers: customers, Log: log}
}

type customerReq struct {
    Name   string `json:"name" validate:"required,min=5,max=50"`
    Phone  string `json:"phone" validate:"required,min=5,max=50"`
    IsGold bool   `json:"isGold"`
}

func (r *customerReq) normalize() {
    r.Name = strings.TrimSpace(r.Name)
    r.Phone = strings.TrimSpace(r.Phone)
}

func (r *customerReq) toModel(id uint64) *model.Customer {
    return &model.Customer{ID: id, Name: r.Name, Phone: r.Phone, IsGold: r.IsGold}
}

// List handles GET /api/customers?sort=name.
func (h *CustomerHandler) List(c echo.Context) error {
    ctx, cancel := storeCtx(c)
    defer cancel()
    list, err := h.Customers.List(ctx, c.QueryParam("sort"))
    if err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, list)
}

func (h *CustomerHandler) Get(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return notFound(c, "customer not found")
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    cust, err := h.Customers.GetByID(ctx, id)
    if err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) Create(c echo.Context) error {
    var req customerReq
    if err := bindValid(c, &req); err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    cust := req.toModel(0)
    if err := h.Customers.Create(ctx, cust); err != nil {
        return serverError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) Update(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return notFound(c, "customer not found")
    }
    var req customerReq
    if err := bindValid(c, &req); err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    cust := req.toModel(id)
    if err := h.Customers.Update(ctx, cust); err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) Delete(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return notFound(c, "customer not found")
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    cust, err := h.Customers.Delete(ctx, id)
    if err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, cust)
}
