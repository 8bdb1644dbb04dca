package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/video-rental/internal/model"
    "github.com/iliyamo/video-rental/internal/repository"
)

// GenreHandler serves /api/genres.  Writes are mounted behind JWTAuth and
// delete additionally behind RequireAdmin.
type GenreHandler struct {
    Genres *repository.GenreRepo
    Log    *zap.Logger
}

func NewGenreHandler(genres *repository.GenreRepo, log *zap.Logger) *GenreHandler {
    return &GenreHandler{Genres: genres, Log: log}
}

type genreReq struct {
    Name string `json:"name" validate:"required,min=5,max=255"`
}

func (r *genreReq) normalize() { r.Name = strings.TrimSpace(r.Name) }

func (h *GenreHandler) List(c echo.Context) error {
    ctx, cancel := storeCtx(c)
    defer cancel()
    list, err := h.Genres.List(ctx, c.QueryParam("sort"))
    if err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, list)
}

func (h *GenreHandler) Get(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return notFound(c, "genre not found")
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    g, err := h.Genres.GetByID(ctx, id)
    if err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, g)
}

func (h *GenreHandler) Create(c echo.Context) error {
    var req genreReq
    if err := bindValid(c, &req); err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    g := &model.Genre{Name: req.Name}
    if err := h.Genres.Create(ctx, g); err != nil {
        return serverError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, g)
}

func (h *GenreHandler) Update(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return notFound(c, "genre not found")
    }
    var req genreReq
    if err := bindValid(c, &req); err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    if err := h.Genres.UpdateName(ctx, id, req.Name); err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, &model.Genre{ID: id, Name: req.Name})
}

func (h *GenreHandler) Delete(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return notFound(c, "genre not found")
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    g, err := h.Genres.Delete(ctx, id)
    if err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, g)
}
