package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/video-rental/internal/model"
    "github.com/iliyamo/video-rental/internal/repository"
)

// MovieHandler serves /api/movies.  A movie stores a copy of its genre's
// name, looked up from genreId on every create and update.
type MovieHandler struct {
    Movies *repository.MovieRepo
    Genres *repository.GenreRepo
    Log    *zap.Logger
}

func NewMovieHandler(movies *repository.MovieRepo, genres *repository.GenreRepo, log *zap.Logger) *MovieHandler {
    return &MovieHandler{Movies: movies, Genres: genres, Log: log}
}

type movieReq struct {
    Title           string   `json:"title" validate:"required,min=5,max=255"`
    GenreID         uint64   `json:"genreId" validate:"required"`
    NumberInStock   *int     `json:"numberInStock" validate:"required,min=0,max=255"`
    DailyRentalRate *float64 `json:"dailyRentalRate" validate:"required,min=0,max=255"`
}

func (r *movieReq) normalize() { r.Title = strings.TrimSpace(r.Title) }

// resolve validates the payload's genre and builds the movie to store.
func (h *MovieHandler) resolve(c echo.Context, id uint64) (*model.Movie, error) {
    var req movieReq
    if err := bindValid(c, &req); err != nil {
        return nil, err
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    g, err := h.Genres.GetByID(ctx, req.GenreID)
    if err != nil {
        return nil, err
    }
    return &model.Movie{
        ID:              id,
        Title:           req.Title,
        Genre:           g.Snapshot(),
        NumberInStock:   *req.NumberInStock,
        DailyRentalRate: *req.DailyRentalRate,
    }, nil
}

func (h *MovieHandler) writeErr(c echo.Context, err error) error {
    if errors.Is(err, repository.ErrGenreNotFound) {
        return badRequest(c, "invalid genre")
    }
    return respond(c, h.Log, err)
}

func (h *MovieHandler) List(c echo.Context) error {
    ctx, cancel := storeCtx(c)
    defer cancel()
    list, err := h.Movies.List(ctx, c.QueryParam("sort"))
    if err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, list)
}

func (h *MovieHandler) Get(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return notFound(c, "movie not found")
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    m, err := h.Movies.GetByID(ctx, id)
    if err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Create(c echo.Context) error {
    m, err := h.resolve(c, 0)
    if err != nil {
        return h.writeErr(c, err)
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    if err := h.Movies.Create(ctx, m); err != nil {
        return serverError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Update(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return notFound(c, "movie not found")
    }
    m, err := h.resolve(c, id)
    if err != nil {
        return h.writeErr(c, err)
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    if err := h.Movies.Update(ctx, m); err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Delete(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return notFound(c, "movie not found")
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    m, err := h.Movies.Delete(ctx, id)
    if err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, m)
}
