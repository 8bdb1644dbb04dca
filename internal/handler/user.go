package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/video-rental/internal/config"
    "github.com/iliyamo/video-rental/internal/middleware"
    "github.com/iliyamo/video-rental/internal/repository"
    "github.com/iliyamo/video-rental/internal/utils"
)

// UserHandler serves registration and the current user's profile.
type UserHandler struct {
    Cfg   config.Config
    Users *repository.UserRepo
    Log   *zap.Logger
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo, log *zap.Logger) *UserHandler {
    return &UserHandler{Cfg: cfg, Users: users, Log: log}
}

type registerReq struct {
    Name     string `json:"name" validate:"required,min=5,max=255"`
    Email    string `json:"email" validate:"required,min=5,max=255,email"`
    Password string `json:"password" validate:"required,min=5,max=255"`
}

func (r *registerReq) normalize() {
    r.Name = strings.TrimSpace(r.Name)
    r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type userResp struct {
    ID    uint64 `json:"id"`
    Name  string `json:"name"`
    Email string `json:"email"`
}

// Register handles POST /api/users.  The new user's token is returned in
// the x-auth-token header so clients are logged in right away.
func (h *UserHandler) Register(c echo.Context) error {
    var req registerReq
    if err := bindValid(c, &req); err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := storeCtx(c)
    defer cancel()

    u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return respond(c, h.Log, err)
    }
    tok, err := utils.NewAuthToken(h.Cfg.JWTSecret, utils.Identity{ID: u.ID, IsAdmin: u.IsAdmin})
    if err != nil {
        return serverError(c, h.Log, err)
    }
    c.Response().Header().Set(middleware.AuthTokenHeader, tok)
    return c.JSON(http.StatusOK, userResp{ID: u.ID, Name: u.Name, Email: u.Email})
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(c echo.Context) error {
    id, ok := middleware.IdentityFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "access denied. no token provided"})
    }
    ctx, cancel := storeCtx(c)
    defer cancel()
    u, err := h.Users.GetByID(ctx, id.ID)
    if err != nil {
        return respond(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, u)
}
