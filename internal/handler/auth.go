package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/video-rental/internal/config"
    "github.com/iliyamo/video-rental/internal/repository"
    "github.com/iliyamo/video-rental/internal/utils"
)

// AuthHandler exchanges credentials for a token.
type AuthHandler struct {
    Cfg   config.Config
    Users *repository.UserRepo
    Log   *zap.Logger
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, log *zap.Logger) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: users, Log: log}
}

type loginReq struct {
    Email    string `json:"email" validate:"required,min=5,max=255,email"`
    Password string `json:"password" validate:"required,min=5,max=255"`
}

func (r *loginReq) normalize() { r.Email = strings.ToLower(strings.TrimSpace(r.Email)) }

// Login handles POST /api/auth.  Unknown emails and wrong passwords get
// the same answer.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := bindValid(c, &req); err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := storeCtx(c)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if errors.Is(err, repository.ErrUserNotFound) {
        return badRequest(c, "invalid email or password")
    }
    if err != nil {
        return serverError(c, h.Log, err)
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return badRequest(c, "invalid email or password")
    }

    tok, err := utils.NewAuthToken(h.Cfg.JWTSecret, utils.Identity{ID: u.ID, IsAdmin: u.IsAdmin})
    if err != nil {
        return serverError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"token": tok})
}
