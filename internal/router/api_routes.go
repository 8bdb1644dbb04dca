package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/video-rental/internal/handler"
    "github.com/iliyamo/video-rental/internal/middleware"
    "github.com/iliyamo/video-rental/internal/repository"
    "github.com/iliyamo/video-rental/internal/service"
)

// RegisterAPI mounts the resource routes under /api.  Every route shares
// the rate limiter and the response cache; individual routes add JWTAuth
// and RequireAdmin where writes are restricted.
func RegisterAPI(e *echo.Echo, d Deps) {
    customers := repository.NewCustomerRepo(d.DB)
    genres := repository.NewGenreRepo(d.DB)
    movies := repository.NewMovieRepo(d.DB)
    rentals := repository.NewRentalRepo(d.DB)
    users := repository.NewUserRepo(d.DB)

    rentalSvc := service.NewRentalService(d.DB, d.Events, d.Metrics, d.Log)

    ch := handler.NewCustomerHandler(customers, d.Log)
    gh := handler.NewGenreHandler(genres, d.Log)
    mh := handler.NewMovieHandler(movies, genres, d.Log)
    rh := handler.NewRentalHandler(rentals, rentalSvc, d.Log)
    uh := handler.NewUserHandler(d.Cfg, users, d.Log)
    ah := handler.NewAuthHandler(d.Cfg, users, d.Log)

    auth := middleware.JWTAuth(d.Cfg.JWTSecret)
    admin := middleware.RequireAdmin()

    api := e.Group("/api",
        middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log),
        middleware.NewRedisCache(d.Cache, d.Redis, d.Log),
    )

    api.GET("/customers", ch.List)
    api.GET("/customers/:id", ch.Get)
    api.POST("/customers", ch.Create)
    api.PUT("/customers/:id", ch.Update)
    api.DELETE("/customers/:id", ch.Delete)

    api.GET("/genres", gh.List)
    api.GET("/genres/:id", gh.Get)
    api.POST("/genres", gh.Create, auth)
    api.PUT("/genres/:id", gh.Update, auth)
    api.DELETE("/genres/:id", gh.Delete, auth, admin)

    api.GET("/movies", mh.List)
    api.GET("/movies/:id", mh.Get)
    api.POST("/movies", mh.Create)
    api.PUT("/movies/:id", mh.Update)
    api.DELETE("/movies/:id", mh.Delete)

    api.GET("/rentals", rh.List)
    api.GET("/rentals/:id", rh.Get)
    api.POST("/rentals", rh.Create)
    api.POST("/returns", rh.Return, auth)

    api.POST("/users", uh.Register)
    api.GET("/users/me", uh.Me, auth)
    api.POST("/auth", ah.Login)
}
