// Package router builds the Echo instance and mounts every route.
package router

import (
    "database/sql"
    "errors"
    "net/http"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/video-rental/internal/config"
    "github.com/iliyamo/video-rental/internal/handler"
    "github.com/iliyamo/video-rental/internal/metrics"
    "github.com/iliyamo/video-rental/internal/middleware"
    "github.com/iliyamo/video-rental/internal/service"
)

// Deps carries everything the HTTP layer needs.  Redis and Events may be
// nil: caching is then disabled, rate limiting runs in-process and rental
// events are dropped.
type Deps struct {
    Cfg       config.Config
    DB        *sql.DB
    Redis     *redis.Client
    Cache     config.CacheConfig
    RateLimit config.RateLimitConfig
    Registry  *prometheus.Registry
    Metrics   *metrics.Metrics
    Events    service.EventPublisher
    Log       *zap.Logger
}

// New returns a configured Echo instance with all routes registered.
func New(d Deps) *echo.Echo {
    e := echo.New()
    e.HideBanner = true
    e.HidePort = true
    e.HTTPErrorHandler = errorHandler(d.Log)

    e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
    e.Use(middleware.RequestLogger(d.Log))
    e.Use(middleware.Metrics(d.Metrics))
    e.Use(echomw.Recover())

    RegisterRoutes(e, d.Registry)
    RegisterAPI(e, d)
    return e
}

// RegisterRoutes registers the operational endpoints.
func RegisterRoutes(e *echo.Echo, reg *prometheus.Registry) {
    e.GET("/healthz", handler.Health)
    if reg != nil {
        e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
    }
}

// errorHandler renders errors that escape handlers, such as unknown
// routes, wrong methods and recovered panics, in the API's error shape.
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }
        status := http.StatusInternalServerError
        msg := "something failed"
        var he *echo.HTTPError
        if errors.As(err, &he) && he.Code != http.StatusInternalServerError {
            status = he.Code
            msg = http.StatusText(he.Code)
            if s, ok := he.Message.(string); ok {
                msg = s
            }
        } else {
            log.Error("unhandled error",
                zap.String("path", c.Request().URL.Path),
                zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
                zap.Error(err))
        }
        if c.Request().Method == http.MethodHead {
            _ = c.NoContent(status)
            return
        }
        _ = c.JSON(status, echo.Map{"error": msg})
    }
}
