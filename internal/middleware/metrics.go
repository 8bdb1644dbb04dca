package middleware

import (
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/video-rental/internal/metrics"
)

// Metrics records the status and latency of every request under its
// route pattern.  Paths that match no route share one label.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            if err := next(c); err != nil {
                c.Error(err)
            }
            route := c.Path()
            if route == "" {
                route = "unmatched"
            }
            m.ObserveHTTP(c.Request().Method, route, c.Response().Status, time.Since(start))
            return nil
        }
    }
}
