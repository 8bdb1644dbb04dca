package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/video-rental/internal/config"
)

// dependents lists, per resource, the cached resources a successful write
// makes stale.  Opening or closing a rental moves movie stock.
var dependents = map[string][]string{
    "rentals": {"rentals", "movies"},
    "returns": {"rentals", "movies"},
}

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 || cw.size+int64(len(b)) <= cw.limit {
        cw.buf.Write(b)
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// resourceOf returns the first path segment after the API prefix, e.g.
// "movies" for "/api/movies/:id".
func resourceOf(route string) string {
    route = strings.TrimPrefix(route, "/api")
    route = strings.TrimPrefix(route, "/")
    if i := strings.IndexByte(route, '/'); i >= 0 {
        route = route[:i]
    }
    return route
}

// cacheKeyFrom builds "<prefix>:<resource>:<sha1>" so every entry of a
// resource can be dropped with one pattern.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    var tail string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        tail = r.Method + ":" + r.URL.Path
    default: // "route_query"
        tail = r.Method + ":" + r.URL.Path + "?" + r.URL.RawQuery
    }
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:%s:%x", cfg.Prefix, resourceOf(c.Path()), sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}

// NewRedisCache caches successful public reads in Redis and drops the
// cached entries of a resource whenever a write to it succeeds.  Requests
// that carry a token are never served from or stored in the cache.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            if !cfg.Methods[strings.ToUpper(req.Method)] {
                err := next(c)
                if err == nil && c.Response().Status < http.StatusBadRequest {
                    invalidate(req.Context(), cfg, rdb, log, resourceOf(c.Path()))
                }
                return err
            }
            if hasCredentials(req) {
                return next(c)
            }

            ctx := req.Context()
            key := cacheKeyFrom(cfg, c)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    _, _ = c.Response().Write(body)
                    return nil
                }
            } else if err != redis.Nil {
                log.Debug("cache read failed", zap.String("key", key), zap.Error(err))
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
                return nil
            }

            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            hdr.Del(echo.HeaderXRequestID)
            payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
            if err != nil {
                return nil
            }
            if err := rdb.SetEx(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
                log.Debug("cache write failed", zap.String("key", key), zap.Error(err))
            }
            return nil
        }
    }
}

// invalidate deletes every cached entry of resource and of the resources
// that depend on it.
func invalidate(ctx context.Context, cfg config.CacheConfig, rdb *redis.Client, log *zap.Logger, resource string) {
    if resource == "" {
        return
    }
    targets, ok := dependents[resource]
    if !ok {
        targets = []string{resource}
    }
    ctx = context.WithoutCancel(ctx)
    for _, res := range targets {
        pattern := cfg.Prefix + ":" + res + ":*"
        iter := rdb.Scan(ctx, 0, pattern, 100).Iterator()
        var keys []string
        for iter.Next(ctx) {
            keys = append(keys, iter.Val())
        }
        if err := iter.Err(); err != nil {
            log.Warn("cache scan failed", zap.String("pattern", pattern), zap.Error(err))
            continue
        }
        if len(keys) == 0 {
            continue
        }
        if err := rdb.Del(ctx, keys...).Err(); err != nil {
            log.Warn("cache invalidation failed", zap.String("resource", res), zap.Error(err))
        }
    }
}
