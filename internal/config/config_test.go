package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestLoadSQLiteDefaults(t *testing.T) {
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("DB_DRIVER", "SQLite")
    t.Setenv("RABBITMQ_URL", "")
    t.Setenv("AMQP_URL", "amqp://broker:5672/")

    cfg := Load()
    assert.Equal(t, "sqlite", cfg.DBDriver)
    assert.Equal(t, "./data/vidly.db", cfg.SQLitePath)
    assert.Equal(t, "3000", cfg.Port)
    assert.Equal(t, 10, cfg.BcryptCost)
    assert.Equal(t, "amqp://broker:5672/", cfg.AMQPURL)
    assert.False(t, cfg.EventsEnabled)
    assert.Equal(t, "logs", cfg.EventLogDir)
}

func TestLoadMySQL(t *testing.T) {
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("DB_DRIVER", "mysql")
    t.Setenv("DB_USER", "vidly")
    t.Setenv("DB_HOST", "db")
    t.Setenv("DB_PORT", "3306")
    t.Setenv("DB_NAME", "vidly")
    t.Setenv("EVENTS_ENABLED", "yes")
    t.Setenv("RABBITMQ_URL", "amqp://rabbit/")

    cfg := Load()
    assert.Equal(t, "db", cfg.DBHost)
    assert.True(t, cfg.EventsEnabled)
    assert.Equal(t, "amqp://rabbit/", cfg.AMQPURL)
}

func TestRateLimitConfigClamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    cfg := LoadRateLimitConfig()
    assert.Equal(t, 1, cfg.Capacity)
    assert.Equal(t, 2*time.Second, cfg.RefillInterval)
    assert.Equal(t, 10*time.Second, cfg.TTL)
    assert.Equal(t, "vidly:rl", cfg.Prefix)
}

func TestCacheConfigMethods(t *testing.T) {
    t.Setenv("CACHE_METHODS", " get , head")
    t.Setenv("CACHE_TTL", "nonsense")

    cfg := LoadCacheConfig()
    assert.True(t, cfg.Methods["GET"])
    assert.True(t, cfg.Methods["HEAD"])
    assert.False(t, cfg.Methods["POST"])
    assert.Equal(t, time.Second, cfg.TTL)
}
