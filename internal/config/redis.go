package config

// Redis backs the layout read-through cache and the distributed rate
// limiter.  If the server cannot be reached at startup the constructor
// returns nil and callers run without either.

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/seating-designer/internal/logging"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//   REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//   REDIS_ADDR – host:port shorthand, used when host/port are not both set
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1"
// The returned client is nil if a connection cannot be established.
func NewRedisClient() *redis.Client {
    lg := logging.Component("redis")
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
        addr = host + ":" + port
    }
    var tlsConf *tls.Config
    if envBool("REDIS_TLS", false) {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  envStr("REDIS_PASSWORD", ""),
        DB:        envInt("REDIS_DB", 0),
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        lg.Warn().Err(err).Str("addr", addr).Msg("redis unavailable; cache and rate limiting disabled")
        _ = client.Close()
        return nil
    }
    lg.Info().Str("addr", addr).Msg("redis connected")
    return client
}
