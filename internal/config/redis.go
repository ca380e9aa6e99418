package config

// Redis backs the lookup response cache and the lookup rate limiter.  Both
// are optional: when Redis is disabled or unreachable at startup the client
// is nil and the middlewares turn into pass-throughs.

import (
    "context"
    "crypto/tls"
    "log"
    "os"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//   REDIS_ENABLED – "false" skips Redis entirely (default true)
//   REDIS_URL – redis:// or rediss:// URL (takes precedence over the rest)
//   REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//   REDIS_ADDR – host:port shorthand (used when host/port are not both set)
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1"
//   REDIS_TLS_INSECURE – skip certificate verification (self-signed dev servers)
// The returned client is nil if Redis is disabled or cannot be reached.
func NewRedisClient() *redis.Client {
    if !envBool("REDIS_ENABLED", true) {
        return nil
    }
    opts, err := redisOptions()
    if err != nil {
        log.Printf("redis: invalid configuration: %v", err)
        return nil
    }
    client := redis.NewClient(opts)
    // Ping the server with a short timeout.  Return nil on failure.
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        log.Printf("redis: %s unreachable, cache and rate limit disabled: %v", opts.Addr, err)
        _ = client.Close()
        return nil
    }
    return client
}

// redisOptions builds client options; REDIS_URL wins over the discrete
// variables.
func redisOptions() (*redis.Options, error) {
    if url := os.Getenv("REDIS_URL"); url != "" {
        return redis.ParseURL(url)
    }
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    opts := &redis.Options{
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       envInt("REDIS_DB", 0),
    }
    if envBool("REDIS_TLS", false) {
        opts.TLSConfig = &tls.Config{
            MinVersion:         tls.VersionTLS12,
            InsecureSkipVerify: envBool("REDIS_TLS_INSECURE", false),
        }
    }
    return opts, nil
}
