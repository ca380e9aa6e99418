package config

import (
    "strings"
    "time"
)

// CacheConfig defines settings for the lookup response cache.
// When Enabled is false or no Redis client is configured, caching is disabled.
// Methods lists the HTTP methods to cache (e.g. GET, HEAD).  TTL bounds how
// stale a cached seat lookup may be after an add-range or clear; those
// operations also purge every key under Prefix.  KeyStrategy determines which
// parts of the request contribute to the cache key.  MaxBodyBytes caps the
// size of responses stored.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.  Defaults
// are used when variables are not set.  All methods are upper-cased.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "lookup"),
        Prefix:       envStr("CACHE_PREFIX", "seatcache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 64*1024),
    }
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}
