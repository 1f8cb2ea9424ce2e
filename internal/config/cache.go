package config

import "time"

// CacheConfig defines settings for the Redis read-through cache in front of
// the layout store.  When Enabled is false or no Redis client is configured,
// every read goes to MySQL.  TTL bounds how long a cached layout lives;
// replaces invalidate the entry immediately.
type CacheConfig struct {
    Enabled bool
    TTL     time.Duration
    Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled: envBool("CACHE_ENABLED", true),
        TTL:     envDur("CACHE_TTL", 5*time.Minute),
        Prefix:  envStr("CACHE_PREFIX", "layout"),
    }
}
