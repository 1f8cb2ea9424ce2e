package config

import "time"

// RateLimitConfig tunes the Redis token bucket in front of the layout and
// editor APIs.  Capacity is the burst size and RefillTokens are added back
// every RefillInterval.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration // idle buckets expire after TTL
    KeyStrategy    string        // ip, user, route or a combination such as user_route
    Prefix         string
    Debug          bool // log limiter decisions and expose the bucket key
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  Layout saves are rare
// and editor calls are interactive, so the defaults allow short bursts.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 120),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 2),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "user_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    cfg.clamp()
    return cfg
}

// clamp keeps the bucket usable whatever the environment says.  A bucket
// must outlive several refills or it would reset to full capacity.
func (c *RateLimitConfig) clamp() {
    c.Capacity = max(c.Capacity, 1)
    c.RefillTokens = max(c.RefillTokens, 1)
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    c.TTL = max(c.TTL, 5*c.RefillInterval)
}
