package config

import "time"

// RateLimitConfig configures the token bucket applied to auth and booking
// endpoints. With Redis the bucket is shared across instances; without it
// each process keeps its own golang.org/x/time/rate limiters.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int           // bucket size (burst)
	RefillTokens   int           // tokens added per interval
	RefillInterval time.Duration // refill period
	TTL            time.Duration // idle bucket expiry
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// PerSecond converts the refill settings into a steady rate.
func (c RateLimitConfig) PerSecond() float64 {
	return float64(c.RefillTokens) / c.RefillInterval.Seconds()
}

func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 30),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "moviego:rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if rps := envFloat("RATE_LIMIT_RPS", 0); rps > 0 {
		def.RefillTokens = 1
		def.RefillInterval = time.Duration(float64(time.Second) / rps)
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	if minTTL := 5 * def.RefillInterval; def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}
