package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Bucket scopes for RATE_LIMIT_KEY_STRATEGY.
const (
	RateKeyUser      = "user"       // one bucket per caller
	RateKeyUserRoute = "user_route" // one bucket per caller and route
)

// RateLimitConfig configures the Redis token bucket in front of the API.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

var rateLimitDefaults = map[string]any{
	"RATE_LIMIT_ENABLED":         false,
	"RATE_LIMIT_CAPACITY":        60,
	"RATE_LIMIT_REFILL_TOKENS":   1,
	"RATE_LIMIT_REFILL_INTERVAL": time.Second,
	"RATE_LIMIT_TTL":             10 * time.Minute,
	"RATE_LIMIT_KEY_STRATEGY":    RateKeyUserRoute,
	"RATE_LIMIT_PREFIX":          "rl",
	"RATE_LIMIT_DEBUG":           false,
	"RATE_LIMIT_BURST":           -1,
	"RATE_LIMIT_REFILL_EVERY":    time.Duration(0),
}

// LoadRateLimitConfig reads the RATE_LIMIT_* settings from v and clamps
// them to usable values.
func LoadRateLimitConfig(v *viper.Viper) RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        v.GetBool("RATE_LIMIT_ENABLED"),
		Capacity:       v.GetInt("RATE_LIMIT_CAPACITY"),
		RefillTokens:   v.GetInt("RATE_LIMIT_REFILL_TOKENS"),
		RefillInterval: v.GetDuration("RATE_LIMIT_REFILL_INTERVAL"),
		TTL:            v.GetDuration("RATE_LIMIT_TTL"),
		KeyStrategy:    strings.ToLower(v.GetString("RATE_LIMIT_KEY_STRATEGY")),
		Prefix:         v.GetString("RATE_LIMIT_PREFIX"),
		Debug:          v.GetBool("RATE_LIMIT_DEBUG"),
	}
	if b := v.GetInt("RATE_LIMIT_BURST"); b > 0 {
		def.Capacity = b
	}
	if every := v.GetDuration("RATE_LIMIT_REFILL_EVERY"); every > 0 {
		def.RefillTokens = 1
		def.RefillInterval = every
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
	if def.KeyStrategy != RateKeyUser {
		def.KeyStrategy = RateKeyUserRoute
	}
	if def.Prefix == "" {
		def.Prefix = "rl"
	}
	return def
}
