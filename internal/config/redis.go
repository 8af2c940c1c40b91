package config

// Redis backs the distributed rate limiter. When it cannot be reached at
// startup the limiter is simply not installed.

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// RedisConfig holds the REDIS_* settings.
type RedisConfig struct {
	Addr     string // host:port; REDIS_HOST and REDIS_PORT take precedence over REDIS_ADDR
	Password string
	DB       int
	TLS      bool
}

var redisDefaults = map[string]any{
	"REDIS_HOST":     "",
	"REDIS_PORT":     "",
	"REDIS_ADDR":     "localhost:6379",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,
	"REDIS_TLS":      false,
}

// LoadRedisConfig reads the REDIS_* settings from v.
func LoadRedisConfig(v *viper.Viper) RedisConfig {
	addr := strings.TrimSpace(v.GetString("REDIS_ADDR"))
	if host, port := v.GetString("REDIS_HOST"), v.GetString("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	return RedisConfig{
		Addr:     addr,
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		TLS:      v.GetBool("REDIS_TLS"),
	}
}

// NewRedisClient connects to Redis and pings it with a short timeout.
// The returned client is nil if the server cannot be reached.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
