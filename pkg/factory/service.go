package factory

import (
	"time"

	"github.com/Vijayesvar/PLEDG-MF/pkg/ratelimit"
	"github.com/go-redis/redis/v8"
)

type RateLimiterFactory interface {
	// CreateRateLimiter builds a limiter whose Redis keys live under
	// "ratelimit:<name>:" so it never shares a window with another route.
	CreateRateLimiter(name string, requests int, window time.Duration) ratelimit.RateLimiter
}

type DefaultRateLimiterFactory struct {
	redis  *redis.Client
	logger ratelimit.Logger
}

// NewDefaultRateLimiterFactory falls back to in-memory limiters when client is nil.
func NewDefaultRateLimiterFactory(client *redis.Client, logger ratelimit.Logger) *DefaultRateLimiterFactory {
	return &DefaultRateLimiterFactory{redis: client, logger: logger}
}

func (f *DefaultRateLimiterFactory) CreateRateLimiter(name string, requests int, window time.Duration) ratelimit.RateLimiter {
	config := &ratelimit.RateLimitConfig{
		Requests:  requests,
		Window:    window,
		Redis:     f.redis,
		KeyPrefix: "ratelimit:" + name + ":",
	}
	if f.logger != nil {
		config.Logger = f.logger
	}
	return ratelimit.NewRateLimiter(config)
}
