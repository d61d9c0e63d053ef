package factory

import (
	"context"
	"testing"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/pkg/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRateLimiter_InMemoryWithoutRedis(t *testing.T) {
	f := NewDefaultRateLimiterFactory(nil, nil)

	limiter := f.CreateRateLimiter("signup", 2, time.Minute)
	t.Cleanup(func() { _ = limiter.Close() })

	_, ok := limiter.(*ratelimit.InMemoryRateLimiter)
	require.True(t, ok)

	requests, window := limiter.GetLimitDetails()
	assert.Equal(t, 2, requests)
	assert.Equal(t, time.Minute, window)

	for i := 0; i < 2; i++ {
		limited, err := limiter.IsLimited(context.Background(), "client")
		require.NoError(t, err)
		assert.False(t, limited)
	}
	limited, err := limiter.IsLimited(context.Background(), "client")
	require.NoError(t, err)
	assert.True(t, limited)
}

func TestCreateRateLimiter_LimitersAreIndependent(t *testing.T) {
	f := NewDefaultRateLimiterFactory(nil, nil)
	a := f.CreateRateLimiter("a", 1, time.Minute)
	b := f.CreateRateLimiter("b", 1, time.Minute)

	limited, _ := a.IsLimited(context.Background(), "client")
	assert.False(t, limited)
	limited, _ = b.IsLimited(context.Background(), "client")
	assert.False(t, limited)
}
