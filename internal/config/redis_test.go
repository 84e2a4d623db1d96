package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisAddr(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		assert.Equal(t, "localhost:6379", redisAddr())
	})

	t.Run("host and port", func(t *testing.T) {
		t.Setenv("REDIS_HOST", "cache.internal")
		t.Setenv("REDIS_PORT", "6380")
		assert.Equal(t, "cache.internal:6380", redisAddr())
	})

	t.Run("addr wins over host and port", func(t *testing.T) {
		t.Setenv("REDIS_HOST", "cache.internal")
		t.Setenv("REDIS_PORT", "6380")
		t.Setenv("REDIS_ADDR", "override:6381")
		assert.Equal(t, "override:6381", redisAddr())
	})
}
