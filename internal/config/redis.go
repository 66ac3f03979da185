package config

import "sync"

type RedisConfig struct {
	URL string
}

var (
	redisConfig *RedisConfig
	redisOnce   sync.Once
)

func LoadRedisConfig() *RedisConfig {
	redisOnce.Do(func() {
		redisConfig = &RedisConfig{
			URL: getEnvWithDefault("REDIS_URL", "redis://localhost:6379/0"),
		}
	})
	return redisConfig
}
