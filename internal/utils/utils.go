package utils

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func NewID() string {
	return uuid.NewString()
}

// NewRedisClient returns nil when addr is empty; live events then stay on this instance.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	if db < 0 {
		return nil, fmt.Errorf("invalid redis db index %d", db)
	}
	return redis.NewClient(
		&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}), nil
}
