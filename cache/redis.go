package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect открывает соединение с Redis и проверяет его пингом.
func Connect(addr string, db int, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       db,
		PoolSize: 100,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			fmt.Printf("failed to close redis client after ping error: %v\n", closeErr)
		}
		return nil, fmt.Errorf("failed to ping redis within %v: %w", timeout, err)
	}

	return client, nil
}
