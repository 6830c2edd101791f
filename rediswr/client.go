// Package rediswr wraps the Redis client and the distributed lock that keeps
// two service instances from loading the same entity at once.
package rediswr

import (
	"context"
	"strings"

	"github.com/code19m/errx"
	"github.com/redis/go-redis/v9"
)

// New creates a client for a single node, or for a cluster when cfg.Cluster is set.
func New(cfg Config) redis.UniversalClient {
	addrs := strings.Split(cfg.Addrs, ",")
	for i := range addrs {
		addrs[i] = strings.TrimSpace(addrs[i])
	}
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:         addrs,
		Username:      cfg.Username,
		Password:      cfg.Password,
		DB:            cfg.DB,
		IsClusterMode: cfg.Cluster,
	})
}

// Ping checks that the server answers.
func Ping(ctx context.Context, client redis.Cmdable) error {
	return errx.Wrap(client.Ping(ctx).Err(), errx.WithCode(CodeUnavailable), errx.WithType(errx.T_Internal))
}
