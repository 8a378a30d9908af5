package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisClient is an optional shared Redis client used for mini-program
// session caching and token revocation. It stays nil when REDIS_ADDR is not
// configured; every helper degrades to a no-op in that case.
var RedisClient *redis.Client

func init() {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return
	}
	opts := &redis.Options{Addr: addr}
	if p := os.Getenv("REDIS_PASS"); p != "" {
		opts.Password = p
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		var dbn int
		_, _ = fmt.Sscanf(dbStr, "%d", &dbn)
		opts.DB = dbn
	}
	rc := redis.NewClient(opts)
	if err := rc.Ping(context.Background()).Err(); err != nil {
		log.Printf("[redis] ping failed, continuing without session cache: %v", err)
		return
	}
	RedisClient = rc
}

// CacheSessionKey stores the provider session key for an openid so repeated
// logins within the TTL can skip the provider round trip.
func CacheSessionKey(ctx context.Context, openid, sessionKey string, ttl time.Duration) {
	if RedisClient == nil {
		return
	}
	if err := RedisClient.Set(ctx, "session:"+openid, sessionKey, ttl).Err(); err != nil {
		log.Printf("[redis] failed caching session for %s: %v", openid, err)
	}
}

// GetSessionKey returns the cached session key for an openid, or "".
func GetSessionKey(ctx context.Context, openid string) string {
	if RedisClient == nil {
		return ""
	}
	v, err := RedisClient.Get(ctx, "session:"+openid).Result()
	if err != nil {
		return ""
	}
	return v
}

// RevokeToken marks a token id as revoked until its natural expiry.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Set(ctx, "revoked:"+jti, "1", ttl).Err()
}

// IsTokenRevoked reports whether a token id has been revoked. Without a
// Redis store revocation is not tracked and every token is considered live.
func IsTokenRevoked(jti string) (bool, error) {
	if RedisClient == nil {
		return false, nil
	}
	n, err := RedisClient.Exists(context.Background(), "revoked:"+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
