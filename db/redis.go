// db/redis.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/model"
)

var RedisClient *redis.Client

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

// RedisBalanceCache stores balance cache entries in Redis. Entries carry
// no Redis TTL: freshness is decided by the oracle, and an expired-but-
// present entry is the degraded-mode fallback when all sources fail.
type RedisBalanceCache struct {
	client *redis.Client
}

func NewRedisBalanceCache(client *redis.Client) *RedisBalanceCache {
	return &RedisBalanceCache{client: client}
}

func balanceKey(wallet, mint string) string {
	return fmt.Sprintf("balance:%s:%s", wallet, mint)
}

func (c *RedisBalanceCache) Get(ctx context.Context, wallet, mint string) (*model.BalanceCacheEntry, error) {
	entryJSON, err := c.client.Get(ctx, balanceKey(wallet, mint)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get balance from cache: %w", err)
	}

	var entry model.BalanceCacheEntry
	if err := json.Unmarshal([]byte(entryJSON), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal balance entry: %w", err)
	}
	return &entry, nil
}

func (c *RedisBalanceCache) Set(ctx context.Context, entry model.BalanceCacheEntry) error {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal balance entry: %w", err)
	}

	err = c.client.Set(ctx, balanceKey(entry.Wallet, entry.Mint), entryJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to cache balance: %w", err)
	}

	logger.Debug("Balance cached",
		zap.String("wallet", model.ShortWallet(entry.Wallet)),
		zap.Float64("balance", entry.Balance))
	return nil
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}
