package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/model"
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
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
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

func CacheUser(ctx context.Context, user *model.UserIdentity) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	key := fmt.Sprintf("user:%s", user.ID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, userJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache user: %w", err)
	}

	logger.Debug("User cached successfully", zap.String("userID", user.ID))
	return nil
}

func GetCachedUser(ctx context.Context, userID string) (*model.UserIdentity, error) {
	key := fmt.Sprintf("user:%s", userID)
	userJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("User not found in cache", zap.String("userID", userID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user from cache: %w", err)
	}

	var user model.UserIdentity
	err = json.Unmarshal([]byte(userJSON), &user)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &user, nil
}

func DeleteCachedUser(ctx context.Context, userID string) error {
	key := fmt.Sprintf("user:%s", userID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete user from cache: %w", err)
	}
	logger.Debug("User deleted from cache", zap.String("userID", userID))
	return nil
}

func CacheDepartment(ctx context.Context, department *model.Department) error {
	departmentJSON, err := json.Marshal(department)
	if err != nil {
		return fmt.Errorf("failed to marshal department: %w", err)
	}

	key := fmt.Sprintf("department:%s", department.ID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, departmentJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache department: %w", err)
	}

	logger.Debug("Department cached successfully", zap.String("departmentID", department.ID))
	return nil
}

func GetCachedDepartment(ctx context.Context, departmentID string) (*model.Department, error) {
	key := fmt.Sprintf("department:%s", departmentID)
	departmentJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Department not found in cache", zap.String("departmentID", departmentID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get department from cache: %w", err)
	}

	var department model.Department
	err = json.Unmarshal([]byte(departmentJSON), &department)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal department: %w", err)
	}

	return &department, nil
}

func DeleteCachedDepartment(ctx context.Context, departmentID string) error {
	key := fmt.Sprintf("department:%s", departmentID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete department from cache: %w", err)
	}
	logger.Debug("Department deleted from cache", zap.String("departmentID", departmentID))
	return nil
}

func CacheMenuList(ctx context.Context, menu *model.MenuAccessList) error {
	menuJSON, err := json.Marshal(menu)
	if err != nil {
		return fmt.Errorf("failed to marshal menu access list: %w", err)
	}

	key := fmt.Sprintf("menu:%s", menu.MenuName)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, menuJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache menu access list: %w", err)
	}

	logger.Debug("Menu access list cached", zap.String("menu", menu.MenuName))
	return nil
}

func GetCachedMenuList(ctx context.Context, menuName string) (*model.MenuAccessList, error) {
	key := fmt.Sprintf("menu:%s", menuName)
	menuJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get menu access list from cache: %w", err)
	}

	var menu model.MenuAccessList
	err = json.Unmarshal([]byte(menuJSON), &menu)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal menu access list: %w", err)
	}

	return &menu, nil
}

func DeleteCachedMenuList(ctx context.Context, menuName string) error {
	key := fmt.Sprintf("menu:%s", menuName)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete menu access list from cache: %w", err)
	}
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
