// redis.go

package db

import (
	"context"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/jacl-coder/RuneForge-Server/config"
)

var (
	// RedisClient 全局Redis客户端实例
	RedisClient *redis.Client
)

// InitRedis 初始化Redis连接
func InitRedis() error {
	redisConfig := config.GlobalConfig.Redis

	RedisClient = redis.NewClient(&redis.Options{
		Addr:        redisConfig.GetRedisAddr(),
		Password:    redisConfig.Password,
		DB:          redisConfig.DB,
		PoolSize:    redisConfig.PoolSize,
		DialTimeout: redisConfig.DialTimeout,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), redisConfig.DialTimeout)
	defer cancel()

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("Redis连接失败: %w", err)
	}

	log.Printf("成功连接到Redis服务器 %s (连接池 %d)", redisConfig.GetRedisAddr(), redisConfig.PoolSize)
	return nil
}

// CloseRedis 关闭Redis连接
func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			log.Printf("关闭Redis连接时发生错误: %v", err)
			return
		}
		log.Println("Redis连接已关闭")
	}
}
