// redis.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"
)

// RedisKV 基于Redis的键值存储，每个分区额外维护一个键集合用于枚举
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV 创建Redis键值存储
func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	if prefix == "" {
		prefix = "runeforge"
	}
	return &RedisKV{client: client, prefix: prefix}
}

func (s *RedisKV) recordKey(bucket, key string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, bucket, key)
}

func (s *RedisKV) indexKey(bucket string) string {
	return fmt.Sprintf("%s:%s:keys", s.prefix, bucket)
}

// Get 读取记录
func (s *RedisKV) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := validate(ctx, bucket, key); err != nil {
		return nil, err
	}
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("存储未配置")
	}

	value, err := s.client.Get(ctx, s.recordKey(bucket, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Redis读取记录失败: %w", err)
	}
	return value, nil
}

// Put 写入记录
func (s *RedisKV) Put(ctx context.Context, bucket, key string, value []byte) error {
	if err := validate(ctx, bucket, key); err != nil {
		return err
	}
	if s == nil || s.client == nil {
		return fmt.Errorf("存储未配置")
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(bucket, key), value, 0)
		pipe.SAdd(ctx, s.indexKey(bucket), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("Redis写入记录失败: %w", err)
	}
	return nil
}

// Delete 删除记录
func (s *RedisKV) Delete(ctx context.Context, bucket, key string) error {
	if err := validate(ctx, bucket, key); err != nil {
		return err
	}
	if s == nil || s.client == nil {
		return fmt.Errorf("存储未配置")
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.recordKey(bucket, key))
		pipe.SRem(ctx, s.indexKey(bucket), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("Redis删除记录失败: %w", err)
	}
	return nil
}

// Keys 列出分区内所有键
func (s *RedisKV) Keys(ctx context.Context, bucket string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("存储未配置")
	}

	keys, err := s.client.SMembers(ctx, s.indexKey(bucket)).Result()
	if err != nil {
		return nil, fmt.Errorf("Redis查询键失败: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close 客户端由 pkg/db 统一关闭
func (s *RedisKV) Close() error {
	return nil
}
