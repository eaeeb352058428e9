// kv.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("记录不存在")

// 存储分区
const (
	BucketPlayers = "players"
	BucketSolos   = "solo_battles"
	BucketRaids   = "raids"
)

// KV 不透明的持久化键值存储，单键写入是原子的
type KV interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, value []byte) error
	Delete(ctx context.Context, bucket, key string) error
	Keys(ctx context.Context, bucket string) ([]string, error)
	Close() error
}

// validate 校验分区与键
func validate(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(bucket) == "" {
		return fmt.Errorf("bucket不能为空")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key不能为空")
	}
	return nil
}
