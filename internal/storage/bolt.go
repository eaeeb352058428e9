// bolt.go

package storage

import (
	"context"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"
)

// BoltKV 基于BoltDB的键值存储，每个分区对应一个bucket
type BoltKV struct {
	db *bbolt.DB
}

// NewBoltKV 使用已打开的BoltDB
func NewBoltKV(db *bbolt.DB, buckets ...string) (*BoltKV, error) {
	s := &BoltKV{db: db}
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("创建bucket %s 失败: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Get 读取记录
func (s *BoltKV) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := validate(ctx, bucket, key); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("存储未配置")
	}

	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return ErrNotFound
		}
		payload := b.Get([]byte(key))
		if payload == nil {
			return ErrNotFound
		}
		// 事务结束后payload失效，需要复制
		value = append([]byte(nil), payload...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put 写入记录
func (s *BoltKV) Put(ctx context.Context, bucket, key string, value []byte) error {
	if err := validate(ctx, bucket, key); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("存储未配置")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return fmt.Errorf("创建bucket %s 失败: %w", bucket, err)
		}
		return b.Put([]byte(key), value)
	})
}

// Delete 删除记录
func (s *BoltKV) Delete(ctx context.Context, bucket, key string) error {
	if err := validate(ctx, bucket, key); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("存储未配置")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// Keys 列出分区内所有键
func (s *BoltKV) Keys(ctx context.Context, bucket string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("存储未配置")
	}

	var keys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Close 关闭BoltDB
func (s *BoltKV) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
