// memory.go

package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryKV 进程内键值存储
type MemoryKV struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

// NewMemoryKV 创建进程内键值存储
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{buckets: make(map[string]map[string][]byte)}
}

// Get 读取记录
func (m *MemoryKV) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := validate(ctx, bucket, key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.buckets[bucket][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Put 写入记录
func (m *MemoryKV) Put(ctx context.Context, bucket, key string, value []byte) error {
	if err := validate(ctx, bucket, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[bucket]
	if !ok {
		b = make(map[string][]byte)
		m.buckets[bucket] = b
	}
	b[key] = append([]byte(nil), value...)
	return nil
}

// Delete 删除记录，不存在时不报错
func (m *MemoryKV) Delete(ctx context.Context, bucket, key string) error {
	if err := validate(ctx, bucket, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.buckets[bucket], key)
	return nil
}

// Keys 列出分区内所有键
func (m *MemoryKV) Keys(ctx context.Context, bucket string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.buckets[bucket]))
	for k := range m.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close 无需释放资源
func (m *MemoryKV) Close() error {
	return nil
}
