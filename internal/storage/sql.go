// sql.go

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// sqlDialect 不同数据库的语句
type sqlDialect struct {
	name     string
	getSQL   string
	putSQL   string
	delSQL   string
	keysSQL  string
	ownsConn bool
}

var postgresDialect = sqlDialect{
	name:   "postgres",
	getSQL: `SELECT value FROM kv_records WHERE bucket = $1 AND key = $2`,
	putSQL: `INSERT INTO kv_records (bucket, key, value, updated_at) VALUES ($1, $2, $3, NOW())
		ON CONFLICT (bucket, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	delSQL:  `DELETE FROM kv_records WHERE bucket = $1 AND key = $2`,
	keysSQL: `SELECT key FROM kv_records WHERE bucket = $1 ORDER BY key`,
}

var sqliteDialect = sqlDialect{
	name:   "sqlite",
	getSQL: `SELECT value FROM kv_records WHERE bucket = ? AND key = ?`,
	putSQL: `INSERT INTO kv_records (bucket, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (bucket, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	delSQL:   `DELETE FROM kv_records WHERE bucket = ? AND key = ?`,
	keysSQL:  `SELECT key FROM kv_records WHERE bucket = ? ORDER BY key`,
	ownsConn: true,
}

// SQLKV 基于 kv_records 表的键值存储，支持PostgreSQL与SQLite
type SQLKV struct {
	db      *sql.DB
	dialect sqlDialect
}

// NewPostgresKV 使用已建立的PostgreSQL连接
func NewPostgresKV(conn *sql.DB) *SQLKV {
	return &SQLKV{db: conn, dialect: postgresDialect}
}

// NewSQLiteKV 使用已建立的SQLite连接，关闭存储时一并关闭连接
func NewSQLiteKV(conn *sql.DB) *SQLKV {
	return &SQLKV{db: conn, dialect: sqliteDialect}
}

// Get 读取记录
func (s *SQLKV) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := validate(ctx, bucket, key); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("存储未配置")
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.getSQL, bucket, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s读取记录失败: %w", s.dialect.name, err)
	}
	return value, nil
}

// Put 写入记录
func (s *SQLKV) Put(ctx context.Context, bucket, key string, value []byte) error {
	if err := validate(ctx, bucket, key); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("存储未配置")
	}

	args := []interface{}{bucket, key, value}
	if s.dialect.name == sqliteDialect.name {
		args = append(args, time.Now().UTC().UnixMilli())
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.putSQL, args...); err != nil {
		return fmt.Errorf("%s写入记录失败: %w", s.dialect.name, err)
	}
	return nil
}

// Delete 删除记录
func (s *SQLKV) Delete(ctx context.Context, bucket, key string) error {
	if err := validate(ctx, bucket, key); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("存储未配置")
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.delSQL, bucket, key); err != nil {
		return fmt.Errorf("%s删除记录失败: %w", s.dialect.name, err)
	}
	return nil
}

// Keys 列出分区内所有键
func (s *SQLKV) Keys(ctx context.Context, bucket string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("存储未配置")
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.keysSQL, bucket)
	if err != nil {
		return nil, fmt.Errorf("%s查询键失败: %w", s.dialect.name, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%s扫描键失败: %w", s.dialect.name, err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close 关闭自身持有的连接，共享的PostgreSQL连接由 pkg/db 负责关闭
func (s *SQLKV) Close() error {
	if s == nil || s.db == nil || !s.dialect.ownsConn {
		return nil
	}
	return s.db.Close()
}
