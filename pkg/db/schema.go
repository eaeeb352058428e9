// schema.go

package db

import "database/sql"

// 统一的数据库表结构定义

// CreateAllTablesSQL 创建所有表的SQL语句（PostgreSQL）
const CreateAllTablesSQL = `
-- 键值记录表：玩家档案、团战会话等按 bucket 分区存储
CREATE TABLE IF NOT EXISTS kv_records (
    bucket VARCHAR(50) NOT NULL,
    key VARCHAR(200) NOT NULL,
    value BYTEA NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (bucket, key)
);

CREATE INDEX IF NOT EXISTS idx_kv_records_updated_at ON kv_records(updated_at);
`

// CreateSQLiteTablesSQL 创建所有表的SQL语句（SQLite）
const CreateSQLiteTablesSQL = `
CREATE TABLE IF NOT EXISTS kv_records (
    bucket TEXT NOT NULL,
    key TEXT NOT NULL,
    value BLOB NOT NULL,
    updated_at INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (bucket, key)
);
`

// DropAllTablesSQL 删除所有表
const DropAllTablesSQL = `DROP TABLE IF EXISTS kv_records;`

// InitAllTables 初始化所有数据库表
func InitAllTables() error {
	return InitTables(DB, CreateAllTablesSQL)
}

// InitTables 在指定连接上执行建表语句
func InitTables(conn *sql.DB, ddl string) error {
	_, err := conn.Exec(ddl)
	if err != nil {
		return err
	}
	return nil
}

// DropAllTables 删除所有表
func DropAllTables(conn *sql.DB) error {
	_, err := conn.Exec(DropAllTablesSQL)
	return err
}
