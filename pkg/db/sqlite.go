// sqlite.go

package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// MemoryDSN 内存数据库路径
const MemoryDSN = ":memory:"

// OpenSQLite 打开SQLite数据库并建立键值表
func OpenSQLite(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("SQLite路径不能为空")
	}

	dsn := MemoryDSN
	if path != MemoryDSN {
		cleanPath := filepath.Clean(path)
		if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
		dsn = cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开SQLite数据库失败: %w", err)
	}
	// 内存库每个连接都是独立的数据库，只保留一个连接
	if path == MemoryDSN {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("SQLite Ping失败: %w", err)
	}

	if _, err := sqlDB.Exec(CreateSQLiteTablesSQL); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("初始化SQLite表失败: %w", err)
	}

	log.Printf("成功打开SQLite数据库: %s", path)
	return sqlDB, nil
}
