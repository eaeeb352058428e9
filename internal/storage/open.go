// open.go

package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/jacl-coder/RuneForge-Server/config"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
	"github.com/jacl-coder/RuneForge-Server/pkg/db"
)

// Leaderboard 排行榜
type Leaderboard interface {
	UpdatePlayer(ctx context.Context, playerID string, level int, exp int64) error
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	Rank(ctx context.Context, playerID string) (int, error)
}

// Stores 按配置组装好的存储组件
type Stores struct {
	// Records 玩家档案与团战会话的持久化仓库
	Records *Repository
	// Sessions 单人战斗会话仓库
	Sessions    *Repository
	Locker      Locker
	Leaderboard Leaderboard
}

// Close 关闭自身持有的存储
func (s *Stores) Close() {
	if err := s.Records.KV().Close(); err != nil {
		log.Printf("关闭持久化存储失败: %v", err)
	}
	if s.Sessions != s.Records {
		if err := s.Sessions.KV().Close(); err != nil {
			log.Printf("关闭会话存储失败: %v", err)
		}
	}
}

// Open 根据配置打开存储，PostgreSQL与Redis连接需由调用方先行初始化
func Open(cfg *config.Config) (*Stores, error) {
	records, err := openRecords(cfg)
	if err != nil {
		return nil, err
	}

	stores := &Stores{Records: NewRepository(records)}

	switch cfg.Storage.SessionDriver {
	case "redis":
		if db.RedisClient == nil {
			return nil, fmt.Errorf("会话后端为redis但Redis未初始化")
		}
		stores.Sessions = NewRepository(NewRedisKV(db.RedisClient, "runeforge:session"))
		stores.Locker = NewRedisLocker(db.RedisClient, 4*cfg.Engine.LockTimeout)
	default:
		stores.Sessions = NewRepository(NewMemoryKV())
		stores.Locker = NewMemoryLocker()
	}

	if db.RedisClient != nil {
		stores.Leaderboard = NewRedisLeaderboard(db.RedisClient)
	} else {
		stores.Leaderboard = NewMemoryLeaderboard()
	}

	log.Printf("存储已就绪: 持久化=%s 会话=%s", cfg.Storage.Driver, cfg.Storage.SessionDriver)
	return stores, nil
}

func openRecords(cfg *config.Config) (KV, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		if db.DB == nil {
			return nil, fmt.Errorf("存储后端为postgres但数据库未初始化")
		}
		if err := db.InitAllTables(); err != nil {
			return nil, fmt.Errorf("初始化数据库表失败: %w", err)
		}
		return NewPostgresKV(db.DB), nil
	case "sqlite":
		conn, err := db.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteKV(conn), nil
	case "bolt":
		boltDB, err := db.OpenBolt(cfg.Storage.BoltPath)
		if err != nil {
			return nil, err
		}
		kv, err := NewBoltKV(boltDB, BucketPlayers, BucketRaids)
		if err != nil {
			_ = boltDB.Close()
			return nil, err
		}
		return kv, nil
	case "redis":
		if db.RedisClient == nil {
			return nil, fmt.Errorf("存储后端为redis但Redis未初始化")
		}
		return NewRedisKV(db.RedisClient, "runeforge"), nil
	case "memory":
		return NewMemoryKV(), nil
	}
	return nil, fmt.Errorf("未知的存储后端: %s", cfg.Storage.Driver)
}
