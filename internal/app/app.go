// app.go

package app

import (
	"fmt"
	"log"

	"github.com/jacl-coder/RuneForge-Server/config"
	"github.com/jacl-coder/RuneForge-Server/internal/auth"
	"github.com/jacl-coder/RuneForge-Server/internal/catalog"
	"github.com/jacl-coder/RuneForge-Server/internal/engine"
	"github.com/jacl-coder/RuneForge-Server/internal/storage"
	"github.com/jacl-coder/RuneForge-Server/pkg/db"
)

// App 按配置组装好的运行时组件
type App struct {
	Config   *config.Config
	Stores   *storage.Stores
	Engine   *engine.Engine
	Verifier *auth.Verifier
}

// Build 建立数据库连接、打开存储并创建引擎
func Build(cfg *config.Config) (*App, error) {
	if cfg.Storage.Driver == "postgres" {
		if err := db.InitPostgres(); err != nil {
			return nil, fmt.Errorf("初始化PostgreSQL失败: %w", err)
		}
	}
	if cfg.NeedsRedis() {
		if err := db.InitRedis(); err != nil {
			db.Close()
			return nil, fmt.Errorf("初始化Redis失败: %w", err)
		}
	}

	stores, err := storage.Open(cfg)
	if err != nil {
		closeConnections()
		return nil, err
	}

	opts := []engine.Option{engine.WithRules(Rules(cfg.Engine))}
	if cfg.Engine.RandomSeed != 0 {
		log.Printf("使用固定随机种子: %d", cfg.Engine.RandomSeed)
		opts = append(opts, engine.WithDice(engine.NewDice(cfg.Engine.RandomSeed)))
	}

	eng := engine.New(catalog.Default(), engine.Deps{
		Players:     stores.Records,
		Solos:       stores.Sessions,
		Raids:       stores.Records,
		Locker:      stores.Locker,
		Leaderboard: stores.Leaderboard,
	}, opts...)

	return &App{
		Config:   cfg,
		Stores:   stores,
		Engine:   eng,
		Verifier: auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer),
	}, nil
}

// Close 关闭存储与全局连接
func (a *App) Close() {
	a.Stores.Close()
	closeConnections()
}

func closeConnections() {
	db.Close()
	db.CloseRedis()
}

// Rules 由配置生成引擎规则，未配置的项使用默认值
func Rules(c config.EngineConfig) engine.Rules {
	r := engine.DefaultRules()
	if c.RaidEntryFee > 0 {
		r.Raid.EntryFee = c.RaidEntryFee
	}
	if c.RaidJoinWindow > 0 {
		r.Raid.JoinWindow = c.RaidJoinWindow
	}
	if c.RaidCapacity > 0 {
		r.Raid.Capacity = c.RaidCapacity
	}
	if c.RaidMinPlayers > 0 {
		r.Raid.MinParticipants = c.RaidMinPlayers
	}
	if c.RaidDefendBonus > 0 {
		r.Raid.DefendBonus = c.RaidDefendBonus
	}
	if c.RaidRetention > 0 {
		r.Raid.Retention = c.RaidRetention
	}
	if c.ExpMultiplier > 0 {
		r.ExpMultiplier = c.ExpMultiplier
	}
	if c.HealAmount > 0 {
		r.HealAmount = c.HealAmount
	}
	if c.ManaPotionAmount > 0 {
		r.ManaPotionAmount = c.ManaPotionAmount
	}
	if c.DigManaCost > 0 {
		r.DigManaCost = c.DigManaCost
	}
	if c.HuntManaCost > 0 {
		r.HuntManaCost = c.HuntManaCost
	}
	if c.LockTimeout > 0 {
		r.LockTimeout = c.LockTimeout
	}
	return r
}
