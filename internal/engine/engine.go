// engine.go

package engine

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jacl-coder/RuneForge-Server/internal/catalog"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
	"github.com/jacl-coder/RuneForge-Server/internal/storage"
)

// PlayerRepository 玩家档案仓库
type PlayerRepository interface {
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	SavePlayer(ctx context.Context, p *models.Player) error
}

// SoloRepository 单人战斗会话仓库
type SoloRepository interface {
	GetSolo(ctx context.Context, playerID string) (*models.SoloBattle, error)
	SaveSolo(ctx context.Context, b *models.SoloBattle) error
	DeleteSolo(ctx context.Context, playerID string) error
}

// RaidRepository 团战会话仓库
type RaidRepository interface {
	GetRaid(ctx context.Context, id string) (*models.Raid, error)
	SaveRaid(ctx context.Context, r *models.Raid) error
	DeleteRaid(ctx context.Context, id string) error
	ListRaidIDs(ctx context.Context) ([]string, error)
}

// LeaderboardUpdater 排行榜写入
type LeaderboardUpdater interface {
	UpdatePlayer(ctx context.Context, playerID string, level int, exp int64) error
}

// Deps 引擎依赖
type Deps struct {
	Players     PlayerRepository
	Solos       SoloRepository
	Raids       RaidRepository
	Locker      storage.Locker
	Leaderboard LeaderboardUpdater
}

// Rules 引擎规则参数
type Rules struct {
	Raid             RaidRules
	ExpMultiplier    int64
	HealAmount       int
	ManaPotionAmount int
	DigManaCost      int
	HuntManaCost     int
	LockTimeout      time.Duration
}

// DefaultRules 默认规则
func DefaultRules() Rules {
	return Rules{
		Raid:             DefaultRaidRules(),
		ExpMultiplier:    3,
		HealAmount:       5,
		ManaPotionAmount: 30,
		DigManaCost:      5,
		HuntManaCost:     10,
		LockTimeout:      3 * time.Second,
	}
}

// Engine 进度与战斗引擎
type Engine struct {
	catalog     *catalog.Catalog
	players     PlayerRepository
	solos       SoloRepository
	raids       RaidRepository
	locker      storage.Locker
	leaderboard LeaderboardUpdater

	rules Rules
	dice  Dice
	now   func() time.Time
	newID func() string
}

// Option 引擎选项
type Option func(*Engine)

// WithClock 注入时间来源
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithDice 注入随机数来源
func WithDice(d Dice) Option {
	return func(e *Engine) { e.dice = d }
}

// WithRules 覆盖默认规则
func WithRules(r Rules) Option {
	return func(e *Engine) { e.rules = r }
}

// WithIDGenerator 注入团战ID生成器
func WithIDGenerator(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

// New 创建引擎
func New(c *catalog.Catalog, deps Deps, opts ...Option) *Engine {
	e := &Engine{
		catalog:     c,
		players:     deps.Players,
		solos:       deps.Solos,
		raids:       deps.Raids,
		locker:      deps.Locker,
		leaderboard: deps.Leaderboard,
		rules:       DefaultRules(),
		dice:        NewDice(time.Now().UnixNano()),
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.locker == nil {
		e.locker = storage.NewMemoryLocker()
	}
	return e
}

// Catalog 静态游戏数据
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Rules 当前规则
func (e *Engine) Rules() Rules {
	return e.rules
}

func playerKey(id string) string { return "player:" + id }
func raidKey(id string) string   { return "raid:" + id }

// withLocks 依次获取键锁后执行 fn。团战键先于玩家键，玩家键按字典序，避免死锁。
func (e *Engine) withLocks(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	lockCtx := ctx
	if e.rules.LockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, e.rules.LockTimeout)
		defer cancel()
	}

	unlocks := make([]func(), 0, len(keys))
	defer func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}()

	for _, key := range orderKeys(keys) {
		unlock, err := e.locker.Lock(lockCtx, key)
		if err != nil {
			return storageErr("获取锁失败", err)
		}
		unlocks = append(unlocks, unlock)
	}
	return fn(ctx)
}

func orderKeys(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	var raids, players []string
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		if strings.HasPrefix(k, "raid:") {
			raids = append(raids, k)
		} else {
			players = append(players, k)
		}
	}
	sort.Strings(raids)
	sort.Strings(players)
	return append(raids, players...)
}

// loadPlayer 读取玩家档案，首次引用时按默认值创建（尚未持久化）
func (e *Engine) loadPlayer(ctx context.Context, id string) (*models.Player, error) {
	if id == "" {
		return nil, ErrInvalidTarget
	}
	p, err := e.players.GetPlayer(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.NewPlayer(id, e.now()), nil
	}
	if err != nil {
		return nil, storageErr("读取玩家档案失败", err)
	}
	return p, nil
}

func (e *Engine) savePlayer(ctx context.Context, p *models.Player) error {
	p.UpdatedAt = e.now()
	if err := e.players.SavePlayer(ctx, p); err != nil {
		return storageErr("保存玩家档案失败", err)
	}
	return nil
}

// mutatePlayer 加锁读取玩家档案，执行 fn 后持久化；fn 返回错误时不写入
func (e *Engine) mutatePlayer(ctx context.Context, id string, fn func(p *models.Player) error) (*models.Player, error) {
	var out *models.Player
	err := e.withLocks(ctx, []string{playerKey(id)}, func(ctx context.Context) error {
		p, err := e.loadPlayer(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := e.savePlayer(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// afterProgress 战力、计数或标记变化后更新最高战力并检查任务
func (e *Engine) afterProgress(p *models.Player) []string {
	trackPower(p, ResolveStats(p, e.catalog))
	return EvaluateQuests(p, e.now())
}

func (e *Engine) updateLeaderboard(ctx context.Context, p *models.Player) {
	if e.leaderboard == nil {
		return
	}
	if err := e.leaderboard.UpdatePlayer(ctx, p.ID, p.Level, p.Exp); err != nil {
		log.Printf("更新排行榜失败: 玩家 %s: %v", p.ID, err)
	}
}
