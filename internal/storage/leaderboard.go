// leaderboard.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
)

// LeaderboardLevelKey 等级排行榜Redis键名
const LeaderboardLevelKey = "leaderboard:level"

// levelScale 分数 = 等级 * levelScale + 当前经验
const levelScale = 1_000_000_000

// LevelScore 等级与经验折算成排序分数
func LevelScore(level int, exp int64) float64 {
	if exp >= levelScale {
		exp = levelScale - 1
	}
	return float64(int64(level)*levelScale + exp)
}

func splitScore(score float64) (int, int64) {
	s := int64(score)
	return int(s / levelScale), s % levelScale
}

// RedisLeaderboard Redis排行榜管理器
type RedisLeaderboard struct {
	client *redis.Client
	key    string
}

// NewRedisLeaderboard 创建Redis排行榜管理器
func NewRedisLeaderboard(client *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{client: client, key: LeaderboardLevelKey}
}

// UpdatePlayer 更新玩家分数
func (rl *RedisLeaderboard) UpdatePlayer(ctx context.Context, playerID string, level int, exp int64) error {
	return rl.client.ZAdd(ctx, rl.key, &redis.Z{
		Score:  LevelScore(level, exp),
		Member: playerID,
	}).Err()
}

// Top 获取排行榜（按分数降序）
func (rl *RedisLeaderboard) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	members, err := rl.client.ZRevRangeWithScores(ctx, rl.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("读取排行榜失败: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(members))
	for i, member := range members {
		playerID, ok := member.Member.(string)
		if !ok {
			continue
		}
		level, exp := splitScore(member.Score)
		entries = append(entries, models.LeaderboardEntry{
			PlayerID: playerID,
			Level:    level,
			Exp:      exp,
			Rank:     i + 1,
		})
	}
	return entries, nil
}

// Rank 获取玩家排名，不在榜上时返回 -1
func (rl *RedisLeaderboard) Rank(ctx context.Context, playerID string) (int, error) {
	rank, err := rl.client.ZRevRank(ctx, rl.key, playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	// Redis排名从0开始
	return int(rank) + 1, nil
}

// MemoryLeaderboard 进程内排行榜，未配置Redis时使用
type MemoryLeaderboard struct {
	mu     sync.RWMutex
	scores map[string]float64
}

// NewMemoryLeaderboard 创建进程内排行榜
func NewMemoryLeaderboard() *MemoryLeaderboard {
	return &MemoryLeaderboard{scores: make(map[string]float64)}
}

// UpdatePlayer 更新玩家分数
func (ml *MemoryLeaderboard) UpdatePlayer(ctx context.Context, playerID string, level int, exp int64) error {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.scores[playerID] = LevelScore(level, exp)
	return nil
}

func (ml *MemoryLeaderboard) sorted() []string {
	ids := make([]string, 0, len(ml.scores))
	for id := range ml.scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := ml.scores[ids[i]], ml.scores[ids[j]]
		if si != sj {
			return si > sj
		}
		return ids[i] > ids[j]
	})
	return ids
}

// Top 获取排行榜
func (ml *MemoryLeaderboard) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	ids := ml.sorted()
	if len(ids) > limit {
		ids = ids[:limit]
	}
	entries := make([]models.LeaderboardEntry, 0, len(ids))
	for i, id := range ids {
		level, exp := splitScore(ml.scores[id])
		entries = append(entries, models.LeaderboardEntry{PlayerID: id, Level: level, Exp: exp, Rank: i + 1})
	}
	return entries, nil
}

// Rank 获取玩家排名，不在榜上时返回 -1
func (ml *MemoryLeaderboard) Rank(ctx context.Context, playerID string) (int, error) {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	for i, id := range ml.sorted() {
		if id == playerID {
			return i + 1, nil
		}
	}
	return -1, nil
}
