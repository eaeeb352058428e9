// repository.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jacl-coder/RuneForge-Server/internal/models"
)

// Repository 基于键值存储的类型化仓库，每次读取都返回独立副本
type Repository struct {
	kv KV
}

// NewRepository 创建仓库
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// KV 底层键值存储
func (r *Repository) KV() KV {
	return r.kv
}

func (r *Repository) load(ctx context.Context, bucket, key string, v interface{}) error {
	data, err := r.kv.Get(ctx, bucket, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("解析%s记录失败: %w", bucket, err)
	}
	return nil
}

func (r *Repository) store(ctx context.Context, bucket, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化%s记录失败: %w", bucket, err)
	}
	return r.kv.Put(ctx, bucket, key, data)
}

// GetPlayer 读取玩家档案
func (r *Repository) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	var p models.Player
	if err := r.load(ctx, BucketPlayers, id, &p); err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

// SavePlayer 保存玩家档案
func (r *Repository) SavePlayer(ctx context.Context, p *models.Player) error {
	return r.store(ctx, BucketPlayers, p.ID, p)
}

// ListPlayerIDs 列出所有玩家ID
func (r *Repository) ListPlayerIDs(ctx context.Context) ([]string, error) {
	return r.kv.Keys(ctx, BucketPlayers)
}

// GetSolo 读取单人战斗会话
func (r *Repository) GetSolo(ctx context.Context, playerID string) (*models.SoloBattle, error) {
	var b models.SoloBattle
	if err := r.load(ctx, BucketSolos, playerID, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// SaveSolo 保存单人战斗会话
func (r *Repository) SaveSolo(ctx context.Context, b *models.SoloBattle) error {
	return r.store(ctx, BucketSolos, b.PlayerID, b)
}

// DeleteSolo 删除单人战斗会话
func (r *Repository) DeleteSolo(ctx context.Context, playerID string) error {
	return r.kv.Delete(ctx, BucketSolos, playerID)
}

// GetRaid 读取团战会话
func (r *Repository) GetRaid(ctx context.Context, id string) (*models.Raid, error) {
	var raid models.Raid
	if err := r.load(ctx, BucketRaids, id, &raid); err != nil {
		return nil, err
	}
	return &raid, nil
}

// SaveRaid 保存团战会话
func (r *Repository) SaveRaid(ctx context.Context, raid *models.Raid) error {
	return r.store(ctx, BucketRaids, raid.ID, raid)
}

// DeleteRaid 删除团战会话
func (r *Repository) DeleteRaid(ctx context.Context, id string) error {
	return r.kv.Delete(ctx, BucketRaids, id)
}

// ListRaidIDs 列出所有团战ID
func (r *Repository) ListRaidIDs(ctx context.Context) ([]string, error) {
	return r.kv.Keys(ctx, BucketRaids)
}
