// raid_ops.go

package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jacl-coder/RuneForge-Server/internal/models"
	"github.com/jacl-coder/RuneForge-Server/internal/storage"
)

// CreateRaid 发起团战，扣除房主的报名费
func (e *Engine) CreateRaid(ctx context.Context, hostID, bossKey string) (*models.Raid, error) {
	boss, ok := e.catalog.Boss(bossKey)
	if !ok {
		return nil, ErrInvalidTarget
	}
	if hostID == "" {
		return nil, ErrInvalidTarget
	}

	id := e.newID()
	var out *models.Raid
	err := e.withLocks(ctx, []string{raidKey(id), playerKey(hostID)}, func(ctx context.Context) error {
		p, err := e.loadPlayer(ctx, hostID)
		if err != nil {
			return err
		}
		if err := debit(p, e.rules.Raid.EntryFee); err != nil {
			return err
		}

		r := NewRaid(id, boss, NewParticipant(p.ID, ResolveStats(p, e.catalog)), e.rules.Raid, e.now())
		if err := e.saveRaid(ctx, r); err != nil {
			return err
		}
		if err := e.savePlayer(ctx, p); err != nil {
			if derr := e.raids.DeleteRaid(ctx, id); derr != nil {
				log.Printf("撤销团战 %s 失败: %v", id, derr)
			}
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("玩家 %s 发起团战 %s，首领 %s", hostID, id, boss.Name)
	return out, nil
}

// JoinRaid 加入等待中的团战
func (e *Engine) JoinRaid(ctx context.Context, raidID, playerID string) (*models.Raid, error) {
	if playerID == "" {
		return nil, ErrInvalidTarget
	}
	var out *models.Raid
	err := e.withLocks(ctx, []string{raidKey(raidID), playerKey(playerID)}, func(ctx context.Context) error {
		r, err := e.getRaid(ctx, raidID)
		if err != nil {
			return err
		}
		p, err := e.loadPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		now := e.now()
		if err := JoinRaid(r, NewParticipant(p.ID, ResolveStats(p, e.catalog)), e.rules.Raid, now); err != nil {
			return err
		}
		if err := e.saveRaid(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Status == models.RaidActive {
		log.Printf("团战 %s 人数已满，战斗开始", raidID)
	}
	return out, nil
}

// RaidAction 当前参战者行动，胜利时发放奖励
func (e *Engine) RaidAction(ctx context.Context, raidID, playerID string, action models.Action) (*models.Raid, error) {
	var out *models.Raid
	err := e.withLocks(ctx, []string{raidKey(raidID)}, func(ctx context.Context) error {
		r, err := e.getRaid(ctx, raidID)
		if err != nil {
			return err
		}
		if err := RaidAct(r, playerID, action, e.rules.Raid, e.now()); err != nil {
			return err
		}
		if err := e.saveRaid(ctx, r); err != nil {
			return err
		}
		if r.Terminal() {
			log.Printf("团战 %s 结束: %s", raidID, r.Result)
			if err := e.settleRaid(ctx, r); err != nil {
				log.Printf("团战 %s 结算未完成，等待下次巡检: %v", raidID, err)
			}
		}
		out = r
		return nil
	})
	return out, err
}

// RaidStatus 查询团战
func (e *Engine) RaidStatus(ctx context.Context, raidID string) (*models.Raid, error) {
	return e.getRaid(ctx, raidID)
}

// OpenRaids 列出等待加入的团战
func (e *Engine) OpenRaids(ctx context.Context) ([]*models.Raid, error) {
	ids, err := e.raids.ListRaidIDs(ctx)
	if err != nil {
		return nil, storageErr("列出团战失败", err)
	}
	now := e.now()
	var open []*models.Raid
	for _, id := range ids {
		r, err := e.getRaid(ctx, id)
		if errors.Is(err, ErrBattleNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if r.Status == models.RaidWaiting && now.Before(r.Deadline) {
			open = append(open, r)
		}
	}
	return open, nil
}

// SweepReport 一次巡检的统计
type SweepReport struct {
	Scanned   int `json:"scanned"`
	Cancelled int `json:"cancelled"`
	Activated int `json:"activated"`
	Settled   int `json:"settled"`
	Cleaned   int `json:"cleaned"`
	Failed    int `json:"failed"`
}

// Sweep 处理加入超时的团战，补发未完成的结算，并清理过期记录。
// 每个团战都在其锁内重新读取状态，可重复执行。
func (e *Engine) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	ids, err := e.raids.ListRaidIDs(ctx)
	if err != nil {
		return report, storageErr("列出团战失败", err)
	}

	var firstErr error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++
		if err := e.sweepRaid(ctx, id, &report); err != nil {
			report.Failed++
			log.Printf("巡检团战 %s 失败: %v", id, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return report, firstErr
}

func (e *Engine) sweepRaid(ctx context.Context, id string, report *SweepReport) error {
	return e.withLocks(ctx, []string{raidKey(id)}, func(ctx context.Context) error {
		r, err := e.getRaid(ctx, id)
		if errors.Is(err, ErrBattleNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		now := e.now()
		switch SweepRaid(r, e.rules.Raid, now) {
		case SweepCancelled:
			report.Cancelled++
			log.Printf("团战 %s 人数不足，已取消", id)
			if err := e.saveRaid(ctx, r); err != nil {
				return err
			}
		case SweepActivated:
			report.Activated++
			log.Printf("团战 %s 加入时间结束，%d 人参战", id, len(r.Participants))
			if err := e.saveRaid(ctx, r); err != nil {
				return err
			}
		}

		if r.Terminal() && !r.Settled() {
			if err := e.settleRaid(ctx, r); err != nil {
				return err
			}
			report.Settled++
		}

		if r.ShouldCleanup(now, e.rules.Raid.Retention) {
			if err := e.raids.DeleteRaid(ctx, id); err != nil {
				return storageErr("删除团战失败", err)
			}
			report.Cleaned++
		}
		return nil
	})
}

// settleRaid 发放退款或奖励。调用方持有团战锁。
// 每笔入账按结算引用去重，团战记录上的标记写入失败时可安全重试。
func (e *Engine) settleRaid(ctx context.Context, r *models.Raid) error {
	changed := false
	var firstErr error

	switch r.Status {
	case models.RaidCancelled:
		if !r.Refunded {
			ref := fmt.Sprintf("raid:%s:refund", r.ID)
			if err := e.creditOnce(ctx, r.HostID, ref, r.EntryFee); err != nil {
				firstErr = err
			} else {
				r.Refunded = true
				changed = true
				log.Printf("团战 %s 已向 %s 退还报名费 %d", r.ID, r.HostID, r.EntryFee)
			}
		}
	case models.RaidCompleted:
		ref := fmt.Sprintf("raid:%s:reward", r.ID)
		for _, p := range r.Participants {
			if p.Reward <= 0 || p.Paid {
				continue
			}
			if err := e.creditOnce(ctx, p.PlayerID, ref, p.Reward); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			p.Paid = true
			changed = true
		}
	}

	if changed {
		if err := e.saveRaid(ctx, r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *Engine) creditOnce(ctx context.Context, playerID, ref string, amount int64) error {
	_, err := e.mutatePlayer(ctx, playerID, func(p *models.Player) error {
		p.CreditOnce(ref, amount, e.now())
		return nil
	})
	return err
}

func (e *Engine) getRaid(ctx context.Context, id string) (*models.Raid, error) {
	if id == "" {
		return nil, ErrBattleNotFound
	}
	r, err := e.raids.GetRaid(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrBattleNotFound
	}
	if err != nil {
		return nil, storageErr("读取团战失败", err)
	}
	return r, nil
}

func (e *Engine) saveRaid(ctx context.Context, r *models.Raid) error {
	if err := e.raids.SaveRaid(ctx, r); err != nil {
		return storageErr("保存团战失败", err)
	}
	return nil
}
