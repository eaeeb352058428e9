// solo_ops.go

package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jacl-coder/RuneForge-Server/internal/catalog"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
	"github.com/jacl-coder/RuneForge-Server/internal/storage"
)

// StartSolo 开始单人战斗。扣除法力后敌人先手。
func (e *Engine) StartSolo(ctx context.Context, playerID, enemyKey string) (*models.SoloBattle, error) {
	var out *models.SoloBattle
	err := e.withLocks(ctx, []string{playerKey(playerID)}, func(ctx context.Context) error {
		if _, err := e.getSolo(ctx, playerID); err == nil {
			return ErrBattleInProgress
		} else if !errors.Is(err, ErrNoActiveBattle) {
			return err
		}

		enemy, ok := e.catalog.Enemy(enemyKey)
		if !ok {
			return ErrInvalidTarget
		}

		p, err := e.loadPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		now := e.now()
		applyRegen(p, now)
		if err := spendMana(p, enemy.ManaCost); err != nil {
			return err
		}

		b := NewSoloBattle(p.ID, enemy, ResolveStats(p, e.catalog), WeaponSpecial(p, e.catalog), now)
		b.AddLog(fmt.Sprintf("你遭遇了 %s", enemy.Name))
		EnemyTurn(b, enemy, e.dice)

		if b.Finished() {
			// 开局即被击败，只需记录法力消耗
			if err := e.savePlayer(ctx, p); err != nil {
				return err
			}
			out = b
			return nil
		}

		if err := e.commitSolo(ctx, nil, b, p); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("玩家 %s 开始与 %s 战斗", playerID, enemyKey)
	return out, nil
}

// SoloAction 执行玩家行动
func (e *Engine) SoloAction(ctx context.Context, playerID string, action models.Action) (*models.SoloBattle, error) {
	var out *models.SoloBattle
	var victor *models.Player
	err := e.withLocks(ctx, []string{playerKey(playerID)}, func(ctx context.Context) error {
		b, err := e.getSolo(ctx, playerID)
		if err != nil {
			return err
		}
		enemy, ok := e.catalog.Enemy(b.EnemyKey)
		if !ok {
			return ErrInvalidTarget
		}
		if b.Finished() || b.WhoseTurn != models.SidePlayer {
			return ErrBattleNotActive
		}
		if !actionAllowed(b, action) {
			return ErrInvalidAction
		}

		p, err := e.loadPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		playerChanged := false
		if action == models.ActionHeal {
			if !p.RemoveItem(catalog.HealingPotion, 1) {
				return ErrInsufficientItem
			}
			playerChanged = true
		}

		orig := cloneSolo(b)
		if err := PlayerTurn(b, enemy, action, e.rules.HealAmount, e.dice); err != nil {
			return err
		}

		switch b.Result {
		case models.ResultVictory:
			roll := RollRewards(p, enemy, ResolveStats(p, e.catalog).Luck, e.rules.ExpMultiplier, e.catalog, e.dice)
			summary := applyLoot(p, roll, e.catalog, e.now())
			if enemy.QuestFlag != "" {
				p.Quests.Set(enemy.QuestFlag)
			}
			summary.Quests = e.afterProgress(p)
			b.Rewards = summary
			if err := e.commitSolo(ctx, orig, nil, p); err != nil {
				return err
			}
			victor = p
		case models.ResultDefeat:
			next := p
			if !playerChanged {
				next = nil
			}
			if err := e.commitSolo(ctx, orig, nil, next); err != nil {
				return err
			}
		default:
			next := p
			if !playerChanged {
				next = nil
			}
			if err := e.commitSolo(ctx, orig, b, next); err != nil {
				return err
			}
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if victor != nil {
		e.updateLeaderboard(ctx, victor)
		log.Printf("玩家 %s 击败了 %s，获得 %d 金币 %d 经验", playerID, out.EnemyName, out.Rewards.Currency, out.Rewards.Exp)
	}
	return out, nil
}

// QuitSolo 放弃单人战斗，已消耗的法力不返还
func (e *Engine) QuitSolo(ctx context.Context, playerID string) (*models.SoloBattle, error) {
	var out *models.SoloBattle
	err := e.withLocks(ctx, []string{playerKey(playerID)}, func(ctx context.Context) error {
		b, err := e.getSolo(ctx, playerID)
		if err != nil {
			return err
		}
		if err := e.solos.DeleteSolo(ctx, playerID); err != nil {
			return storageErr("删除战斗会话失败", err)
		}
		b.AddLog("你逃离了战斗")
		out = b
		return nil
	})
	return out, err
}

// SoloStatus 查询当前单人战斗
func (e *Engine) SoloStatus(ctx context.Context, playerID string) (*models.SoloBattle, error) {
	return e.getSolo(ctx, playerID)
}

func (e *Engine) getSolo(ctx context.Context, playerID string) (*models.SoloBattle, error) {
	if playerID == "" {
		return nil, ErrInvalidTarget
	}
	b, err := e.solos.GetSolo(ctx, playerID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoActiveBattle
	}
	if err != nil {
		return nil, storageErr("读取战斗会话失败", err)
	}
	return b, nil
}

// commitSolo 先写会话（next 为 nil 时删除），再写玩家档案。
// 玩家档案写入失败时把会话恢复为 orig（orig 为 nil 时删除）。
func (e *Engine) commitSolo(ctx context.Context, orig, next *models.SoloBattle, p *models.Player) error {
	playerID := ""
	switch {
	case next != nil:
		playerID = next.PlayerID
	case orig != nil:
		playerID = orig.PlayerID
	case p != nil:
		playerID = p.ID
	}

	var err error
	if next != nil {
		err = e.solos.SaveSolo(ctx, next)
	} else {
		err = e.solos.DeleteSolo(ctx, playerID)
	}
	if err != nil {
		return storageErr("保存战斗会话失败", err)
	}
	if p == nil {
		return nil
	}

	if err := e.savePlayer(ctx, p); err != nil {
		var rerr error
		if orig != nil {
			rerr = e.solos.SaveSolo(ctx, orig)
		} else {
			rerr = e.solos.DeleteSolo(ctx, playerID)
		}
		if rerr != nil {
			log.Printf("恢复战斗会话失败: 玩家 %s: %v", playerID, rerr)
		}
		return err
	}
	return nil
}

func cloneSolo(b *models.SoloBattle) *models.SoloBattle {
	c := *b
	c.Log = append([]string(nil), b.Log...)
	c.Actions = append([]models.Action(nil), b.Actions...)
	if b.Special != nil {
		special := *b.Special
		c.Special = &special
	}
	c.Rewards = nil
	return &c
}
