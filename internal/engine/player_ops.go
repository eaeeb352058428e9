// player_ops.go

package engine

import (
	"context"
	"time"

	"github.com/jacl-coder/RuneForge-Server/internal/catalog"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
)

// StatSheet 属性面板
type StatSheet struct {
	PlayerID     string                `json:"player_id"`
	Stats        models.Stats          `json:"stats"`
	Power        int                   `json:"power"`
	ActiveSets   []string              `json:"active_sets,omitempty"`
	Special      *models.WeaponSpecial `json:"special,omitempty"`
	Level        int                   `json:"level"`
	Exp          int64                 `json:"exp"`
	NextLevelExp int64                 `json:"next_level_exp"`
}

// ManaView 法力视图
type ManaView struct {
	Mana        int       `json:"mana"`
	Max         int       `json:"max"`
	NextRegenIn float64   `json:"next_regen_in_seconds"`
	LastRegenAt time.Time `json:"last_regen_at"`
	AnchorAt    time.Time `json:"regen_anchor_at"`
}

// InventoryView 背包与装备视图
type InventoryView struct {
	Inventory         map[string]int       `json:"inventory"`
	Equipment         models.Equipment     `json:"equipment"`
	Companions        map[string]int       `json:"companions"`
	EquippedCompanion string               `json:"equipped_companion,omitempty"`
	Discoveries       map[string]time.Time `json:"discoveries"`
	Pursuit           string               `json:"pursuit,omitempty"`
}

func inventoryOf(p *models.Player) InventoryView {
	return InventoryView{
		Inventory:         p.Inventory,
		Equipment:         p.Equipment,
		Companions:        p.Companions,
		EquippedCompanion: p.EquippedCompanion,
		Discoveries:       p.Discoveries,
		Pursuit:           p.Pursuit,
	}
}

// Player 读取玩家档案
func (e *Engine) Player(ctx context.Context, id string) (*models.Player, error) {
	return e.loadPlayer(ctx, id)
}

// Stats 计算玩家当前属性
func (e *Engine) Stats(ctx context.Context, id string) (StatSheet, error) {
	p, err := e.loadPlayer(ctx, id)
	if err != nil {
		return StatSheet{}, err
	}
	stats := ResolveStats(p, e.catalog)
	return StatSheet{
		PlayerID:     p.ID,
		Stats:        stats,
		Power:        stats.Power(),
		ActiveSets:   ActiveSets(p, e.catalog),
		Special:      WeaponSpecial(p, e.catalog),
		Level:        p.Level,
		Exp:          p.Exp,
		NextLevelExp: ExpThreshold(p.Level),
	}, nil
}

// Balance 查询金币余额
func (e *Engine) Balance(ctx context.Context, id string) (int64, error) {
	p, err := e.loadPlayer(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.Currency, nil
}

// Mana 查询法力，读取时执行惰性恢复并持久化
func (e *Engine) Mana(ctx context.Context, id string) (ManaView, error) {
	var view ManaView
	err := e.withLocks(ctx, []string{playerKey(id)}, func(ctx context.Context) error {
		p, err := e.loadPlayer(ctx, id)
		if err != nil {
			return err
		}
		now := e.now()
		if applyRegen(p, now) {
			if err := e.savePlayer(ctx, p); err != nil {
				return err
			}
		}
		view = ManaView{
			Mana:        p.Mana,
			Max:         models.MaxMana,
			NextRegenIn: NextRegenIn(p, now).Seconds(),
			LastRegenAt: p.LastRegenAt,
			AnchorAt:    p.RegenAnchorAt,
		}
		return nil
	})
	return view, err
}

// Inventory 查询背包与装备
func (e *Engine) Inventory(ctx context.Context, id string) (InventoryView, error) {
	p, err := e.loadPlayer(ctx, id)
	if err != nil {
		return InventoryView{}, err
	}
	return inventoryOf(p), nil
}

// Credit 增加金币
func (e *Engine) Credit(ctx context.Context, id string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	p, err := e.mutatePlayer(ctx, id, func(p *models.Player) error {
		return credit(p, amount)
	})
	if err != nil {
		return 0, err
	}
	return p.Currency, nil
}

// Debit 扣除金币，余额不足时不做任何修改
func (e *Engine) Debit(ctx context.Context, id string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	p, err := e.mutatePlayer(ctx, id, func(p *models.Player) error {
		return debit(p, amount)
	})
	if err != nil {
		return 0, err
	}
	return p.Currency, nil
}

// SpendMana 扣除法力
func (e *Engine) SpendMana(ctx context.Context, id string, amount int) (int, error) {
	p, err := e.mutatePlayer(ctx, id, func(p *models.Player) error {
		applyRegen(p, e.now())
		return spendMana(p, amount)
	})
	if err != nil {
		return 0, err
	}
	return p.Mana, nil
}

// RestoreMana 补充法力，不影响自然恢复计时
func (e *Engine) RestoreMana(ctx context.Context, id string, amount int) (int, error) {
	p, err := e.mutatePlayer(ctx, id, func(p *models.Player) error {
		return restoreMana(p, amount)
	})
	if err != nil {
		return 0, err
	}
	return p.Mana, nil
}

// Equip 装备物品或宠物
func (e *Engine) Equip(ctx context.Context, id string, slot models.Slot, itemName string) (InventoryView, error) {
	name := e.catalog.ResolveAlias(itemName)
	p, err := e.mutatePlayer(ctx, id, func(p *models.Player) error {
		item, ok := e.catalog.Item(name)
		if !ok || item.Slot != slot {
			return ErrInvalidTarget
		}

		switch item.Kind {
		case models.KindCompanion:
			if p.Companions[name] <= 0 {
				return ErrInsufficientItem
			}
			p.EquippedCompanion = name
		case models.KindGear:
			if p.ItemCount(name) <= 0 {
				return ErrInsufficientItem
			}
			p.Equipment.Set(slot, name)
		default:
			return ErrInvalidTarget
		}

		e.afterProgress(p)
		return nil
	})
	if err != nil {
		return InventoryView{}, err
	}
	return inventoryOf(p), nil
}

// Unequip 卸下槽位上的物品
func (e *Engine) Unequip(ctx context.Context, id string, slot models.Slot) (InventoryView, error) {
	p, err := e.mutatePlayer(ctx, id, func(p *models.Player) error {
		switch slot {
		case models.SlotCompanion:
			p.EquippedCompanion = ""
		case models.SlotWeapon, models.SlotHelmet, models.SlotArmor, models.SlotMount:
			p.Equipment.Set(slot, "")
		default:
			return ErrInvalidTarget
		}
		return nil
	})
	if err != nil {
		return InventoryView{}, err
	}
	return inventoryOf(p), nil
}

// SetPursuit 设置追寻目标，空字符串表示清除
func (e *Engine) SetPursuit(ctx context.Context, id string, itemName string) (string, error) {
	name := ""
	if itemName != "" {
		name = e.catalog.ResolveAlias(itemName)
		if _, ok := e.catalog.Item(name); !ok {
			return "", ErrInvalidTarget
		}
	}
	_, err := e.mutatePlayer(ctx, id, func(p *models.Player) error {
		p.Pursuit = name
		return nil
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

// QuestProgress 查询任务进度
func (e *Engine) QuestProgress(ctx context.Context, id string) ([]QuestProgress, error) {
	p, err := e.loadPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	return QuestProgressOf(p), nil
}

// ClaimQuest 领取任务奖励，返回奖励金额
func (e *Engine) ClaimQuest(ctx context.Context, id string, key string) (int64, error) {
	var reward int64
	_, err := e.mutatePlayer(ctx, id, func(p *models.Player) error {
		r, err := claimQuest(p, key, e.now())
		reward = r
		return err
	})
	if err != nil {
		return 0, err
	}
	return reward, nil
}

// UseResult 使用物品的结果
type UseResult struct {
	Item      string `json:"item"`
	Mana      int    `json:"mana"`
	Remaining int    `json:"remaining"`
}

// UseItem 在战斗外使用消耗品
func (e *Engine) UseItem(ctx context.Context, id string, itemName string) (UseResult, error) {
	name := e.catalog.ResolveAlias(itemName)
	var result UseResult
	_, err := e.mutatePlayer(ctx, id, func(p *models.Player) error {
		item, ok := e.catalog.Item(name)
		if !ok || item.Kind != models.KindConsumable {
			return ErrInvalidTarget
		}
		if name != catalog.ManaPotion {
			return ErrInvalidAction
		}
		if !p.RemoveItem(name, 1) {
			return ErrInsufficientItem
		}
		if err := restoreMana(p, e.rules.ManaPotionAmount); err != nil {
			return err
		}
		result = UseResult{Item: name, Mana: p.Mana, Remaining: p.ItemCount(name)}
		return nil
	})
	return result, err
}

// GrantItem 发放物品，供商店等外部系统使用
func (e *Engine) GrantItem(ctx context.Context, id string, itemName string, qty int) (InventoryView, error) {
	name := e.catalog.ResolveAlias(itemName)
	if qty <= 0 {
		return InventoryView{}, ErrInvalidAmount
	}
	p, err := e.mutatePlayer(ctx, id, func(p *models.Player) error {
		item, ok := e.catalog.Item(name)
		if !ok {
			return ErrInvalidTarget
		}
		if item.Kind == models.KindCompanion {
			p.AddCompanion(name, qty)
		} else {
			p.AddItem(name, qty)
		}
		p.Discover(name, e.now())
		return nil
	})
	if err != nil {
		return InventoryView{}, err
	}
	return inventoryOf(p), nil
}
