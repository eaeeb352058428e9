// stats.go

package engine

import (
	"github.com/jacl-coder/RuneForge-Server/internal/catalog"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
)

// BaseHealth 裸装生命值
const BaseHealth = 5

// ResolveStats 计算玩家当前的战斗属性：基础值 + 装备 + 宠物 + 已凑齐的套装
func ResolveStats(p *models.Player, c *catalog.Catalog) models.Stats {
	stats := models.Stats{Health: BaseHealth}

	for _, slot := range models.GearSlots {
		name := p.Equipment.Get(slot)
		if name == "" {
			continue
		}
		if item, ok := c.Item(name); ok {
			stats = stats.Add(item.Stats)
		}
	}

	if p.EquippedCompanion != "" {
		if item, ok := c.Item(p.EquippedCompanion); ok {
			stats = stats.Add(item.Stats)
		}
	}

	for _, set := range c.Sets {
		if setSatisfied(p, set) {
			stats = stats.Add(set.Bonus)
		}
	}
	return stats
}

func setSatisfied(p *models.Player, set models.SetBonus) bool {
	if len(set.Requires) == 0 {
		return false
	}
	for slot, name := range set.Requires {
		equipped := p.Equipment.Get(slot)
		if slot == models.SlotCompanion {
			equipped = p.EquippedCompanion
		}
		if equipped != name {
			return false
		}
	}
	return true
}

// ActiveSets 已凑齐的套装名称
func ActiveSets(p *models.Player, c *catalog.Catalog) []string {
	var names []string
	for _, set := range c.Sets {
		if setSatisfied(p, set) {
			names = append(names, set.Name)
		}
	}
	return names
}

// WeaponSpecial 当前武器的特技，没有时返回 nil
func WeaponSpecial(p *models.Player, c *catalog.Catalog) *models.WeaponSpecial {
	item, ok := c.Item(p.Equipment.Weapon)
	if !ok || item.Special == nil {
		return nil
	}
	special := *item.Special
	return &special
}
