// loot.go

package engine

import (
	"math"
	"time"

	"github.com/jacl-coder/RuneForge-Server/internal/catalog"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
)

// PursuitLuckFactor 追寻目标每点幸运提供的掉落加成（百分点）
const PursuitLuckFactor = 0.15

// PursuitBonus 玩家追寻该物品时的掉落加成
func PursuitBonus(p *models.Player, item string, luck int, c *catalog.Catalog) float64 {
	if p.Pursuit == "" {
		return 0
	}
	if c.ResolveAlias(p.Pursuit) != item {
		return 0
	}
	return float64(luck) * PursuitLuckFactor
}

// RollDrops 对掉落表判定一次。独立条目各自判定；互斥组共用一次随机数，
// 按顺序累加概率，取第一个累计值超过随机数的成员，每组最多掉落一件。
func RollDrops(drops []models.DropEntry, bonus func(item string) float64, dice Dice) []string {
	var granted []string

	for _, d := range drops {
		if d.Kind != models.DropIndependent {
			continue
		}
		if dice.Percent() < d.Chance+bonus(d.Item) {
			granted = append(granted, d.Item)
		}
	}

	var groupOrder []string
	groups := make(map[string][]models.DropEntry)
	for _, d := range drops {
		if d.Kind != models.DropExclusive {
			continue
		}
		if _, ok := groups[d.Group]; !ok {
			groupOrder = append(groupOrder, d.Group)
		}
		groups[d.Group] = append(groups[d.Group], d)
	}

	for _, group := range groupOrder {
		draw := dice.Percent()
		cumulative := 0.0
		for _, d := range groups[group] {
			cumulative += d.Chance + bonus(d.Item)
			if draw < cumulative {
				granted = append(granted, d.Item)
				break
			}
		}
	}
	return granted
}

// ExpThreshold 从 level 升到下一级所需经验: floor(100 * 1.5^(level-1))
func ExpThreshold(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(math.Floor(100 * math.Pow(1.5, float64(level-1))))
}

// ApplyExperience 增加经验并循环升级，返回新等级、当前等级内经验与升级次数
func ApplyExperience(level int, exp, gain int64) (int, int64, int) {
	if level < 1 {
		level = 1
	}
	exp += gain
	levels := 0
	for exp >= ExpThreshold(level) {
		exp -= ExpThreshold(level)
		level++
		levels++
	}
	return level, exp, levels
}

// LootRoll 一次击杀的奖励
type LootRoll struct {
	Currency int64
	Items    []string
	Exp      int64
}

// RollRewards 计算击败敌人的奖励：固定金币、掉落与经验
func RollRewards(p *models.Player, enemy models.Enemy, luck int, expMultiplier int64, c *catalog.Catalog, dice Dice) LootRoll {
	bonus := func(item string) float64 {
		return PursuitBonus(p, item, luck, c)
	}
	return LootRoll{
		Currency: enemy.Reward,
		Items:    RollDrops(enemy.Drops, bonus, dice),
		Exp:      int64(enemy.ManaCost) * expMultiplier,
	}
}

// grantItems 发放物品，宠物进入宠物收藏，同时记录首次获得时间
func grantItems(p *models.Player, items []string, c *catalog.Catalog, now time.Time) (gear []string, companions []string) {
	for _, name := range items {
		item, ok := c.Item(name)
		if ok && item.Kind == models.KindCompanion {
			p.AddCompanion(name, 1)
			companions = append(companions, name)
		} else {
			p.AddItem(name, 1)
			gear = append(gear, name)
		}
		p.Discover(name, now)
	}
	return gear, companions
}

// applyLoot 将奖励写入玩家档案
func applyLoot(p *models.Player, roll LootRoll, c *catalog.Catalog, now time.Time) *models.RewardSummary {
	p.Currency += roll.Currency
	items, companions := grantItems(p, roll.Items, c, now)

	level, exp, levels := ApplyExperience(p.Level, p.Exp, roll.Exp)
	p.Level = level
	p.Exp = exp

	return &models.RewardSummary{
		Currency:     roll.Currency,
		Items:        items,
		Companions:   companions,
		Exp:          roll.Exp,
		LevelsGained: levels,
		Level:        level,
	}
}
