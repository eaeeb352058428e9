// catalog.go

package catalog

import (
	"sort"
	"strings"

	"github.com/jacl-coder/RuneForge-Server/internal/models"
)

// Catalog 静态游戏数据：物品、套装、敌人、首领与采集掉落表
type Catalog struct {
	Items     map[string]models.Item
	Sets      []models.SetBonus
	Enemies   map[string]models.Enemy
	Bosses    map[string]models.Boss
	Aliases   map[string]string
	DigTable  []models.DropEntry
	HuntTable []models.DropEntry
}

// Item 按名称查找物品
func (c *Catalog) Item(name string) (models.Item, bool) {
	item, ok := c.Items[name]
	return item, ok
}

// Enemy 按键查找敌人
func (c *Catalog) Enemy(key string) (models.Enemy, bool) {
	enemy, ok := c.Enemies[key]
	return enemy, ok
}

// Boss 按键查找首领
func (c *Catalog) Boss(key string) (models.Boss, bool) {
	boss, ok := c.Bosses[key]
	return boss, ok
}

// ResolveAlias 将别名或大小写不一致的名称解析为标准物品名，无法解析时原样返回
func (c *Catalog) ResolveAlias(name string) string {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)
	if canonical, ok := c.Aliases[lower]; ok {
		return canonical
	}
	for itemName := range c.Items {
		if strings.ToLower(itemName) == lower {
			return itemName
		}
	}
	return trimmed
}

// EnemyKeys 按键排序的敌人列表
func (c *Catalog) EnemyKeys() []string {
	keys := make([]string, 0, len(c.Enemies))
	for k := range c.Enemies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BossKeys 按键排序的首领列表
func (c *Catalog) BossKeys() []string {
	keys := make([]string, 0, len(c.Bosses))
	for k := range c.Bosses {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ItemNames 按名称排序的物品列表
func (c *Catalog) ItemNames() []string {
	names := make([]string, 0, len(c.Items))
	for name := range c.Items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
