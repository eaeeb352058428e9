// player.go

package models

import (
	"time"
)

// 玩家默认值
const (
	// MaxMana 法力上限
	MaxMana = 100
	// DefaultLevel 初始等级
	DefaultLevel = 1
	// payoutRetention 结算回执保留时长
	payoutRetention = 7 * 24 * time.Hour
)

// Slot 装备槽位
type Slot string

const (
	// SlotWeapon 武器
	SlotWeapon Slot = "weapon"
	// SlotHelmet 头盔
	SlotHelmet Slot = "helmet"
	// SlotArmor 护甲
	SlotArmor Slot = "armor"
	// SlotMount 坐骑
	SlotMount Slot = "mount"
	// SlotCompanion 宠物
	SlotCompanion Slot = "companion"
)

// GearSlots 四个装备槽位，按固定顺序
var GearSlots = []Slot{SlotWeapon, SlotHelmet, SlotArmor, SlotMount}

// ParseSlot 解析槽位名称
func ParseSlot(s string) (Slot, bool) {
	switch Slot(s) {
	case SlotWeapon, SlotHelmet, SlotArmor, SlotMount, SlotCompanion:
		return Slot(s), true
	}
	return "", false
}

// Equipment 装备栏
type Equipment struct {
	Weapon string `json:"weapon,omitempty"`
	Helmet string `json:"helmet,omitempty"`
	Armor  string `json:"armor,omitempty"`
	Mount  string `json:"mount,omitempty"`
}

// Get 获取槽位上的物品
func (e Equipment) Get(slot Slot) string {
	switch slot {
	case SlotWeapon:
		return e.Weapon
	case SlotHelmet:
		return e.Helmet
	case SlotArmor:
		return e.Armor
	case SlotMount:
		return e.Mount
	}
	return ""
}

// Set 设置槽位上的物品，空字符串表示卸下
func (e *Equipment) Set(slot Slot, item string) {
	switch slot {
	case SlotWeapon:
		e.Weapon = item
	case SlotHelmet:
		e.Helmet = item
	case SlotArmor:
		e.Armor = item
	case SlotMount:
		e.Mount = item
	}
}

// Player 玩家档案
type Player struct {
	ID                string               `json:"id"`
	Currency          int64                `json:"currency"`
	Inventory         map[string]int       `json:"inventory"`
	Equipment         Equipment            `json:"equipment"`
	Companions        map[string]int       `json:"companions"`
	EquippedCompanion string               `json:"equipped_companion,omitempty"`
	Mana              int                  `json:"mana"`
	LastRegenAt       time.Time            `json:"last_regen_at"`
	RegenAnchorAt     time.Time            `json:"regen_anchor_at"`
	Level             int                  `json:"level"`
	Exp               int64                `json:"exp"`
	Discoveries       map[string]time.Time `json:"discoveries"`
	Pursuit           string               `json:"pursuit,omitempty"`
	Quests            QuestRecord          `json:"quests"`
	Payouts           map[string]time.Time `json:"payouts,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// NewPlayer 按默认值创建玩家档案
func NewPlayer(id string, now time.Time) *Player {
	p := &Player{
		ID:            id,
		Mana:          MaxMana,
		LastRegenAt:   now,
		RegenAnchorAt: now,
		Level:         DefaultLevel,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	p.Normalize()
	return p
}

// Normalize 补齐反序列化后为空的集合字段
func (p *Player) Normalize() {
	if p.Inventory == nil {
		p.Inventory = make(map[string]int)
	}
	if p.Companions == nil {
		p.Companions = make(map[string]int)
	}
	if p.Discoveries == nil {
		p.Discoveries = make(map[string]time.Time)
	}
	if p.Quests.Completed == nil {
		p.Quests.Completed = make(map[string]*QuestCompletion)
	}
	if p.Level < DefaultLevel {
		p.Level = DefaultLevel
	}
}

// ItemCount 背包中物品数量
func (p *Player) ItemCount(item string) int {
	return p.Inventory[item]
}

// AddItem 向背包添加物品
func (p *Player) AddItem(item string, qty int) {
	if qty <= 0 {
		return
	}
	p.Inventory[item] += qty
}

// RemoveItem 从背包移除物品，数量不足时不做修改
func (p *Player) RemoveItem(item string, qty int) bool {
	have := p.Inventory[item]
	if qty <= 0 || have < qty {
		return false
	}
	if have == qty {
		delete(p.Inventory, item)
	} else {
		p.Inventory[item] = have - qty
	}
	return true
}

// AddCompanion 收入宠物
func (p *Player) AddCompanion(name string, qty int) {
	if qty <= 0 {
		return
	}
	p.Companions[name] += qty
}

// Owns 玩家是否持有该物品（背包或宠物收藏）
func (p *Player) Owns(item string) bool {
	return p.Inventory[item] > 0 || p.Companions[item] > 0
}

// Discover 记录首次获得时间，已有记录不会被覆盖
func (p *Player) Discover(item string, at time.Time) bool {
	if _, ok := p.Discoveries[item]; ok {
		return false
	}
	p.Discoveries[item] = at
	return true
}

// CreditOnce 按结算引用入账，同一引用只会入账一次
func (p *Player) CreditOnce(ref string, amount int64, now time.Time) bool {
	if p.Payouts == nil {
		p.Payouts = make(map[string]time.Time)
	}
	if _, ok := p.Payouts[ref]; ok {
		return false
	}
	for k, at := range p.Payouts {
		if now.Sub(at) > payoutRetention {
			delete(p.Payouts, k)
		}
	}
	p.Currency += amount
	p.Payouts[ref] = now
	return true
}
