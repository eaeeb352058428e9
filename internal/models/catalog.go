// catalog.go

package models

// ItemKind 物品类别
type ItemKind string

const (
	// KindGear 装备
	KindGear ItemKind = "gear"
	// KindCompanion 宠物
	KindCompanion ItemKind = "companion"
	// KindConsumable 消耗品
	KindConsumable ItemKind = "consumable"
	// KindTool 工具
	KindTool ItemKind = "tool"
	// KindMaterial 材料
	KindMaterial ItemKind = "material"
)

// SpecialKind 武器特技类型
type SpecialKind string

const (
	// SpecialRage 狂暴
	SpecialRage SpecialKind = "rage"
	// SpecialAimedShot 瞄准射击
	SpecialAimedShot SpecialKind = "aimed_shot"
	// SpecialDefensiveStrike 防御反击
	SpecialDefensiveStrike SpecialKind = "defensive_strike"
)

// WeaponSpecial 武器特技参数
type WeaponSpecial struct {
	Kind SpecialKind `json:"kind"`
	// DamageMultiplier 伤害倍率，狂暴 1.5，防御反击 0.5
	DamageMultiplier float64 `json:"damage_multiplier,omitempty"`
	// SelfMissChance 自身落空概率（百分比）
	SelfMissChance float64 `json:"self_miss_chance,omitempty"`
	BonusDamage    int     `json:"bonus_damage,omitempty"`
	DefenseBonus   int     `json:"defense_bonus,omitempty"`
}

// Item 物品定义
type Item struct {
	Name    string         `json:"name"`
	Kind    ItemKind       `json:"kind"`
	Slot    Slot           `json:"slot,omitempty"`
	Stats   Stats          `json:"stats"`
	Special *WeaponSpecial `json:"special,omitempty"`
}

// SetBonus 套装加成
type SetBonus struct {
	Name     string          `json:"name"`
	Requires map[Slot]string `json:"requires"`
	Bonus    Stats           `json:"bonus"`
}
