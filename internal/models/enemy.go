// enemy.go

package models

// DropKind 掉落条目类型
type DropKind string

const (
	// DropIndependent 独立判定
	DropIndependent DropKind = "independent"
	// DropExclusive 互斥组成员，同组每次击杀最多掉落一件
	DropExclusive DropKind = "exclusive"
)

// DropEntry 掉落条目
type DropEntry struct {
	Kind   DropKind `json:"kind"`
	Group  string   `json:"group,omitempty"`
	Item   string   `json:"item"`
	Chance float64  `json:"chance"`
}

// Independent 创建独立掉落条目
func Independent(item string, chance float64) DropEntry {
	return DropEntry{Kind: DropIndependent, Item: item, Chance: chance}
}

// ExclusiveMember 创建互斥组掉落条目
func ExclusiveMember(group, item string, chance float64) DropEntry {
	return DropEntry{Kind: DropExclusive, Group: group, Item: item, Chance: chance}
}

// Enemy 单人战斗敌人定义
type Enemy struct {
	Key        string      `json:"key"`
	Name       string      `json:"name"`
	Health     int         `json:"health"`
	Damage     int         `json:"damage"`
	Defense    int         `json:"defense"`
	CritChance float64     `json:"crit_chance"`
	Reward     int64       `json:"reward"`
	ManaCost   int         `json:"mana_cost"`
	QuestFlag  QuestFlag   `json:"quest_flag,omitempty"`
	Drops      []DropEntry `json:"drops"`
}

// Boss 团战首领定义
type Boss struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Health     int    `json:"health"`
	Damage     int    `json:"damage"`
	Defense    int    `json:"defense"`
	RewardPool int64  `json:"reward_pool"`
}
