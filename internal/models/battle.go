// battle.go

package models

import "time"

// BattleResult 战斗结果
type BattleResult string

const (
	// ResultNone 未结束
	ResultNone BattleResult = ""
	// ResultVictory 胜利
	ResultVictory BattleResult = "victory"
	// ResultDefeat 失败
	ResultDefeat BattleResult = "defeat"
)

// Side 行动方
type Side string

const (
	// SidePlayer 玩家
	SidePlayer Side = "player"
	// SideEnemy 敌人
	SideEnemy Side = "enemy"
)

// Action 战斗行动
type Action string

const (
	ActionAttack          Action = "attack"
	ActionRage            Action = "rage"
	ActionAimedShot       Action = "aimed_shot"
	ActionDefensiveStrike Action = "defensive_strike"
	ActionHeal            Action = "heal"
	ActionDefend          Action = "defend"
)

// SoloBattle 单人战斗会话
type SoloBattle struct {
	PlayerID        string         `json:"player_id"`
	EnemyKey        string         `json:"enemy_key"`
	EnemyName       string         `json:"enemy_name"`
	PlayerHP        int            `json:"player_hp"`
	PlayerMax       int            `json:"player_max_hp"`
	EnemyHP         int            `json:"enemy_hp"`
	EnemyMax        int            `json:"enemy_max_hp"`
	Turn            int            `json:"turn"`
	WhoseTurn       Side           `json:"whose_turn"`
	Log             []string       `json:"log"`
	Stats           Stats          `json:"stats"`
	Special         *WeaponSpecial `json:"special,omitempty"`
	Actions         []Action       `json:"actions"`
	PendingDefense  int            `json:"pending_defense,omitempty"` // 仅作用于下一次敌方行动
	SkipEnemyAction bool           `json:"skip_enemy_action,omitempty"`
	Result          BattleResult   `json:"result,omitempty"`
	Rewards         *RewardSummary `json:"rewards,omitempty"`
	StartedAt       time.Time      `json:"started_at"`
}

// Finished 是否已结束
func (b *SoloBattle) Finished() bool {
	return b.Result != ResultNone
}

// AddLog 追加战斗日志
func (b *SoloBattle) AddLog(line string) {
	b.Log = append(b.Log, line)
}

// RewardSummary 胜利奖励汇总
type RewardSummary struct {
	Currency     int64    `json:"currency"`
	Items        []string `json:"items,omitempty"`
	Companions   []string `json:"companions,omitempty"`
	Exp          int64    `json:"exp"`
	LevelsGained int      `json:"levels_gained,omitempty"`
	Level        int      `json:"level"`
	Quests       []string `json:"quests,omitempty"`
}
