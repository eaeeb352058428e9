// stats.go

package models

import "time"

// Stats 战斗属性
type Stats struct {
	Health  int `json:"health"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
	Luck    int `json:"luck"`
}

// Add 属性相加
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Health:  s.Health + o.Health,
		Attack:  s.Attack + o.Attack,
		Defense: s.Defense + o.Defense,
		Speed:   s.Speed + o.Speed,
		Luck:    s.Luck + o.Luck,
	}
}

// Power 战力，五项属性之和
func (s Stats) Power() int {
	return s.Health + s.Attack + s.Defense + s.Speed + s.Luck
}

// QuestRecord 玩家任务记录
type QuestRecord struct {
	DigCount       int                         `json:"dig_count"`
	HuntCount      int                         `json:"hunt_count"`
	PeakPower      int                         `json:"peak_power"`
	GoblinDefeated bool                        `json:"goblin_defeated"`
	OrcDefeated    bool                        `json:"orc_defeated"`
	Completed      map[string]*QuestCompletion `json:"completed"`
}

// QuestCompletion 任务完成记录
type QuestCompletion struct {
	CompletedAt time.Time  `json:"completed_at"`
	Reward      int64      `json:"reward"`
	Claimed     bool       `json:"claimed"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
}

// QuestFlag 击败特定敌人后设置的任务标记
type QuestFlag string

const (
	// FlagNone 无标记
	FlagNone QuestFlag = ""
	// FlagGoblinDefeated 击败哥布林
	FlagGoblinDefeated QuestFlag = "goblin_defeated"
	// FlagOrcDefeated 击败兽人
	FlagOrcDefeated QuestFlag = "orc_defeated"
)

// Set 设置任务标记
func (q *QuestRecord) Set(flag QuestFlag) {
	switch flag {
	case FlagGoblinDefeated:
		q.GoblinDefeated = true
	case FlagOrcDefeated:
		q.OrcDefeated = true
	}
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	PlayerID string `json:"player_id"`
	Level    int    `json:"level"`
	Exp      int64  `json:"exp"`
	Rank     int    `json:"rank"`
}
