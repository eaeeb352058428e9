// raid.go

package models

import (
	"time"
)

// RaidStatus 团战状态
type RaidStatus string

const (
	// RaidWaiting 等待加入
	RaidWaiting RaidStatus = "waiting"
	// RaidActive 战斗中
	RaidActive RaidStatus = "active"
	// RaidCompleted 已结束
	RaidCompleted RaidStatus = "completed"
	// RaidCancelled 人数不足已取消
	RaidCancelled RaidStatus = "cancelled"
)

// ParticipantStatus 参战者状态
type ParticipantStatus string

const (
	// ParticipantAlive 存活
	ParticipantAlive ParticipantStatus = "alive"
	// ParticipantDowned 倒下
	ParticipantDowned ParticipantStatus = "downed"
)

// Participant 团战参战者
type Participant struct {
	PlayerID    string            `json:"player_id"`
	Health      int               `json:"health"`
	MaxHealth   int               `json:"max_health"`
	Attack      int               `json:"attack"`
	Defense     int               `json:"defense"`
	Status      ParticipantStatus `json:"status"`
	DefendBonus int               `json:"defend_bonus,omitempty"`
	Reward      int64             `json:"reward,omitempty"`
	Paid        bool              `json:"paid,omitempty"`
}

// Alive 是否存活
func (p *Participant) Alive() bool {
	return p.Health > 0
}

// Raid 团战会话
type Raid struct {
	ID           string         `json:"id"`
	BossKey      string         `json:"boss_key"`
	BossName     string         `json:"boss_name"`
	BossHP       int            `json:"boss_hp"`
	BossMaxHP    int            `json:"boss_max_hp"`
	BossDamage   int            `json:"boss_damage"`
	BossDefense  int            `json:"boss_defense"`
	RewardPool   int64          `json:"reward_pool"`
	HostID       string         `json:"host_id"`
	Participants []*Participant `json:"participants"`
	Status       RaidStatus     `json:"status"`
	Result       BattleResult   `json:"result,omitempty"`
	EntryFee     int64          `json:"entry_fee"`
	Refunded     bool           `json:"refunded,omitempty"`
	Deadline     time.Time      `json:"deadline"`
	TurnOrder    []string       `json:"turn_order"`
	CurrentIndex int            `json:"current_index"`
	Round        int            `json:"round"`
	Log          []string       `json:"log"`
	CreatedAt    time.Time      `json:"created_at"`
	StartedAt    time.Time      `json:"started_at,omitempty"`
	EndedAt      time.Time      `json:"ended_at,omitempty"`
}

// Participant 按玩家ID查找参战者
func (r *Raid) Participant(playerID string) *Participant {
	for _, p := range r.Participants {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// Current 当前行动的参战者
func (r *Raid) Current() *Participant {
	if r.Status != RaidActive || r.CurrentIndex < 0 || r.CurrentIndex >= len(r.Participants) {
		return nil
	}
	return r.Participants[r.CurrentIndex]
}

// Living 存活的参战者，按加入顺序
func (r *Raid) Living() []*Participant {
	living := make([]*Participant, 0, len(r.Participants))
	for _, p := range r.Participants {
		if p.Alive() {
			living = append(living, p)
		}
	}
	return living
}

// Terminal 是否处于终态
func (r *Raid) Terminal() bool {
	return r.Status == RaidCompleted || r.Status == RaidCancelled
}

// Settled 终态下的退款与奖励是否都已发放
func (r *Raid) Settled() bool {
	switch r.Status {
	case RaidCancelled:
		return r.Refunded
	case RaidCompleted:
		for _, p := range r.Participants {
			if p.Reward > 0 && !p.Paid {
				return false
			}
		}
		return true
	}
	return false
}

// ShouldCleanup 检查团战记录是否应该被清理
func (r *Raid) ShouldCleanup(now time.Time, retention time.Duration) bool {
	if !r.Terminal() || !r.Settled() {
		return false
	}
	return now.Sub(r.EndedAt) > retention
}

// AddLog 追加战斗日志
func (r *Raid) AddLog(line string) {
	r.Log = append(r.Log, line)
}
