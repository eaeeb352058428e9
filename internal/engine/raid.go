// raid.go

package engine

import (
	"fmt"
	"time"

	"github.com/jacl-coder/RuneForge-Server/internal/models"
)

// RaidRules 团战规则
type RaidRules struct {
	EntryFee        int64
	JoinWindow      time.Duration
	Capacity        int
	MinParticipants int
	DefendBonus     int
	Retention       time.Duration
}

// DefaultRaidRules 默认团战规则
func DefaultRaidRules() RaidRules {
	return RaidRules{
		EntryFee:        100,
		JoinWindow:      30 * time.Second,
		Capacity:        4,
		MinParticipants: 2,
		DefendBonus:     10,
		Retention:       2 * time.Minute,
	}
}

// NewParticipant 按玩家属性快照生成参战者
func NewParticipant(playerID string, stats models.Stats) *models.Participant {
	return &models.Participant{
		PlayerID:  playerID,
		Health:    stats.Health,
		MaxHealth: stats.Health,
		Attack:    stats.Attack,
		Defense:   stats.Defense,
		Status:    models.ParticipantAlive,
	}
}

// NewRaid 创建等待加入的团战，房主自动成为第一位参战者
func NewRaid(id string, boss models.Boss, host *models.Participant, rules RaidRules, now time.Time) *models.Raid {
	r := &models.Raid{
		ID:          id,
		BossKey:     boss.Key,
		BossName:    boss.Name,
		BossHP:      boss.Health,
		BossMaxHP:   boss.Health,
		BossDamage:  boss.Damage,
		BossDefense: boss.Defense,
		RewardPool:  boss.RewardPool,
		HostID:      host.PlayerID,
		Status:      models.RaidWaiting,
		EntryFee:    rules.EntryFee,
		Deadline:    now.Add(rules.JoinWindow),
		CreatedAt:   now,
	}
	r.Participants = append(r.Participants, host)
	r.TurnOrder = append(r.TurnOrder, host.PlayerID)
	r.AddLog(fmt.Sprintf("%s 发起了对 %s 的团战", host.PlayerID, boss.Name))
	return r
}

// JoinRaid 加入团战，人数达到上限时立即开战
func JoinRaid(r *models.Raid, p *models.Participant, rules RaidRules, now time.Time) error {
	if r.Status != models.RaidWaiting {
		return fmt.Errorf("%w: 团战状态为 %s", ErrBattleNotJoinable, r.Status)
	}
	if !now.Before(r.Deadline) {
		return fmt.Errorf("%w: 加入时间已过", ErrBattleNotJoinable)
	}
	if r.Participant(p.PlayerID) != nil {
		return fmt.Errorf("%w: 已经加入", ErrBattleNotJoinable)
	}
	if len(r.Participants) >= rules.Capacity {
		return fmt.Errorf("%w: 人数已满", ErrBattleNotJoinable)
	}

	r.Participants = append(r.Participants, p)
	r.TurnOrder = append(r.TurnOrder, p.PlayerID)
	r.AddLog(fmt.Sprintf("%s 加入了团战", p.PlayerID))

	if len(r.Participants) >= rules.Capacity {
		ActivateRaid(r, now)
	}
	return nil
}

// ActivateRaid 开战：首领先对所有存活者攻击一次，然后由第一位存活者行动
func ActivateRaid(r *models.Raid, now time.Time) {
	if r.Status != models.RaidWaiting {
		return
	}
	r.Status = models.RaidActive
	r.StartedAt = now
	r.Round = 1
	r.AddLog(fmt.Sprintf("团战开始，共 %d 人参战", len(r.Participants)))

	bossAttack(r)
	if checkDefeat(r, now) {
		return
	}
	r.CurrentIndex = nextLiving(r, -1)
}

// bossAttack 首领攻击所有存活者，防御加成在本次攻击中生效
func bossAttack(r *models.Raid) {
	for _, p := range r.Participants {
		if !p.Alive() {
			continue
		}
		dmg := Mitigate(r.BossDamage, p.Defense+p.DefendBonus)
		p.Health -= dmg
		r.AddLog(fmt.Sprintf("%s 对 %s 造成 %d 点伤害", r.BossName, p.PlayerID, dmg))
		if !p.Alive() {
			p.Health = 0
			p.Status = models.ParticipantDowned
			r.AddLog(fmt.Sprintf("%s 倒下了", p.PlayerID))
		}
	}
}

// nextLiving 从 after 之后按加入顺序查找下一位存活者，没有则返回 -1
func nextLiving(r *models.Raid, after int) int {
	for i := after + 1; i < len(r.Participants); i++ {
		if r.Participants[i].Alive() {
			return i
		}
	}
	return -1
}

func checkDefeat(r *models.Raid, now time.Time) bool {
	if len(r.Living()) > 0 {
		return false
	}
	r.Status = models.RaidCompleted
	r.Result = models.ResultDefeat
	r.EndedAt = now
	r.CurrentIndex = -1
	r.AddLog("全员倒下，团战失败")
	return true
}

func settleVictory(r *models.Raid, now time.Time) {
	r.Status = models.RaidCompleted
	r.Result = models.ResultVictory
	r.EndedAt = now
	r.CurrentIndex = -1

	survivors := r.Living()
	if len(survivors) == 0 {
		return
	}
	share := r.RewardPool / int64(len(survivors))
	for _, p := range survivors {
		p.Reward = share
	}
	r.AddLog(fmt.Sprintf("%s 被击败！%d 名幸存者各获得 %d 金币", r.BossName, len(survivors), share))
}

// RaidAct 当前参战者行动。最后一位存活者行动后首领反击，回合数加一。
func RaidAct(r *models.Raid, playerID string, action models.Action, rules RaidRules, now time.Time) error {
	if r.Status != models.RaidActive {
		return ErrBattleNotActive
	}
	current := r.Current()
	if current == nil || current.PlayerID != playerID {
		return ErrNotYourTurn
	}

	switch action {
	case models.ActionAttack:
		dmg := Mitigate(current.Attack, r.BossDefense)
		r.BossHP -= dmg
		r.AddLog(fmt.Sprintf("%s 对 %s 造成 %d 点伤害", playerID, r.BossName, dmg))
		if r.BossHP <= 0 {
			r.BossHP = 0
			settleVictory(r, now)
			return nil
		}
	case models.ActionDefend:
		current.DefendBonus = rules.DefendBonus
		r.AddLog(fmt.Sprintf("%s 进入防御姿态", playerID))
	default:
		return ErrInvalidAction
	}

	if next := nextLiving(r, r.CurrentIndex); next >= 0 {
		r.CurrentIndex = next
		return nil
	}

	// 回合结束
	bossAttack(r)
	for _, p := range r.Participants {
		p.DefendBonus = 0
	}
	if checkDefeat(r, now) {
		return nil
	}
	r.Round++
	r.CurrentIndex = nextLiving(r, -1)
	return nil
}

// SweepOutcome 超时检查的处理结果
type SweepOutcome string

const (
	SweepNone      SweepOutcome = ""
	SweepCancelled SweepOutcome = "cancelled"
	SweepActivated SweepOutcome = "activated"
)

// SweepRaid 加入时间结束后：人数不足则取消，否则开战。非等待状态不做处理。
func SweepRaid(r *models.Raid, rules RaidRules, now time.Time) SweepOutcome {
	if r.Status != models.RaidWaiting || now.Before(r.Deadline) {
		return SweepNone
	}
	if len(r.Participants) < rules.MinParticipants {
		r.Status = models.RaidCancelled
		r.EndedAt = now
		r.AddLog("参战人数不足，团战取消")
		return SweepCancelled
	}
	ActivateRaid(r, now)
	return SweepActivated
}
