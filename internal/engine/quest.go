// quest.go

package engine

import (
	"time"

	"github.com/jacl-coder/RuneForge-Server/internal/models"
)

// QuestDefinition 任务定义
type QuestDefinition struct {
	Key    string
	Name   string
	Reward int64
	// Progress 返回当前进度与目标值
	Progress func(q models.QuestRecord) (int, int)
}

// Done 是否达成
func (d QuestDefinition) Done(q models.QuestRecord) bool {
	cur, target := d.Progress(q)
	return cur >= target
}

func flagProgress(set bool) (int, int) {
	if set {
		return 1, 1
	}
	return 0, 1
}

// Quests 任务列表，顺序仅用于展示
var Quests = []QuestDefinition{
	{
		Key: "dig_novice", Name: "新手挖掘者", Reward: 500,
		Progress: func(q models.QuestRecord) (int, int) { return q.DigCount, 10 },
	},
	{
		Key: "power_10", Name: "初露锋芒", Reward: 1000,
		Progress: func(q models.QuestRecord) (int, int) { return q.PeakPower, 10 },
	},
	{
		Key: "goblin_slayer", Name: "哥布林克星", Reward: 1500,
		Progress: func(q models.QuestRecord) (int, int) { return flagProgress(q.GoblinDefeated) },
	},
	{
		Key: "seasoned_hunter", Name: "老练猎手", Reward: 2000,
		Progress: func(q models.QuestRecord) (int, int) { return q.HuntCount, 20 },
	},
	{
		Key: "power_25", Name: "声名远扬", Reward: 3000,
		Progress: func(q models.QuestRecord) (int, int) { return q.PeakPower, 25 },
	},
	{
		Key: "orc_slayer", Name: "兽人终结者", Reward: 5000,
		Progress: func(q models.QuestRecord) (int, int) { return flagProgress(q.OrcDefeated) },
	},
}

// QuestByKey 按键查找任务
func QuestByKey(key string) (QuestDefinition, bool) {
	for _, d := range Quests {
		if d.Key == key {
			return d, true
		}
	}
	return QuestDefinition{}, false
}

// trackPower 记录历史最高战力
func trackPower(p *models.Player, stats models.Stats) {
	if power := stats.Power(); power > p.Quests.PeakPower {
		p.Quests.PeakPower = power
	}
}

// EvaluateQuests 检查所有任务，记录新完成的任务并返回其键
func EvaluateQuests(p *models.Player, now time.Time) []string {
	if p.Quests.Completed == nil {
		p.Quests.Completed = make(map[string]*models.QuestCompletion)
	}
	var completed []string
	for _, d := range Quests {
		if _, done := p.Quests.Completed[d.Key]; done {
			continue
		}
		if d.Done(p.Quests) {
			p.Quests.Completed[d.Key] = &models.QuestCompletion{CompletedAt: now, Reward: d.Reward}
			completed = append(completed, d.Key)
		}
	}
	return completed
}

// claimQuest 领取任务奖励
func claimQuest(p *models.Player, key string, now time.Time) (int64, error) {
	if _, ok := QuestByKey(key); !ok {
		return 0, ErrInvalidTarget
	}
	completion, ok := p.Quests.Completed[key]
	if !ok {
		return 0, ErrQuestNotCompleted
	}
	if completion.Claimed {
		return 0, ErrAlreadyClaimed
	}
	if err := credit(p, completion.Reward); err != nil {
		return 0, err
	}
	completion.Claimed = true
	claimedAt := now
	completion.ClaimedAt = &claimedAt
	return completion.Reward, nil
}

// QuestProgress 任务进度视图
type QuestProgress struct {
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	Reward      int64      `json:"reward"`
	Current     int        `json:"current"`
	Target      int        `json:"target"`
	Completed   bool       `json:"completed"`
	Claimed     bool       `json:"claimed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// QuestProgressOf 玩家所有任务的进度
func QuestProgressOf(p *models.Player) []QuestProgress {
	out := make([]QuestProgress, 0, len(Quests))
	for _, d := range Quests {
		cur, target := d.Progress(p.Quests)
		if cur > target {
			cur = target
		}
		qp := QuestProgress{Key: d.Key, Name: d.Name, Reward: d.Reward, Current: cur, Target: target}
		if c, ok := p.Quests.Completed[d.Key]; ok {
			at := c.CompletedAt
			qp.Completed = true
			qp.Claimed = c.Claimed
			qp.CompletedAt = &at
			qp.Reward = c.Reward
		}
		out = append(out, qp)
	}
	return out
}
