// solo.go

package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/jacl-coder/RuneForge-Server/internal/models"
)

// 敌方行动的闪避参数（百分比）
const (
	baseMissChance = 5
	maxMissChance  = 25
	dodgePerSpeed  = 2
	maxDodgeChance = 20
)

// 特技倍率缺省值
const (
	defaultRageMultiplier      = 1.5
	defaultDefensiveMultiplier = 0.5
)

// AvailableActions 按武器特技生成的行动菜单
func AvailableActions(special *models.WeaponSpecial) []models.Action {
	actions := []models.Action{models.ActionAttack}
	if special != nil {
		switch special.Kind {
		case models.SpecialRage:
			actions = append(actions, models.ActionRage)
		case models.SpecialAimedShot:
			actions = append(actions, models.ActionAimedShot)
		case models.SpecialDefensiveStrike:
			actions = append(actions, models.ActionDefensiveStrike)
		}
	}
	return append(actions, models.ActionHeal)
}

// NewSoloBattle 创建单人战斗，属性在开战时快照
func NewSoloBattle(playerID string, enemy models.Enemy, stats models.Stats, special *models.WeaponSpecial, now time.Time) *models.SoloBattle {
	return &models.SoloBattle{
		PlayerID:  playerID,
		EnemyKey:  enemy.Key,
		EnemyName: enemy.Name,
		PlayerHP:  stats.Health,
		PlayerMax: stats.Health,
		EnemyHP:   enemy.Health,
		EnemyMax:  enemy.Health,
		WhoseTurn: models.SideEnemy,
		Stats:     stats,
		Special:   special,
		Actions:   AvailableActions(special),
		StartedAt: now,
	}
}

// EnemyTurn 敌方行动一次：依次判定落空、闪避与暴击
func EnemyTurn(b *models.SoloBattle, enemy models.Enemy, dice Dice) {
	b.WhoseTurn = models.SideEnemy
	defense := b.Stats.Defense + b.PendingDefense
	b.PendingDefense = 0

	missChance := min(maxMissChance, baseMissChance+b.Stats.Luck)
	dodgeChance := min(maxDodgeChance, dodgePerSpeed*b.Stats.Speed)

	switch {
	case dice.Percent() < float64(missChance):
		b.AddLog(fmt.Sprintf("%s 的攻击落空了", enemy.Name))
	case dice.Percent() < float64(dodgeChance):
		b.AddLog(fmt.Sprintf("你闪开了 %s 的攻击", enemy.Name))
	default:
		raw := enemy.Damage
		crit := dice.Percent() < enemy.CritChance
		if crit {
			raw *= 2
		}
		dmg := Mitigate(raw, defense)
		b.PlayerHP -= dmg
		if crit {
			b.AddLog(fmt.Sprintf("%s 暴击！造成 %d 点伤害", enemy.Name, dmg))
		} else {
			b.AddLog(fmt.Sprintf("%s 造成 %d 点伤害", enemy.Name, dmg))
		}
	}

	if b.PlayerHP <= 0 {
		b.PlayerHP = 0
		b.Result = models.ResultDefeat
		b.AddLog("你被击败了")
		return
	}
	b.WhoseTurn = models.SidePlayer
}

func actionAllowed(b *models.SoloBattle, action models.Action) bool {
	for _, a := range b.Actions {
		if a == action {
			return true
		}
	}
	return false
}

func strike(b *models.SoloBattle, enemy models.Enemy, raw int, label string) {
	dmg := Mitigate(raw, enemy.Defense)
	b.EnemyHP -= dmg
	b.AddLog(fmt.Sprintf("你使用%s，对 %s 造成 %d 点伤害", label, enemy.Name, dmg))
}

// PlayerTurn 执行玩家行动并在敌人存活时让敌人回合。
// heal 的药水消耗由调用方负责。
func PlayerTurn(b *models.SoloBattle, enemy models.Enemy, action models.Action, healAmount int, dice Dice) error {
	if b.Finished() || b.WhoseTurn != models.SidePlayer {
		return ErrBattleNotActive
	}
	if !actionAllowed(b, action) {
		return ErrInvalidAction
	}

	b.Turn++
	attack := b.Stats.Attack

	switch action {
	case models.ActionAttack:
		strike(b, enemy, attack, "普通攻击")
	case models.ActionRage:
		mult := b.Special.DamageMultiplier
		if mult <= 0 {
			mult = defaultRageMultiplier
		}
		if dice.Percent() < b.Special.SelfMissChance {
			b.AddLog("狂暴一击落空了")
		} else {
			strike(b, enemy, int(math.Floor(float64(attack)*mult)), "狂暴")
		}
	case models.ActionAimedShot:
		strike(b, enemy, attack+b.Special.BonusDamage, "瞄准射击")
		b.SkipEnemyAction = true
	case models.ActionDefensiveStrike:
		mult := b.Special.DamageMultiplier
		if mult <= 0 {
			mult = defaultDefensiveMultiplier
		}
		strike(b, enemy, int(math.Floor(float64(attack)*mult)), "防御反击")
		b.PendingDefense = b.Special.DefenseBonus
	case models.ActionHeal:
		healed := min(healAmount, b.PlayerMax-b.PlayerHP)
		if healed < 0 {
			healed = 0
		}
		b.PlayerHP += healed
		b.AddLog(fmt.Sprintf("你喝下治疗药水，恢复 %d 点生命", healed))
	}

	if b.EnemyHP <= 0 {
		b.EnemyHP = 0
		b.Result = models.ResultVictory
		b.AddLog(fmt.Sprintf("你击败了 %s", enemy.Name))
		return nil
	}

	if b.SkipEnemyAction {
		b.SkipEnemyAction = false
		b.WhoseTurn = models.SidePlayer
		b.AddLog(fmt.Sprintf("%s 被压制，无法行动", enemy.Name))
		return nil
	}

	EnemyTurn(b, enemy, dice)
	return nil
}
