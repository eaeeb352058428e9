// ledger.go

package engine

import (
	"time"

	"github.com/jacl-coder/RuneForge-Server/internal/models"
)

// ManaState 法力恢复相关的存储状态
type ManaState struct {
	Mana        int
	LastRegenAt time.Time
	AnchorAt    time.Time
}

// RegenMana 惰性恢复法力：每满一分钟恢复1点，上限100。
// LastRegenAt 只前进整分钟，不足一分钟的部分留到下次。
func RegenMana(s ManaState, now time.Time) (ManaState, int) {
	if s.LastRegenAt.IsZero() {
		s.LastRegenAt = now
		s.AnchorAt = now
		return s, 0
	}

	minutes := int(now.Sub(s.LastRegenAt) / time.Minute)
	if minutes <= 0 {
		return s, 0
	}

	before := s.Mana
	s.Mana += minutes
	if s.Mana > models.MaxMana {
		s.Mana = models.MaxMana
	}
	s.LastRegenAt = s.LastRegenAt.Add(time.Duration(minutes) * time.Minute)
	s.AnchorAt = now
	return s, s.Mana - before
}

func manaState(p *models.Player) ManaState {
	return ManaState{Mana: p.Mana, LastRegenAt: p.LastRegenAt, AnchorAt: p.RegenAnchorAt}
}

// applyRegen 对玩家档案执行法力恢复，返回档案是否被修改
func applyRegen(p *models.Player, now time.Time) bool {
	before := manaState(p)
	after, _ := RegenMana(before, now)
	p.Mana = after.Mana
	p.LastRegenAt = after.LastRegenAt
	p.RegenAnchorAt = after.AnchorAt
	return !after.LastRegenAt.Equal(before.LastRegenAt) || after.Mana != before.Mana
}

// NextRegenIn 距离下一点法力恢复的时间，满法力时为0
func NextRegenIn(p *models.Player, now time.Time) time.Duration {
	if p.Mana >= models.MaxMana {
		return 0
	}
	next := p.LastRegenAt.Add(time.Minute).Sub(now)
	if next < 0 {
		return 0
	}
	return next
}

func credit(p *models.Player, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	p.Currency += amount
	return nil
}

func debit(p *models.Player, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if p.Currency < amount {
		return ErrInsufficientFunds
	}
	p.Currency -= amount
	return nil
}

// spendMana 扣除法力，调用前需已执行 applyRegen
func spendMana(p *models.Player, amount int) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if p.Mana < amount {
		return ErrInsufficientMana
	}
	p.Mana -= amount
	return nil
}

// restoreMana 补充法力，不改变恢复计时
func restoreMana(p *models.Player, amount int) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	p.Mana += amount
	if p.Mana > models.MaxMana {
		p.Mana = models.MaxMana
	}
	return nil
}
