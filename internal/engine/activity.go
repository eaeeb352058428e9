// activity.go

package engine

import (
	"context"

	"github.com/jacl-coder/RuneForge-Server/internal/catalog"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
)

// 挖掘获得的金币范围
const (
	digCurrencyMin  = 5
	digCurrencySpan = 21
)

// ActivityResult 采集活动结果
type ActivityResult struct {
	Activity   string   `json:"activity"`
	Currency   int64    `json:"currency"`
	Items      []string `json:"items,omitempty"`
	Companions []string `json:"companions,omitempty"`
	Mana       int      `json:"mana"`
	Count      int      `json:"count"`
	Quests     []string `json:"quests,omitempty"`
}

// Dig 挖掘：需要铲子，消耗法力，获得少量金币与挖掘掉落
func (e *Engine) Dig(ctx context.Context, id string) (*ActivityResult, error) {
	result := &ActivityResult{Activity: "dig"}
	_, err := e.mutatePlayer(ctx, id, func(p *models.Player) error {
		if p.ItemCount(catalog.Shovel) <= 0 {
			return ErrInsufficientItem
		}
		now := e.now()
		applyRegen(p, now)
		if err := spendMana(p, e.rules.DigManaCost); err != nil {
			return err
		}

		result.Currency = int64(digCurrencyMin + e.dice.Intn(digCurrencySpan))
		p.Currency += result.Currency
		luck := ResolveStats(p, e.catalog).Luck
		drops := RollDrops(e.catalog.DigTable, e.bonusFor(p, luck), e.dice)
		result.Items, result.Companions = grantItems(p, drops, e.catalog, now)

		p.Quests.DigCount++
		result.Count = p.Quests.DigCount
		result.Quests = e.afterProgress(p)
		result.Mana = p.Mana
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Hunt 狩猎：消耗法力，按狩猎掉落表获得材料与宠物
func (e *Engine) Hunt(ctx context.Context, id string) (*ActivityResult, error) {
	result := &ActivityResult{Activity: "hunt"}
	_, err := e.mutatePlayer(ctx, id, func(p *models.Player) error {
		now := e.now()
		applyRegen(p, now)
		if err := spendMana(p, e.rules.HuntManaCost); err != nil {
			return err
		}

		luck := ResolveStats(p, e.catalog).Luck
		drops := RollDrops(e.catalog.HuntTable, e.bonusFor(p, luck), e.dice)
		result.Items, result.Companions = grantItems(p, drops, e.catalog, now)

		p.Quests.HuntCount++
		result.Count = p.Quests.HuntCount
		result.Quests = e.afterProgress(p)
		result.Mana = p.Mana
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) bonusFor(p *models.Player, luck int) func(string) float64 {
	return func(item string) float64 {
		return PursuitBonus(p, item, luck, e.catalog)
	}
}
