// seed.go

package main

import (
	"context"
	"fmt"

	"github.com/jacl-coder/RuneForge-Server/internal/catalog"
	"github.com/jacl-coder/RuneForge-Server/internal/engine"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
)

// 演示玩家的初始金币
const seedCurrency = 500

// starterKit 演示玩家的初始物品
var starterKit = []struct {
	item string
	qty  int
	slot models.Slot
}{
	{catalog.Shovel, 1, ""},
	{catalog.HealingPotion, 3, ""},
	{catalog.ManaPotion, 1, ""},
	{"Wooden Sword", 1, models.SlotWeapon},
	{"Leather Cap", 1, models.SlotHelmet},
}

// seedPlayers 给每个玩家发放金币与初始物品，已有余额的玩家跳过
func seedPlayers(ctx context.Context, eng *engine.Engine, ids []string) error {
	for _, id := range ids {
		balance, err := eng.Balance(ctx, id)
		if err != nil {
			return fmt.Errorf("读取玩家 %s 失败: %w", id, err)
		}
		if balance > 0 {
			continue
		}

		if _, err := eng.Credit(ctx, id, seedCurrency); err != nil {
			return fmt.Errorf("发放金币给 %s 失败: %w", id, err)
		}
		for _, kit := range starterKit {
			if _, err := eng.GrantItem(ctx, id, kit.item, kit.qty); err != nil {
				return fmt.Errorf("发放 %s 给 %s 失败: %w", kit.item, id, err)
			}
			if kit.slot == "" {
				continue
			}
			if _, err := eng.Equip(ctx, id, kit.slot, kit.item); err != nil {
				return fmt.Errorf("为 %s 装备 %s 失败: %w", id, kit.item, err)
			}
		}
	}
	return nil
}
