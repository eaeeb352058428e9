// data.go

package catalog

import "github.com/jacl-coder/RuneForge-Server/internal/models"

// 常用物品名
const (
	HealingPotion = "Healing Potion"
	ManaPotion    = "Mana Potion"
	Shovel        = "Shovel"
)

// Default 内置游戏数据
func Default() *Catalog {
	c := &Catalog{
		Items:   make(map[string]models.Item),
		Enemies: make(map[string]models.Enemy),
		Bosses:  make(map[string]models.Boss),
	}

	for _, item := range defaultItems {
		c.Items[item.Name] = item
	}
	for _, enemy := range defaultEnemies {
		c.Enemies[enemy.Key] = enemy
	}
	for _, boss := range defaultBosses {
		c.Bosses[boss.Key] = boss
	}

	c.Sets = defaultSets
	c.Aliases = defaultAliases
	c.DigTable = defaultDigTable
	c.HuntTable = defaultHuntTable
	return c
}

var defaultItems = []models.Item{
	// 武器
	{Name: "Wooden Sword", Kind: models.KindGear, Slot: models.SlotWeapon, Stats: models.Stats{Attack: 2}},
	{Name: "Iron Sword", Kind: models.KindGear, Slot: models.SlotWeapon, Stats: models.Stats{Attack: 5}},
	{
		Name: "Berserker Axe", Kind: models.KindGear, Slot: models.SlotWeapon,
		Stats:   models.Stats{Attack: 7},
		Special: &models.WeaponSpecial{Kind: models.SpecialRage, DamageMultiplier: 1.5, SelfMissChance: 40},
	},
	{
		Name: "Hunter Bow", Kind: models.KindGear, Slot: models.SlotWeapon,
		Stats:   models.Stats{Attack: 5, Speed: 1},
		Special: &models.WeaponSpecial{Kind: models.SpecialAimedShot, BonusDamage: 3},
	},
	{
		Name: "Guardian Blade", Kind: models.KindGear, Slot: models.SlotWeapon,
		Stats:   models.Stats{Attack: 4, Defense: 3},
		Special: &models.WeaponSpecial{Kind: models.SpecialDefensiveStrike, DamageMultiplier: 0.5, DefenseBonus: 10},
	},

	// 头盔
	{Name: "Leather Cap", Kind: models.KindGear, Slot: models.SlotHelmet, Stats: models.Stats{Defense: 1}},
	{Name: "Iron Helm", Kind: models.KindGear, Slot: models.SlotHelmet, Stats: models.Stats{Defense: 3, Health: 1}},

	// 护甲
	{Name: "Leather Armor", Kind: models.KindGear, Slot: models.SlotArmor, Stats: models.Stats{Defense: 2, Health: 2}},
	{Name: "Iron Plate", Kind: models.KindGear, Slot: models.SlotArmor, Stats: models.Stats{Defense: 5, Health: 3}},

	// 坐骑
	{Name: "Pony", Kind: models.KindGear, Slot: models.SlotMount, Stats: models.Stats{Speed: 2}},
	{Name: "Warhorse", Kind: models.KindGear, Slot: models.SlotMount, Stats: models.Stats{Speed: 4, Attack: 1}},

	// 宠物
	{Name: "Wolf Pup", Kind: models.KindCompanion, Slot: models.SlotCompanion, Stats: models.Stats{Attack: 2, Speed: 1}},
	{Name: "Lucky Cat", Kind: models.KindCompanion, Slot: models.SlotCompanion, Stats: models.Stats{Luck: 5}},
	{Name: "Stone Golem", Kind: models.KindCompanion, Slot: models.SlotCompanion, Stats: models.Stats{Defense: 3, Health: 3}},
	{Name: "Phoenix Chick", Kind: models.KindCompanion, Slot: models.SlotCompanion, Stats: models.Stats{Attack: 3, Luck: 2}},

	// 消耗品与工具
	{Name: HealingPotion, Kind: models.KindConsumable},
	{Name: ManaPotion, Kind: models.KindConsumable},
	{Name: Shovel, Kind: models.KindTool},

	// 材料
	{Name: "Slime Jelly", Kind: models.KindMaterial},
	{Name: "Goblin Ear", Kind: models.KindMaterial},
	{Name: "Wolf Pelt", Kind: models.KindMaterial},
	{Name: "Orc Tusk", Kind: models.KindMaterial},
	{Name: "Iron Ore", Kind: models.KindMaterial},
	{Name: "Old Bone", Kind: models.KindMaterial},
	{Name: "Gemstone", Kind: models.KindMaterial},
	{Name: "Ancient Relic", Kind: models.KindMaterial},
}

var defaultSets = []models.SetBonus{
	{
		Name: "Iron Vanguard",
		Requires: map[models.Slot]string{
			models.SlotWeapon: "Iron Sword",
			models.SlotHelmet: "Iron Helm",
			models.SlotArmor:  "Iron Plate",
		},
		Bonus: models.Stats{Attack: 3, Defense: 3, Health: 2},
	},
	{
		Name: "Wild Hunter",
		Requires: map[models.Slot]string{
			models.SlotWeapon:    "Hunter Bow",
			models.SlotMount:     "Pony",
			models.SlotCompanion: "Wolf Pup",
		},
		Bonus: models.Stats{Speed: 2, Luck: 3},
	},
}

var defaultEnemies = []models.Enemy{
	{
		Key: "slime", Name: "Slime", Health: 5, Damage: 1, CritChance: 0, Reward: 10, ManaCost: 5,
		Drops: []models.DropEntry{
			models.Independent("Slime Jelly", 50),
			models.Independent(HealingPotion, 15),
		},
	},
	{
		Key: "goblin", Name: "Goblin", Health: 12, Damage: 2, CritChance: 10, Reward: 40, ManaCost: 10,
		QuestFlag: models.FlagGoblinDefeated,
		Drops: []models.DropEntry{
			models.Independent("Goblin Ear", 60),
			models.ExclusiveMember("goblin_gear", "Leather Cap", 15),
			models.ExclusiveMember("goblin_gear", "Wooden Sword", 10),
			models.Independent(HealingPotion, 20),
		},
	},
	{
		Key: "wolf", Name: "Dire Wolf", Health: 18, Damage: 3, Defense: 2, CritChance: 15, Reward: 60, ManaCost: 15,
		Drops: []models.DropEntry{
			models.Independent("Wolf Pelt", 70),
			models.ExclusiveMember("wolf_rare", "Wolf Pup", 5),
			models.ExclusiveMember("wolf_rare", "Hunter Bow", 8),
		},
	},
	{
		Key: "orc", Name: "Orc Warlord", Health: 35, Damage: 5, Defense: 5, CritChance: 15, Reward: 150, ManaCost: 25,
		QuestFlag: models.FlagOrcDefeated,
		Drops: []models.DropEntry{
			models.Independent("Orc Tusk", 60),
			models.ExclusiveMember("orc_arms", "Berserker Axe", 6),
			models.ExclusiveMember("orc_arms", "Iron Plate", 8),
			models.ExclusiveMember("orc_arms", "Guardian Blade", 6),
			models.Independent(HealingPotion, 30),
		},
	},
	{
		Key: "troll", Name: "Cave Troll", Health: 50, Damage: 7, Defense: 8, CritChance: 20, Reward: 250, ManaCost: 35,
		Drops: []models.DropEntry{
			models.ExclusiveMember("troll_hoard", "Stone Golem", 4),
			models.ExclusiveMember("troll_hoard", "Warhorse", 6),
			models.Independent("Iron Helm", 10),
			models.Independent("Gemstone", 25),
		},
	},
}

var defaultBosses = []models.Boss{
	{Key: "dragon", Name: "Ember Dragon", Health: 120, Damage: 4, Defense: 10, RewardPool: 2000},
	{Key: "lich", Name: "Hollow Lich", Health: 90, Damage: 5, Defense: 5, RewardPool: 1600},
}

var defaultAliases = map[string]string{
	"pup":     "Wolf Pup",
	"wolfpup": "Wolf Pup",
	"cat":     "Lucky Cat",
	"golem":   "Stone Golem",
	"phoenix": "Phoenix Chick",
	"axe":     "Berserker Axe",
	"bow":     "Hunter Bow",
	"relic":   "Ancient Relic",
	"gem":     "Gemstone",
}

var defaultDigTable = []models.DropEntry{
	models.Independent("Iron Ore", 40),
	models.Independent("Old Bone", 30),
	models.ExclusiveMember("dig_treasure", "Gemstone", 8),
	models.ExclusiveMember("dig_treasure", "Ancient Relic", 3),
	models.ExclusiveMember("dig_treasure", "Lucky Cat", 1),
}

var defaultHuntTable = []models.DropEntry{
	models.Independent("Wolf Pelt", 35),
	models.Independent(HealingPotion, 10),
	models.ExclusiveMember("hunt_companion", "Wolf Pup", 6),
	models.ExclusiveMember("hunt_companion", "Phoenix Chick", 2),
	models.ExclusiveMember("hunt_companion", "Lucky Cat", 3),
}
