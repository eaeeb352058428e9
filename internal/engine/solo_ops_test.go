package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/jacl-coder/RuneForge-Server/internal/catalog"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
	"github.com/jacl-coder/RuneForge-Server/internal/storage"
)

func TestWeakEnemyFallsInOneTurn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.equip(t, "hero", "Berserker Axe", "Phoenix Chick")

	b, err := env.engine.StartSolo(ctx, "hero", "slime")
	if err != nil {
		t.Fatalf("StartSolo: %v", err)
	}
	if b.Stats.Attack != 10 || b.PlayerHP != 4 || b.WhoseTurn != models.SidePlayer {
		t.Fatalf("after enemy opener: %+v", b)
	}

	b, err = env.engine.SoloAction(ctx, "hero", models.ActionAttack)
	if err != nil {
		t.Fatalf("SoloAction: %v", err)
	}
	if b.Result != models.ResultVictory || b.Turn != 1 {
		t.Fatalf("result = %s after %d turns", b.Result, b.Turn)
	}
	if b.Rewards == nil || b.Rewards.Currency != 10 || b.Rewards.Exp != 15 {
		t.Fatalf("rewards = %+v", b.Rewards)
	}

	if _, err := env.engine.SoloStatus(ctx, "hero"); !errors.Is(err, ErrNoActiveBattle) {
		t.Fatalf("session after victory: err = %v", err)
	}
	if got, _ := env.engine.Balance(ctx, "hero"); got != 10 {
		t.Fatalf("balance = %d, want 10", got)
	}
	if rank, _ := env.board.Rank(ctx, "hero"); rank != 1 {
		t.Fatalf("leaderboard rank = %d", rank)
	}
}

func TestStartSoloValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.engine.StartSolo(ctx, "p1", "dragon"); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("unknown enemy: err = %v", err)
	}
	if _, err := env.engine.StartSolo(ctx, "p1", "slime"); err != nil {
		t.Fatalf("StartSolo: %v", err)
	}
	if _, err := env.engine.StartSolo(ctx, "p1", "slime"); !errors.Is(err, ErrBattleInProgress) {
		t.Fatalf("second start: err = %v", err)
	}

	if _, err := env.engine.SpendMana(ctx, "p2", 98); err != nil {
		t.Fatalf("SpendMana: %v", err)
	}
	if _, err := env.engine.StartSolo(ctx, "p2", "slime"); !errors.Is(err, ErrInsufficientMana) {
		t.Fatalf("start without mana: err = %v", err)
	}
	if _, err := env.engine.SoloStatus(ctx, "p2"); !errors.Is(err, ErrNoActiveBattle) {
		t.Fatalf("session created despite rejection: %v", err)
	}
}

func TestHealConsumesPotion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.engine.StartSolo(ctx, "p1", "goblin")
	if err != nil {
		t.Fatalf("StartSolo: %v", err)
	}
	if b.PlayerHP != 3 {
		t.Fatalf("hp after opener = %d, want 3", b.PlayerHP)
	}

	if _, err := env.engine.SoloAction(ctx, "p1", models.ActionHeal); !errors.Is(err, ErrInsufficientItem) {
		t.Fatalf("heal without potion: err = %v", err)
	}
	if _, err := env.engine.SoloAction(ctx, "p1", models.ActionRage); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("rage without axe: err = %v", err)
	}

	if _, err := env.engine.GrantItem(ctx, "p1", catalog.HealingPotion, 1); err != nil {
		t.Fatalf("GrantItem: %v", err)
	}
	b, err = env.engine.SoloAction(ctx, "p1", models.ActionHeal)
	if err != nil {
		t.Fatalf("heal: %v", err)
	}
	// 治疗到上限5，随后哥布林再造成2点伤害
	if b.PlayerHP != 3 || b.Turn != 1 {
		t.Fatalf("after heal: hp=%d turn=%d", b.PlayerHP, b.Turn)
	}
	inv, _ := env.engine.Inventory(ctx, "p1")
	if inv.Inventory[catalog.HealingPotion] != 0 {
		t.Fatalf("potion not consumed: %+v", inv.Inventory)
	}
}

func TestAimedShotSkipsEnemyAction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.equip(t, "p1", "Hunter Bow")

	b, err := env.engine.StartSolo(ctx, "p1", "wolf")
	if err != nil {
		t.Fatalf("StartSolo: %v", err)
	}
	hp := b.PlayerHP

	b, err = env.engine.SoloAction(ctx, "p1", models.ActionAimedShot)
	if err != nil {
		t.Fatalf("aimed shot: %v", err)
	}
	if b.EnemyHP != 10 {
		t.Fatalf("enemy hp = %d, want 10", b.EnemyHP)
	}
	if b.PlayerHP != hp || b.WhoseTurn != models.SidePlayer {
		t.Fatalf("enemy acted after aimed shot: hp %d -> %d", hp, b.PlayerHP)
	}
}

func TestDefeatOnOpenerKeepsManaSpent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.engine.StartSolo(ctx, "p1", "troll")
	if err != nil {
		t.Fatalf("StartSolo: %v", err)
	}
	if b.Result != models.ResultDefeat || b.PlayerHP != 0 {
		t.Fatalf("result = %s hp = %d", b.Result, b.PlayerHP)
	}
	if _, err := env.engine.SoloStatus(ctx, "p1"); !errors.Is(err, ErrNoActiveBattle) {
		t.Fatalf("session after defeat: err = %v", err)
	}
	mana, _ := env.engine.Mana(ctx, "p1")
	if mana.Mana != 65 {
		t.Fatalf("mana = %d, want 65", mana.Mana)
	}
}

func TestQuitSolo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.engine.QuitSolo(ctx, "p1"); !errors.Is(err, ErrNoActiveBattle) {
		t.Fatalf("quit without battle: err = %v", err)
	}
	if _, err := env.engine.StartSolo(ctx, "p1", "slime"); err != nil {
		t.Fatalf("StartSolo: %v", err)
	}
	if _, err := env.engine.QuitSolo(ctx, "p1"); err != nil {
		t.Fatalf("QuitSolo: %v", err)
	}
	if _, err := env.engine.SoloStatus(ctx, "p1"); !errors.Is(err, ErrNoActiveBattle) {
		t.Fatalf("session after quit: err = %v", err)
	}
	mana, _ := env.engine.Mana(ctx, "p1")
	if mana.Mana != 95 {
		t.Fatalf("mana refunded on quit: %d", mana.Mana)
	}
}

func TestGoblinVictorySetsQuestFlag(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.equip(t, "p1", "Berserker Axe", "Phoenix Chick")

	if _, err := env.engine.StartSolo(ctx, "p1", "goblin"); err != nil {
		t.Fatalf("StartSolo: %v", err)
	}
	var b *models.SoloBattle
	var err error
	for i := 0; i < 2; i++ {
		b, err = env.engine.SoloAction(ctx, "p1", models.ActionAttack)
		if err != nil {
			t.Fatalf("attack #%d: %v", i+1, err)
		}
	}
	if b.Result != models.ResultVictory {
		t.Fatalf("result = %s, enemy hp %d", b.Result, b.EnemyHP)
	}

	found := false
	for _, q := range b.Rewards.Quests {
		if q == "goblin_slayer" {
			found = true
		}
	}
	if !found {
		t.Fatalf("newly completed quests = %v", b.Rewards.Quests)
	}
	if reward, err := env.engine.ClaimQuest(ctx, "p1", "goblin_slayer"); err != nil || reward != 1500 {
		t.Fatalf("ClaimQuest = %d, %v", reward, err)
	}
}

func TestVictoryStorageFailureKeepsSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.equip(t, "p1", "Berserker Axe", "Phoenix Chick")

	if _, err := env.engine.StartSolo(ctx, "p1", "slime"); err != nil {
		t.Fatalf("StartSolo: %v", err)
	}

	env.kv.failPut(storage.BucketPlayers, true)
	if _, err := env.engine.SoloAction(ctx, "p1", models.ActionAttack); !errors.Is(err, ErrStorage) {
		t.Fatalf("SoloAction with failing store: err = %v", err)
	}
	env.kv.failPut(storage.BucketPlayers, false)

	b, err := env.engine.SoloStatus(ctx, "p1")
	if err != nil {
		t.Fatalf("session lost after failed victory: %v", err)
	}
	if b.EnemyHP != 5 || b.Finished() {
		t.Fatalf("session advanced: %+v", b)
	}
	if got, _ := env.engine.Balance(ctx, "p1"); got != 0 {
		t.Fatalf("balance = %d, want 0", got)
	}
}

func TestVictoryDropsUseLuckEquippedMidBattle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.engine.Catalog().Enemies["sprite"] = models.Enemy{
		Key: "sprite", Name: "Sprite", Health: 1, Damage: 1, Reward: 5,
		Drops: []models.DropEntry{models.Independent("Gemstone", 99.5)},
	}
	if _, err := env.engine.GrantItem(ctx, "hero", "Lucky Cat", 1); err != nil {
		t.Fatalf("GrantItem: %v", err)
	}
	if _, err := env.engine.SetPursuit(ctx, "hero", "Gemstone"); err != nil {
		t.Fatalf("SetPursuit: %v", err)
	}

	b, err := env.engine.StartSolo(ctx, "hero", "sprite")
	if err != nil {
		t.Fatalf("StartSolo: %v", err)
	}
	if b.Stats.Luck != 0 {
		t.Fatalf("battle-start luck = %d, want 0", b.Stats.Luck)
	}
	if _, err := env.engine.Equip(ctx, "hero", models.SlotCompanion, "Lucky Cat"); err != nil {
		t.Fatalf("Equip: %v", err)
	}

	// 99.5 + 5×0.15 超过骰子的 99.99
	b, err = env.engine.SoloAction(ctx, "hero", models.ActionAttack)
	if err != nil {
		t.Fatalf("SoloAction: %v", err)
	}
	if b.Result != models.ResultVictory || b.Rewards == nil {
		t.Fatalf("result = %s rewards = %+v", b.Result, b.Rewards)
	}
	if len(b.Rewards.Items) != 1 || b.Rewards.Items[0] != "Gemstone" {
		t.Fatalf("drops = %v, want [Gemstone]", b.Rewards.Items)
	}
}
