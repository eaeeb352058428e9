package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/jacl-coder/RuneForge-Server/internal/catalog"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
)

func TestNakedPlayerStats(t *testing.T) {
	p := models.NewPlayer("p1", testStart)
	got := ResolveStats(p, catalog.Default())
	want := models.Stats{Health: 5}
	if got != want {
		t.Fatalf("ResolveStats = %+v, want %+v", got, want)
	}
	if WeaponSpecial(p, catalog.Default()) != nil {
		t.Fatal("naked player has a weapon special")
	}
}

func TestSetBonusNeedsEveryPiece(t *testing.T) {
	c := catalog.Default()
	p := models.NewPlayer("p1", testStart)
	p.Equipment.Set(models.SlotWeapon, "Hunter Bow")
	p.Equipment.Set(models.SlotMount, "Pony")

	partial := ResolveStats(p, c)
	if len(ActiveSets(p, c)) != 0 {
		t.Fatalf("set active without companion: %v", ActiveSets(p, c))
	}

	p.EquippedCompanion = "Wolf Pup"
	full := ResolveStats(p, c)
	// Wolf Pup 本身 +2攻击 +1速度，套装再加 +2速度 +3幸运
	if full.Speed-partial.Speed != 3 || full.Luck-partial.Luck != 3 || full.Attack-partial.Attack != 2 {
		t.Fatalf("partial = %+v, full = %+v", partial, full)
	}
}

func TestMitigate(t *testing.T) {
	tests := []struct {
		raw, def, want int
	}{
		{10, 0, 10},
		{0, 0, 1},
		{1, 50, 1},
		{8, 20, 7},
		{7, 8, 7},
		{100, 100, 50},
		{5, -3, 5},
	}
	for _, tt := range tests {
		if got := Mitigate(tt.raw, tt.def); got != tt.want {
			t.Errorf("Mitigate(%d, %d) = %d, want %d", tt.raw, tt.def, got, tt.want)
		}
	}
}

func TestMitigateProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.IntRange(0, 10000).Draw(t, "raw")
		def := rapid.IntRange(0, 1000).Draw(t, "def")
		extra := rapid.IntRange(0, 1000).Draw(t, "extra")

		dmg := Mitigate(raw, def)
		if dmg < 1 {
			t.Fatalf("Mitigate(%d, %d) = %d < 1", raw, def, dmg)
		}
		if raw > 0 && dmg > raw {
			t.Fatalf("Mitigate(%d, %d) = %d exceeds raw", raw, def, dmg)
		}
		if more := Mitigate(raw, def+extra); more > dmg {
			t.Fatalf("more defense raised damage: %d -> %d", dmg, more)
		}
	})
}

func TestRegenMana(t *testing.T) {
	last := testStart
	tests := []struct {
		name     string
		mana     int
		elapsed  time.Duration
		wantMana int
		wantLast time.Time
	}{
		{"partial minute", 40, 59 * time.Second, 40, last},
		{"two and a half minutes", 40, 150 * time.Second, 42, last.Add(2 * time.Minute)},
		{"caps at max", 99, 10 * time.Minute, 100, last.Add(10 * time.Minute)},
		{"clock went backwards", 40, -time.Minute, 40, last},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := RegenMana(ManaState{Mana: tt.mana, LastRegenAt: last, AnchorAt: last}, last.Add(tt.elapsed))
			if got.Mana != tt.wantMana || !got.LastRegenAt.Equal(tt.wantLast) {
				t.Fatalf("RegenMana = %d @ %v, want %d @ %v", got.Mana, got.LastRegenAt, tt.wantMana, tt.wantLast)
			}
		})
	}
}

func TestManaProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := models.NewPlayer("p", testStart)
		p.Mana = rapid.IntRange(0, models.MaxMana).Draw(t, "mana")
		now := testStart

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			now = now.Add(time.Duration(rapid.IntRange(0, 600).Draw(t, fmt.Sprintf("wait%d", i))) * time.Second)
			applyRegen(p, now)

			amount := rapid.IntRange(0, 60).Draw(t, fmt.Sprintf("amount%d", i))
			if rapid.Bool().Draw(t, fmt.Sprintf("restore%d", i)) {
				before := p.LastRegenAt
				if err := restoreMana(p, amount); err != nil {
					t.Fatalf("restoreMana: %v", err)
				}
				if !p.LastRegenAt.Equal(before) {
					t.Fatalf("restore moved regen clock")
				}
			} else {
				manaBefore := p.Mana
				err := spendMana(p, amount)
				if errors.Is(err, ErrInsufficientMana) && p.Mana != manaBefore {
					t.Fatalf("failed spend changed mana")
				}
			}

			if p.Mana < 0 || p.Mana > models.MaxMana {
				t.Fatalf("mana out of range: %d", p.Mana)
			}
			if p.LastRegenAt.After(now) {
				t.Fatalf("regen clock ahead of now")
			}
		}

		// 不足一分钟的两次读取结果一致
		applyRegen(p, now)
		first := p.Mana
		applyRegen(p, now.Add(p.LastRegenAt.Add(time.Minute).Sub(now)-time.Nanosecond))
		if p.Mana != first && first < models.MaxMana {
			t.Fatalf("mana changed without a full minute: %d -> %d", first, p.Mana)
		}
	})
}

func TestCurrencyNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := models.NewPlayer("p", testStart)
		ops := rapid.IntRange(1, 50).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			amount := rapid.Int64Range(0, 500).Draw(t, fmt.Sprintf("amount%d", i))
			if rapid.Bool().Draw(t, fmt.Sprintf("credit%d", i)) {
				_ = credit(p, amount)
			} else {
				before := p.Currency
				if err := debit(p, amount); err != nil && p.Currency != before {
					t.Fatalf("failed debit changed balance")
				}
			}
			if p.Currency < 0 {
				t.Fatalf("currency went negative: %d", p.Currency)
			}
		}
	})
}

func TestRollDropsScripted(t *testing.T) {
	drops := []models.DropEntry{
		models.Independent("A", 50),
		models.ExclusiveMember("g", "X", 10),
		models.Independent("B", 20),
		models.ExclusiveMember("g", "Y", 10),
		models.ExclusiveMember("h", "Z", 5),
	}
	none := func(string) float64 { return 0 }

	tests := []struct {
		name  string
		rolls []float64
		want  []string
	}{
		// 独立条目 A、B，然后 g 组、h 组各一次
		{"nothing", []float64{60, 30, 50, 50}, nil},
		{"independent only", []float64{10, 10, 50, 50}, []string{"A", "B"}},
		{"second member of group", []float64{60, 30, 15, 50}, []string{"Y"}},
		{"one per group", []float64{60, 30, 5, 1}, []string{"X", "Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RollDrops(drops, none, &scriptDice{percents: tt.rolls})
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Fatalf("RollDrops = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPursuitBonusShiftsOdds(t *testing.T) {
	c := catalog.Default()
	p := models.NewPlayer("p1", testStart)
	p.Pursuit = "cat"

	if got := PursuitBonus(p, "Lucky Cat", 20, c); got != 3 {
		t.Fatalf("PursuitBonus = %v, want 3", got)
	}
	if got := PursuitBonus(p, "Gemstone", 20, c); got != 0 {
		t.Fatalf("bonus applied to other item: %v", got)
	}

	drops := []models.DropEntry{models.Independent("Lucky Cat", 1)}
	bonus := func(item string) float64 { return PursuitBonus(p, item, 20, c) }
	if got := RollDrops(drops, bonus, &scriptDice{percents: []float64{3.5}}); len(got) != 0 {
		t.Fatalf("roll 3.5 under 1+3 granted %v", got)
	}
	if got := RollDrops(drops, bonus, &scriptDice{percents: []float64{3.9}}); len(got) != 1 {
		t.Fatal("roll 3.9 under 1+3 should grant")
	}
}

func TestExclusiveGroupGrantsAtMostOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(t, "members")
		var drops []models.DropEntry
		for i := 0; i < n; i++ {
			chance := rapid.Float64Range(0, 100/float64(n)).Draw(t, fmt.Sprintf("chance%d", i))
			drops = append(drops, models.ExclusiveMember("g", fmt.Sprintf("item%d", i), chance))
		}
		roll := rapid.Float64Range(0, 99.999).Draw(t, "roll")

		got := RollDrops(drops, func(string) float64 { return 0 }, &scriptDice{percents: []float64{roll}})
		if len(got) > 1 {
			t.Fatalf("exclusive group granted %v", got)
		}
	})
}

func TestExclusiveGroupNoneFrequency(t *testing.T) {
	drops := []models.DropEntry{
		models.ExclusiveMember("g", "X", 20),
		models.ExclusiveMember("g", "Y", 30),
	}
	dice := NewDice(42)
	none := 0
	const trials = 20000
	for i := 0; i < trials; i++ {
		if len(RollDrops(drops, func(string) float64 { return 0 }, dice)) == 0 {
			none++
		}
	}
	freq := float64(none) / trials
	if freq < 0.47 || freq > 0.53 {
		t.Fatalf("none frequency = %.3f, want about 0.50", freq)
	}
}

func TestExperienceCurve(t *testing.T) {
	for level, want := range map[int]int64{1: 100, 2: 150, 3: 225, 4: 337} {
		if got := ExpThreshold(level); got != want {
			t.Errorf("ExpThreshold(%d) = %d, want %d", level, got, want)
		}
	}

	level, exp, gained := ApplyExperience(1, 0, 260)
	if level != 3 || exp != 10 || gained != 2 {
		t.Fatalf("ApplyExperience = %d, %d, %d", level, exp, gained)
	}
	level, exp, gained = ApplyExperience(2, 140, 5)
	if level != 2 || exp != 145 || gained != 0 {
		t.Fatalf("ApplyExperience = %d, %d, %d", level, exp, gained)
	}
}

func TestEnemyTurnRollOrder(t *testing.T) {
	enemy := models.Enemy{Key: "e", Name: "E", Health: 10, Damage: 3, CritChance: 50}
	stats := models.Stats{Health: 20, Luck: 5, Speed: 5}

	tests := []struct {
		name   string
		rolls  []float64
		wantHP int
		used   int
	}{
		{"miss stops further rolls", []float64{9}, 20, 1},
		{"dodge after failed miss", []float64{10, 9}, 20, 2},
		{"plain hit", []float64{10, 10, 50}, 17, 3},
		{"critical hit", []float64{10, 10, 49}, 14, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewSoloBattle("p", enemy, stats, nil, testStart)
			dice := &scriptDice{percents: tt.rolls}
			EnemyTurn(b, enemy, dice)
			if b.PlayerHP != tt.wantHP || dice.used != tt.used {
				t.Fatalf("hp = %d used = %d, want %d / %d", b.PlayerHP, dice.used, tt.wantHP, tt.used)
			}
			if b.WhoseTurn != models.SidePlayer {
				t.Fatalf("turn = %s", b.WhoseTurn)
			}
		})
	}
}

func TestDefensiveStrikeBonusConsumedOnce(t *testing.T) {
	enemy := models.Enemy{Key: "e", Name: "E", Health: 100, Damage: 20}
	special := &models.WeaponSpecial{Kind: models.SpecialDefensiveStrike, DamageMultiplier: 0.5, DefenseBonus: 100}
	b := NewSoloBattle("p", enemy, models.Stats{Health: 100, Attack: 10}, special, testStart)
	b.WhoseTurn = models.SidePlayer

	if err := PlayerTurn(b, enemy, models.ActionDefensiveStrike, 5, &scriptDice{}); err != nil {
		t.Fatalf("PlayerTurn: %v", err)
	}
	// 伤害 20 在 100 防御下减半为 10
	if b.EnemyHP != 95 || b.PlayerHP != 90 || b.PendingDefense != 0 {
		t.Fatalf("after defensive strike: enemy=%d player=%d pending=%d", b.EnemyHP, b.PlayerHP, b.PendingDefense)
	}
	if err := PlayerTurn(b, enemy, models.ActionAttack, 5, &scriptDice{}); err != nil {
		t.Fatalf("PlayerTurn: %v", err)
	}
	if b.PlayerHP != 70 {
		t.Fatalf("bonus applied twice: hp = %d", b.PlayerHP)
	}
}

func TestRageSelfMiss(t *testing.T) {
	enemy := models.Enemy{Key: "e", Name: "E", Health: 100}
	special := &models.WeaponSpecial{Kind: models.SpecialRage, DamageMultiplier: 1.5, SelfMissChance: 40}
	b := NewSoloBattle("p", enemy, models.Stats{Health: 10, Attack: 7}, special, testStart)
	b.WhoseTurn = models.SidePlayer

	if err := PlayerTurn(b, enemy, models.ActionRage, 5, &scriptDice{percents: []float64{39, 0}}); err != nil {
		t.Fatalf("PlayerTurn: %v", err)
	}
	if b.EnemyHP != 100 {
		t.Fatalf("rage should have missed, enemy hp = %d", b.EnemyHP)
	}
	if err := PlayerTurn(b, enemy, models.ActionRage, 5, &scriptDice{percents: []float64{40, 0}}); err != nil {
		t.Fatalf("PlayerTurn: %v", err)
	}
	if b.EnemyHP != 90 {
		t.Fatalf("rage damage: enemy hp = %d, want 90", b.EnemyHP)
	}
}

func TestSweepRaidBeforeDeadline(t *testing.T) {
	rules := DefaultRaidRules()
	host := NewParticipant("host", models.Stats{Health: 5})
	r := NewRaid("r1", models.Boss{Key: "b", Name: "B", Health: 10}, host, rules, testStart)

	if got := SweepRaid(r, rules, testStart.Add(29*time.Second)); got != SweepNone {
		t.Fatalf("SweepRaid before deadline = %q", got)
	}
	if got := SweepRaid(r, rules, testStart.Add(30*time.Second)); got != SweepCancelled {
		t.Fatalf("SweepRaid at deadline = %q", got)
	}
	if got := SweepRaid(r, rules, testStart.Add(time.Hour)); got != SweepNone {
		t.Fatalf("SweepRaid on cancelled raid = %q", got)
	}
}

func TestCodeUnwrapsSentinels(t *testing.T) {
	wrapped := fmt.Errorf("加入失败: %w", ErrBattleNotJoinable)
	if Code(wrapped) != "BATTLE_NOT_JOINABLE" || !IsExpected(wrapped) {
		t.Fatalf("Code = %s", Code(wrapped))
	}
	if Code(errors.New("boom")) != "INTERNAL_ERROR" || IsExpected(errors.New("boom")) {
		t.Fatal("unknown error should map to INTERNAL_ERROR")
	}
	if IsExpected(storageErr("写入", errors.New("io"))) {
		t.Fatal("storage failure reported as expected")
	}
}
