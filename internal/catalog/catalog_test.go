package catalog

import (
	"testing"

	"github.com/jacl-coder/RuneForge-Server/internal/models"
)

func TestDefaultDropTablesReferenceKnownItems(t *testing.T) {
	c := Default()

	check := func(source string, drops []models.DropEntry) {
		for _, d := range drops {
			if _, ok := c.Item(d.Item); !ok {
				t.Errorf("%s drops unknown item %q", source, d.Item)
			}
			if d.Kind == models.DropExclusive && d.Group == "" {
				t.Errorf("%s exclusive entry %q has no group", source, d.Item)
			}
		}
	}

	for key, enemy := range c.Enemies {
		if enemy.Key != key {
			t.Errorf("enemy %q registered under key %q", enemy.Key, key)
		}
		check("enemy "+key, enemy.Drops)
	}
	check("dig table", c.DigTable)
	check("hunt table", c.HuntTable)
}

func TestDefaultExclusiveGroupsStayBelowCertainty(t *testing.T) {
	c := Default()
	sums := make(map[string]float64)
	add := func(drops []models.DropEntry) {
		for _, d := range drops {
			if d.Kind == models.DropExclusive {
				sums[d.Group] += d.Chance
			}
		}
	}
	for _, enemy := range c.Enemies {
		add(enemy.Drops)
	}
	add(c.DigTable)
	add(c.HuntTable)

	for group, sum := range sums {
		if sum > 100 {
			t.Errorf("group %q chances sum to %.1f", group, sum)
		}
	}
}

func TestDefaultSetsRequireMatchingSlots(t *testing.T) {
	c := Default()
	for _, set := range c.Sets {
		for slot, name := range set.Requires {
			item, ok := c.Item(name)
			if !ok {
				t.Fatalf("set %q requires unknown item %q", set.Name, name)
			}
			if item.Slot != slot {
				t.Errorf("set %q expects %q in %s, item slot is %s", set.Name, name, slot, item.Slot)
			}
		}
	}
}

func TestResolveAlias(t *testing.T) {
	c := Default()

	tests := []struct {
		in   string
		want string
	}{
		{"pup", "Wolf Pup"},
		{"  CAT ", "Lucky Cat"},
		{"iron sword", "Iron Sword"},
		{"Gemstone", "Gemstone"},
		{"Unobtainium", "Unobtainium"},
	}
	for _, tt := range tests {
		if got := c.ResolveAlias(tt.in); got != tt.want {
			t.Errorf("ResolveAlias(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeysAreSorted(t *testing.T) {
	c := Default()
	keys := c.EnemyKeys()
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("enemy keys not sorted: %v", keys)
		}
	}
	if len(c.BossKeys()) != len(c.Bosses) {
		t.Fatalf("boss keys = %v", c.BossKeys())
	}
}
