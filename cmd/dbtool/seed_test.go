package main

import (
	"context"
	"reflect"
	"testing"

	"github.com/jacl-coder/RuneForge-Server/internal/catalog"
	"github.com/jacl-coder/RuneForge-Server/internal/engine"
	"github.com/jacl-coder/RuneForge-Server/internal/storage"
)

func TestSeedPlayersIsIdempotent(t *testing.T) {
	repo := storage.NewRepository(storage.NewMemoryKV())
	eng := engine.New(catalog.Default(), engine.Deps{Players: repo, Solos: repo, Raids: repo})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := seedPlayers(ctx, eng, []string{"alice", "bob"}); err != nil {
			t.Fatalf("seedPlayers run %d: %v", i, err)
		}
	}

	balance, err := eng.Balance(ctx, "alice")
	if err != nil || balance != seedCurrency {
		t.Fatalf("balance = %d, %v", balance, err)
	}
	inv, err := eng.Inventory(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if inv.Equipment.Weapon != "Wooden Sword" || inv.Equipment.Helmet != "Leather Cap" {
		t.Fatalf("equipment = %+v", inv.Equipment)
	}
	if inv.Inventory[catalog.HealingPotion] != 3 {
		t.Fatalf("inventory = %+v", inv.Inventory)
	}
}

func TestSplitPlayers(t *testing.T) {
	got := splitPlayers(" alice, ,bob,")
	if want := []string{"alice", "bob"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("splitPlayers = %v, want %v", got, want)
	}
}
