package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryLockerSerializesSameKey(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	var mu sync.Mutex
	inside := 0
	maxInside := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "player:1")
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxInside)
	}
	if len(l.slots) != 0 {
		t.Fatalf("lock slots leaked: %d", len(l.slots))
	}
}

func TestMemoryLockerDifferentKeysIndependent(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	unlockA, err := l.Lock(ctx, "a")
	if err != nil {
		t.Fatalf("Lock a: %v", err)
	}
	defer unlockA()

	timeout, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	unlockB, err := l.Lock(timeout, "b")
	if err != nil {
		t.Fatalf("Lock b while a is held: %v", err)
	}
	unlockB()
}

func TestMemoryLockerHonorsContext(t *testing.T) {
	l := NewMemoryLocker()
	unlock, err := l.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Lock on held key: err = %v, want deadline exceeded", err)
	}

	unlock()
	unlock()

	again, err := l.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	again()
}

func TestMemoryLeaderboardOrdersByLevelThenExp(t *testing.T) {
	ctx := context.Background()
	lb := NewMemoryLeaderboard()
	_ = lb.UpdatePlayer(ctx, "a", 2, 10)
	_ = lb.UpdatePlayer(ctx, "b", 3, 0)
	_ = lb.UpdatePlayer(ctx, "c", 2, 90)

	top, err := lb.Top(ctx, 2)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(top) != 2 || top[0].PlayerID != "b" || top[1].PlayerID != "c" {
		t.Fatalf("Top = %+v", top)
	}
	if top[1].Level != 2 || top[1].Exp != 90 || top[1].Rank != 2 {
		t.Fatalf("decoded entry = %+v", top[1])
	}

	rank, err := lb.Rank(ctx, "a")
	if err != nil || rank != 3 {
		t.Fatalf("Rank(a) = %d, %v", rank, err)
	}
	rank, _ = lb.Rank(ctx, "missing")
	if rank != -1 {
		t.Fatalf("Rank(missing) = %d, want -1", rank)
	}
}
