package services

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T, prefix string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStoreFromClient(client, prefix)
	store.retry = redislock.NoRetry()
	return store, mr
}

func TestRedisStore_GetMissingKey(t *testing.T) {
	store, _ := newTestRedisStore(t, "boq:")

	val, found, err := store.Get(context.Background(), walletCreditsKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found || val != "" {
		t.Errorf("Get() = %q, %v; want \"\", false", val, found)
	}
}

func TestRedisStore_SetGetWithPrefix(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, "boq:")

	if err := store.Set(ctx, walletCreditsKey, "7"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	val, found, err := store.Get(ctx, walletCreditsKey)
	if err != nil || !found || val != "7" {
		t.Fatalf("Get() = %q, %v, %v; want 7, true, nil", val, found, err)
	}

	if got, err := mr.Get("boq:credits"); err != nil || got != "7" {
		t.Errorf("raw key boq:credits = %q, %v", got, err)
	}
	if mr.Exists("credits") {
		t.Error("value stored without the prefix")
	}
}

func TestRedisStore_LockIsExclusive(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, "boq:")

	release, err := store.Lock(ctx, "wallet")
	if err != nil {
		t.Fatalf("first Lock() error = %v", err)
	}
	if !mr.Exists("boq:lock:wallet") {
		t.Error("lock key not written under the prefix")
	}

	if _, err := store.Lock(ctx, "wallet"); !errors.Is(err, redislock.ErrNotObtained) {
		t.Errorf("second Lock() error = %v, want ErrNotObtained", err)
	}

	release()
	release2, err := store.Lock(ctx, "wallet")
	if err != nil {
		t.Fatalf("Lock() after release error = %v", err)
	}
	release2()
}

func TestWallet_OverRedisStore(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t, "boq:")
	w := NewWallet(store, map[string]int{"MYDREAM..123": 3})

	added, bal, err := w.Redeem(ctx, "MYDREAM..123")
	if err != nil || added != 3 || bal != 3 {
		t.Fatalf("Redeem() = %d, %d, %v; want 3, 3, nil", added, bal, err)
	}
	if _, _, err := w.Redeem(ctx, "MYDREAM..123"); !errors.Is(err, ErrCodeAlreadyUsed) {
		t.Errorf("second Redeem() error = %v, want ErrCodeAlreadyUsed", err)
	}
	if bal, err := w.Spend(ctx, UnlockCost); err != nil || bal != 2 {
		t.Errorf("Spend() = %d, %v; want 2, nil", bal, err)
	}

	// the lock is released after every operation
	release, err := store.Lock(ctx, "wallet")
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	release()
}
