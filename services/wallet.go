package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidCode         = errors.New("invalid redemption code")
	ErrCodeAlreadyUsed     = errors.New("redemption code already used")
)

// Wallet storage keys.
const (
	walletCreditsKey = "credits"
	walletCodesKey   = "used_codes"
)

// UnlockCost is the number of credits spent to unlock a takeoff for export.
const UnlockCost = 1

// KVStore is the persistence port of the wallet. Get reports found=false for
// a missing key.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Locker is implemented by stores shared between processes. The wallet holds
// the lock for the duration of each read-modify-write.
type Locker interface {
	Lock(ctx context.Context, name string) (release func(), err error)
}

// Wallet tracks the credit balance and which redemption codes were used.
type Wallet struct {
	mu    sync.Mutex
	store KVStore
	codes map[string]int
}

// NewWallet builds a wallet over a store. codes maps each redeemable code to
// the credits it grants.
func NewWallet(store KVStore, codes map[string]int) *Wallet {
	c := make(map[string]int, len(codes))
	for k, v := range codes {
		c[strings.TrimSpace(k)] = v
	}
	return &Wallet{store: store, codes: c}
}

func (w *Wallet) lock(ctx context.Context) (func(), error) {
	w.mu.Lock()
	l, ok := w.store.(Locker)
	if !ok {
		return w.mu.Unlock, nil
	}
	release, err := l.Lock(ctx, "wallet")
	if err != nil {
		w.mu.Unlock()
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	return func() {
		release()
		w.mu.Unlock()
	}, nil
}

func (w *Wallet) balance(ctx context.Context) (int, error) {
	raw, found, err := w.store.Get(ctx, walletCreditsKey)
	if err != nil {
		return 0, fmt.Errorf("read credits: %w", err)
	}
	if !found || raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse credits %q: %w", raw, err)
	}
	return n, nil
}

func (w *Wallet) setBalance(ctx context.Context, n int) error {
	if err := w.store.Set(ctx, walletCreditsKey, strconv.Itoa(n)); err != nil {
		return fmt.Errorf("write credits: %w", err)
	}
	return nil
}

func (w *Wallet) usedCodes(ctx context.Context) ([]string, error) {
	raw, found, err := w.store.Get(ctx, walletCodesKey)
	if err != nil {
		return nil, fmt.Errorf("read used codes: %w", err)
	}
	if !found || raw == "" {
		return nil, nil
	}
	var codes []string
	if err := json.Unmarshal([]byte(raw), &codes); err != nil {
		return nil, fmt.Errorf("parse used codes: %w", err)
	}
	return codes, nil
}

func (w *Wallet) setUsedCodes(ctx context.Context, codes []string) error {
	if codes == nil {
		codes = []string{}
	}
	raw, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("encode used codes: %w", err)
	}
	if err := w.store.Set(ctx, walletCodesKey, string(raw)); err != nil {
		return fmt.Errorf("write used codes: %w", err)
	}
	return nil
}

// Balance returns the current credit balance.
func (w *Wallet) Balance(ctx context.Context) (int, error) {
	unlock, err := w.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()
	return w.balance(ctx)
}

// UsedCodes lists the codes already redeemed.
func (w *Wallet) UsedCodes(ctx context.Context) ([]string, error) {
	unlock, err := w.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return w.usedCodes(ctx)
}

// AddCredits adds n credits and returns the new balance.
func (w *Wallet) AddCredits(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("add credits: amount must be positive, got %d", n)
	}
	unlock, err := w.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	bal, err := w.balance(ctx)
	if err != nil {
		return 0, err
	}
	bal += n
	if err := w.setBalance(ctx, bal); err != nil {
		return 0, err
	}
	return bal, nil
}

// Spend deducts n credits and returns the new balance. The balance never
// goes below zero.
func (w *Wallet) Spend(ctx context.Context, n int) (int, error) {
	unlock, err := w.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	bal, err := w.balance(ctx)
	if err != nil {
		return 0, err
	}
	if bal < n {
		return bal, ErrInsufficientCredits
	}
	bal -= n
	if err := w.setBalance(ctx, bal); err != nil {
		return 0, err
	}
	return bal, nil
}

// Redeem grants the credits of a configured code. Each code can be used
// once per wallet.
func (w *Wallet) Redeem(ctx context.Context, code string) (added, balance int, err error) {
	code = strings.TrimSpace(code)
	credits, ok := w.codes[code]
	if !ok || credits <= 0 {
		return 0, 0, ErrInvalidCode
	}

	unlock, err := w.lock(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer unlock()

	used, err := w.usedCodes(ctx)
	if err != nil {
		return 0, 0, err
	}
	if slices.Contains(used, code) {
		return 0, 0, ErrCodeAlreadyUsed
	}

	bal, err := w.balance(ctx)
	if err != nil {
		return 0, 0, err
	}
	bal += credits

	if err := w.setUsedCodes(ctx, append(slices.Clip(used), code)); err != nil {
		return 0, 0, err
	}
	if err := w.setBalance(ctx, bal); err != nil {
		// restore the used codes
		if rbErr := w.setUsedCodes(ctx, used); rbErr != nil {
			return 0, 0, errors.Join(err, rbErr)
		}
		return 0, 0, err
	}
	return credits, bal, nil
}
