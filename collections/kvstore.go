package collections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/pocketbase/core"
)

// RecordStore keeps wallet keys as records of the wallet_entries collection.
type RecordStore struct {
	app core.App
}

func NewRecordStore(app core.App) *RecordStore {
	return &RecordStore{app: app}
}

func (s *RecordStore) find(key string) (*core.Record, error) {
	rec, err := s.app.FindFirstRecordByData(WalletEntries, "entry_key", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find wallet entry %q: %w", key, err)
	}
	return rec, nil
}

func (s *RecordStore) Get(_ context.Context, key string) (string, bool, error) {
	rec, err := s.find(key)
	if err != nil || rec == nil {
		return "", false, err
	}
	return rec.GetString("entry_value"), true, nil
}

func (s *RecordStore) Set(ctx context.Context, key, value string) error {
	rec, err := s.find(key)
	if err != nil {
		return err
	}
	if rec == nil {
		col, err := s.app.FindCollectionByNameOrId(WalletEntries)
		if err != nil {
			return fmt.Errorf("find %s collection: %w", WalletEntries, err)
		}
		rec = core.NewRecord(col)
		rec.Set("entry_key", key)
	}
	rec.Set("entry_value", value)
	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return fmt.Errorf("save wallet entry %q: %w", key, err)
	}
	return nil
}

// RecordTransaction appends one entry to the wallet ledger.
func RecordTransaction(app core.App, kind string, credits, balance int, reference string) error {
	col, err := app.FindCollectionByNameOrId(WalletTransactions)
	if err != nil {
		return fmt.Errorf("find %s collection: %w", WalletTransactions, err)
	}
	rec := core.NewRecord(col)
	rec.Set("kind", kind)
	rec.Set("credits", credits)
	rec.Set("balance", balance)
	rec.Set("reference", reference)
	if err := app.Save(rec); err != nil {
		return fmt.Errorf("save wallet transaction: %w", err)
	}
	return nil
}

// Transaction is one ledger entry.
type Transaction struct {
	Kind      string `json:"kind"`
	Credits   int    `json:"credits"`
	Balance   int    `json:"balance"`
	Reference string `json:"reference"`
	Created   string `json:"created"`
}

// RecentTransactions returns up to limit ledger entries, newest first.
func RecentTransactions(app core.App, limit int) ([]Transaction, error) {
	records, err := app.FindRecordsByFilter(WalletTransactions, "id != ''", "-created", limit, 0)
	if err != nil {
		return nil, fmt.Errorf("query wallet transactions: %w", err)
	}
	txs := make([]Transaction, len(records))
	for i, r := range records {
		txs[i] = Transaction{
			Kind:      r.GetString("kind"),
			Credits:   r.GetInt("credits"),
			Balance:   r.GetInt("balance"),
			Reference: r.GetString("reference"),
			Created:   r.GetDateTime("created").String(),
		}
	}
	return txs, nil
}
