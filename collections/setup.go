package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Collection names.
const (
	WalletEntries      = "wallet_entries"
	WalletTransactions = "wallet_transactions"
)

// Transaction kinds recorded in wallet_transactions.
const (
	TxAdd    = "add"
	TxRedeem = "redeem"
	TxUnlock = "unlock"
)

// Setup programmatically creates/ensures the wallet_entries key/value
// collection and the wallet_transactions ledger exist.
func Setup(app *pocketbase.PocketBase) error {
	if _, err := ensureCollection(app, WalletEntries, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "entry_key", Required: true})
		c.Fields.Add(&core.TextField{Name: "entry_value", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_wallet_entries_key", true, "entry_key", "")
	}); err != nil {
		return err
	}

	if _, err := ensureCollection(app, WalletTransactions, func(c *core.Collection) {
		c.Fields.Add(&core.SelectField{
			Name:      "kind",
			Required:  true,
			Values:    []string{TxAdd, TxRedeem, TxUnlock},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "credits", Required: false})
		c.Fields.Add(&core.NumberField{Name: "balance", Required: false})
		c.Fields.Add(&core.TextField{Name: "reference", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	}); err != nil {
		return err
	}
	return nil
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) (*core.Collection, error) {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		return existing, nil
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}
	return collection, nil
}
