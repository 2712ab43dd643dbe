package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"constructboq/collections"
	"constructboq/services"
)

const recentTransactionLimit = 20

// HandleWalletGet returns the balance, the used codes and the recent ledger.
func HandleWalletGet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctx := e.Request.Context()
		credits, err := d.Wallet.Balance(ctx)
		if err != nil {
			d.logError("HandleWalletGet", "read balance", nil, err)
			return ErrorJSON(e, http.StatusInternalServerError, "Could not read wallet")
		}
		used, err := d.Wallet.UsedCodes(ctx)
		if err != nil {
			d.logError("HandleWalletGet", "read used codes", nil, err)
			return ErrorJSON(e, http.StatusInternalServerError, "Could not read wallet")
		}
		if used == nil {
			used = []string{}
		}

		txs := []collections.Transaction{}
		if d.App != nil {
			if recent, err := collections.RecentTransactions(d.App, recentTransactionLimit); err != nil {
				d.logError("HandleWalletGet", "read ledger", nil, err)
			} else {
				txs = recent
			}
		}
		return e.JSON(http.StatusOK, map[string]any{
			"credits":      credits,
			"usedCodes":    used,
			"transactions": txs,
		})
	}
}

type redeemRequest struct {
	Code string `json:"code"`
}

// HandleWalletRedeem grants the credits of a redemption code.
func HandleWalletRedeem(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req redeemRequest
		if !bindJSON(e, &req) {
			return nil
		}
		code := strings.TrimSpace(req.Code)
		if code == "" {
			return ErrorJSON(e, http.StatusBadRequest, "code is required")
		}

		added, balance, err := d.Wallet.Redeem(e.Request.Context(), code)
		if err != nil {
			status := errorStatus(err)
			if status == http.StatusInternalServerError {
				d.logError("HandleWalletRedeem", "redeem code", code, err)
				return ErrorJSON(e, status, "Could not redeem code")
			}
			return ErrorJSON(e, status, err.Error())
		}
		d.ledger(collections.TxRedeem, added, balance, code)
		return e.JSON(http.StatusOK, map[string]any{"added": added, "credits": balance})
	}
}

type creditsRequest struct {
	Credits int `json:"credits"`
}

// HandleWalletAdd tops up the balance.
func HandleWalletAdd(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req creditsRequest
		if !bindJSON(e, &req) {
			return nil
		}
		if req.Credits <= 0 {
			return ErrorJSON(e, http.StatusBadRequest, "credits must be positive")
		}

		balance, err := d.Wallet.AddCredits(e.Request.Context(), req.Credits)
		if err != nil {
			d.logError("HandleWalletAdd", "add credits", req.Credits, err)
			return ErrorJSON(e, http.StatusInternalServerError, "Could not add credits")
		}
		d.ledger(collections.TxAdd, req.Credits, balance, "")
		return e.JSON(http.StatusOK, map[string]any{"credits": balance})
	}
}

// HandleTakeoffUnlock spends one credit to unlock a takeoff for export.
// Unlocking an already paid takeoff is free.
func HandleTakeoffUnlock(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, ok := d.session(e)
		if !ok {
			return nil
		}
		ctx := e.Request.Context()

		var balance int
		var spent bool
		err := entry.Do(func(s *services.Session) error {
			if s.Takeoff.IsPaid {
				var err error
				balance, err = d.Wallet.Balance(ctx)
				return err
			}
			var err error
			balance, err = d.Wallet.Spend(ctx, services.UnlockCost)
			if err != nil {
				return err
			}
			s.Takeoff.IsPaid = true
			spent = true
			return nil
		})
		if err != nil {
			status := errorStatus(err)
			if status == http.StatusInternalServerError {
				d.logError("HandleTakeoffUnlock", "spend credit", e.Request.PathValue("id"), err)
				return ErrorJSON(e, status, "Could not unlock takeoff")
			}
			return ErrorJSON(e, status, err.Error())
		}
		if spent {
			d.ledger(collections.TxUnlock, -services.UnlockCost, balance, e.Request.PathValue("id"))
		}
		return e.JSON(http.StatusOK, map[string]any{"isPaid": true, "credits": balance})
	}
}
