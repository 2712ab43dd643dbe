package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/sirupsen/logrus"

	"constructboq/collections"
	"constructboq/config"
	"constructboq/services"
)

// Deps carries what the handlers share. App may be nil, in which case the
// wallet ledger is not written.
type Deps struct {
	App      core.App
	Sessions *SessionRegistry
	Wallet   *services.Wallet
	Log      *logrus.Logger
	Defaults services.Settings
	Now      func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d *Deps) logError(funcName, context string, data any, err error) {
	if d.Log == nil {
		return
	}
	config.LogError(d.Log, "handlers", funcName, context, data, err)
}

// ledger records a wallet movement. Failures are logged, not returned; the
// balance itself is already stored.
func (d *Deps) ledger(kind string, credits, balance int, reference string) {
	if d.App == nil {
		return
	}
	if err := collections.RecordTransaction(d.App, kind, credits, balance, reference); err != nil {
		d.logError("ledger", "record wallet transaction", reference, err)
	}
}

// session resolves the {id} path value to a registered session. When it
// reports false the error response has already been written.
func (d *Deps) session(e *core.RequestEvent) (*sessionEntry, bool) {
	id := e.Request.PathValue("id")
	if id == "" {
		ErrorJSON(e, http.StatusBadRequest, "Missing takeoff ID")
		return nil, false
	}
	entry, ok := d.Sessions.Get(id)
	if !ok {
		ErrorJSON(e, http.StatusNotFound, "Takeoff not found")
		return nil, false
	}
	return entry, true
}

// errorStatus maps engine and wallet errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnknownField),
		errors.Is(err, services.ErrInvalidTakeoff),
		errors.Is(err, services.ErrInvalidCode):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrCodeAlreadyUsed):
		return http.StatusConflict
	case errors.Is(err, services.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	}
	return http.StatusInternalServerError
}
