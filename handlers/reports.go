package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"constructboq/services"
)

// HandleTakeoffSheet returns the measurement sheet grouped by category and
// bill, filtered by ?search= and ?source=.
func HandleTakeoffSheet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, ok := d.session(e)
		if !ok {
			return nil
		}
		q := e.Request.URL.Query()
		filter := services.TakeoffFilter{Search: q.Get("search"), Source: q.Get("source")}

		var sources []string
		var sections []services.TakeoffSection
		entry.Do(func(s *services.Session) error {
			sources = services.UniqueSources(s.Takeoff.Items)
			sections = services.TakeoffSections(s.Takeoff.Items, filter)
			return nil
		})
		if sections == nil {
			sections = []services.TakeoffSection{}
		}
		return e.JSON(http.StatusOK, map[string]any{
			"sources":  append([]string{"All"}, sources...),
			"sections": sections,
		})
	}
}

type certificateLineResponse struct {
	services.CertificateLine
	Display string `json:"display"`
}

// HandleCertificate returns the interim payment certificate with its
// statement lines as printed.
func HandleCertificate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, ok := d.session(e)
		if !ok {
			return nil
		}
		var snap services.Snapshot
		var meta services.DocumentMeta
		entry.Do(func(s *services.Session) error {
			snap = s.Recompute()
			meta = s.Meta
			return nil
		})

		cert := snap.Certificate
		var lines []certificateLineResponse
		for _, l := range cert.Lines() {
			lines = append(lines, certificateLineResponse{CertificateLine: l, Display: l.Display()})
		}
		return e.JSON(http.StatusOK, map[string]any{
			"mode":        snap.Mode,
			"meta":        meta,
			"certificate": cert,
			"lines":       lines,
			"statement":   cert.Statement(),
		})
	}
}

// HandleAnalytics returns the cost decomposition of the priced groups.
func HandleAnalytics(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, ok := d.session(e)
		if !ok {
			return nil
		}
		var a services.Analytics
		entry.Do(func(s *services.Session) error {
			a = s.Recompute().Analytics
			return nil
		})
		return e.JSON(http.StatusOK, a)
	}
}

// HandleWords renders ?amount= in words for ?currency=, defaulting to the
// configured currency.
func HandleWords(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		q := e.Request.URL.Query()
		raw := strings.TrimSpace(q.Get("amount"))
		if raw == "" {
			return ErrorJSON(e, http.StatusBadRequest, "amount is required")
		}
		amount, err := cast.ToFloat64E(raw)
		if err != nil || !services.IsFinite(amount) {
			return ErrorJSON(e, http.StatusBadRequest, "amount must be a number")
		}
		currency := q.Get("currency")
		if currency == "" {
			currency = d.Defaults.Currency
		}
		return e.JSON(http.StatusOK, map[string]any{
			"amount":    amount,
			"currency":  currency,
			"formatted": services.FormatMoney(amount, currency),
			"words":     services.NumberToWords(amount, currency),
		})
	}
}
