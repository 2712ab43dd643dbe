package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"constructboq/services"
)

type rateRequest struct {
	BillName string   `json:"billName"`
	Rate     *float64 `json:"rate"`
}

// HandleRateSet sets the manual unit rate of a bill name. A null rate
// clears it so the group falls back to its contract or estimated rate.
func HandleRateSet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, ok := d.session(e)
		if !ok {
			return nil
		}
		var req rateRequest
		if !bindJSON(e, &req) {
			return nil
		}
		if req.BillName == "" {
			return ErrorJSON(e, http.StatusBadRequest, "billName is required")
		}

		entry.Do(func(s *services.Session) error {
			if req.Rate == nil {
				s.ClearRate(req.BillName)
			} else {
				s.SetRate(req.BillName, *req.Rate)
			}
			return nil
		})
		return respondSession(e, http.StatusOK, entry)
	}
}

type suggestionRequest struct {
	BillName   string `json:"billName"`
	Suggestion string `json:"suggestion"`
}

// HandleRateSuggestion applies the lower bound of a suggested rate range.
func HandleRateSuggestion(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, ok := d.session(e)
		if !ok {
			return nil
		}
		var req suggestionRequest
		if !bindJSON(e, &req) {
			return nil
		}
		if req.BillName == "" {
			return ErrorJSON(e, http.StatusBadRequest, "billName is required")
		}

		var applied bool
		entry.Do(func(s *services.Session) error {
			applied = s.ApplySuggestion(req.BillName, req.Suggestion)
			return nil
		})
		if !applied {
			return ErrorJSON(e, http.StatusUnprocessableEntity, "No rate found in suggestion")
		}
		return respondSession(e, http.StatusOK, entry)
	}
}

type overrideRequest struct {
	services.GroupKey
	Contract *float64 `json:"contract"`
	Previous *float64 `json:"previous"`
}

// HandleOverrideSet replaces the contract and/or previous quantity of a
// group in payment mode.
func HandleOverrideSet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, ok := d.session(e)
		if !ok {
			return nil
		}
		var req overrideRequest
		if !bindJSON(e, &req) {
			return nil
		}
		if req.BillName == "" || req.Unit == "" || req.Category == "" {
			return ErrorJSON(e, http.StatusBadRequest, "billName, unit and category are required")
		}
		if req.Contract == nil && req.Previous == nil {
			return ErrorJSON(e, http.StatusBadRequest, "Nothing to override")
		}

		entry.Do(func(s *services.Session) error {
			s.SetOverride(req.GroupKey, services.QuantityOverride{Contract: req.Contract, Previous: req.Previous})
			return nil
		})
		return respondSession(e, http.StatusOK, entry)
	}
}

type breakdownRequest struct {
	services.GroupKey
	Breakdown services.RateBreakdown `json:"breakdown"`
}

// HandleBreakdownSave stores a rate build-up for a group and applies its
// final rate.
func HandleBreakdownSave(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, ok := d.session(e)
		if !ok {
			return nil
		}
		var req breakdownRequest
		if !bindJSON(e, &req) {
			return nil
		}
		if req.BillName == "" {
			return ErrorJSON(e, http.StatusBadRequest, "billName is required")
		}

		var rate float64
		entry.Do(func(s *services.Session) error {
			rate = s.SaveBreakdown(req.GroupKey, req.Breakdown)
			return nil
		})
		return e.JSON(http.StatusOK, map[string]any{
			"rate":      rate,
			"breakdown": req.Breakdown,
		})
	}
}

type settingsRequest struct {
	services.Settings
	Mode string `json:"mode,omitempty"`
}

// HandleSettingsUpdate applies the fields present in the body over the
// current settings. An optional mode switches between estimation and
// payment.
func HandleSettingsUpdate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, ok := d.session(e)
		if !ok {
			return nil
		}
		var req settingsRequest
		entry.Do(func(s *services.Session) error {
			req.Settings = s.Settings
			return nil
		})
		if !bindJSON(e, &req) {
			return nil
		}
		if req.UnitSystem != services.UnitMetric && req.UnitSystem != services.UnitImperial {
			return ErrorJSON(e, http.StatusBadRequest, "unitSystem must be metric or imperial")
		}
		if req.ContingencyPct < 0 || req.VATPct < 0 || req.RetentionPct < 0 {
			return ErrorJSON(e, http.StatusBadRequest, "Percentages cannot be negative")
		}

		entry.Do(func(s *services.Session) error {
			s.Settings = req.Settings
			if req.Mode != "" {
				s.SetMode(services.ParseMode(req.Mode))
			}
			return nil
		})
		return respondSession(e, http.StatusOK, entry)
	}
}

// HandleMetaUpdate applies the fields present in the body over the
// document header.
func HandleMetaUpdate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, ok := d.session(e)
		if !ok {
			return nil
		}
		var meta services.DocumentMeta
		entry.Do(func(s *services.Session) error {
			meta = s.Meta
			return nil
		})
		if !bindJSON(e, &meta) {
			return nil
		}

		entry.Do(func(s *services.Session) error {
			s.Meta = meta
			return nil
		})
		return e.JSON(http.StatusOK, meta)
	}
}
