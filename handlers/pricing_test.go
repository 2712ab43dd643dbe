package handlers

import (
	"net/http"
	"testing"

	"constructboq/services"
	"constructboq/testhelpers"
)

func TestHandleRateSet(t *testing.T) {
	d := newTestDeps(t)
	id := addSession(d, tilesTakeoff(), services.ModeEstimation)

	rec := serve(t, d, HandleRateSet, jsonRequest(t, http.MethodPut, "/", rateRequest{BillName: "Tiles", Rate: ptr(100)}, "id", id))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	var resp sessionResponse
	testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
	if resp.Prices["Tiles"] != 100 {
		t.Errorf("prices = %v", resp.Prices)
	}
	if got := resp.Snapshot.Valuation.Totals.Contract; got != 600 {
		t.Errorf("contract total = %v, want 600", got)
	}

	rec = serve(t, d, HandleRateSet, jsonRequest(t, http.MethodPut, "/", rateRequest{BillName: "Tiles"}, "id", id))
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: status = %d", rec.Code)
	}
	if _, ok := sessionOf(t, d, id).Prices["Tiles"]; ok {
		t.Error("null rate should clear the price")
	}

	rec = serve(t, d, HandleRateSet, jsonRequest(t, http.MethodPut, "/", rateRequest{Rate: ptr(1)}, "id", id))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing bill name: status = %d, want 400", rec.Code)
	}
}

func TestHandleRateSuggestion(t *testing.T) {
	d := newTestDeps(t)
	id := addSession(d, tilesTakeoff(), services.ModeEstimation)

	rec := serve(t, d, HandleRateSuggestion, jsonRequest(t, http.MethodPost, "/", suggestionRequest{BillName: "Tiles", Suggestion: "ETB 950 to 1,100 per m2"}, "id", id))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := sessionOf(t, d, id).Prices["Tiles"]; got != 950 {
		t.Errorf("price = %v, want 950", got)
	}

	rec = serve(t, d, HandleRateSuggestion, jsonRequest(t, http.MethodPost, "/", suggestionRequest{BillName: "Tiles", Suggestion: "ask supplier"}, "id", id))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("no number: status = %d, want 422", rec.Code)
	}
	if got := sessionOf(t, d, id).Prices["Tiles"]; got != 950 {
		t.Errorf("failed suggestion changed price to %v", got)
	}
}

func TestHandleOverrideSet(t *testing.T) {
	d := newTestDeps(t)
	id := addSession(d, tilesTakeoff(), services.ModePayment)
	key := services.GroupKey{BillName: "Tiles", Unit: "m2", Category: services.CategoryFinishing}

	rec := serve(t, d, HandleOverrideSet, jsonRequest(t, http.MethodPut, "/", overrideRequest{GroupKey: key, Contract: ptr(40)}, "id", id))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	rec = serve(t, d, HandleOverrideSet, jsonRequest(t, http.MethodPut, "/", overrideRequest{GroupKey: key, Previous: ptr(2)}, "id", id))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	o := sessionOf(t, d, id).Overrides[key]
	if o.Contract == nil || *o.Contract != 40 || o.Previous == nil || *o.Previous != 2 {
		t.Errorf("override = %+v", o)
	}

	tests := []struct {
		name string
		body overrideRequest
	}{
		{"missing unit", overrideRequest{GroupKey: services.GroupKey{BillName: "Tiles", Category: services.CategoryFinishing}, Contract: ptr(1)}},
		{"nothing to set", overrideRequest{GroupKey: key}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, d, HandleOverrideSet, jsonRequest(t, http.MethodPut, "/", tt.body, "id", id))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleBreakdownSave(t *testing.T) {
	d := newTestDeps(t)
	id := addSession(d, tilesTakeoff(), services.ModeEstimation)
	body := breakdownRequest{
		GroupKey: services.GroupKey{BillName: "Tiles", Unit: "m2", Category: services.CategoryFinishing},
		Breakdown: services.RateBreakdown{
			Materials:   []services.RateComponent{{Name: "Tile", Cost: 60}, {Name: "Adhesive", Cost: 20}},
			Labor:       []services.RateComponent{{Name: "Tiler", Cost: 15}},
			Plant:       []services.RateComponent{{Name: "Cutter", Cost: 5}},
			OverheadPct: 10,
			ProfitPct:   10,
		},
	}

	rec := serve(t, d, HandleBreakdownSave, jsonRequest(t, http.MethodPut, "/", body, "id", id))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Rate float64 `json:"rate"`
	}
	testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
	if resp.Rate != 121 {
		t.Errorf("rate = %v, want 121", resp.Rate)
	}
	if got := sessionOf(t, d, id).Prices["Tiles"]; got != 121 {
		t.Errorf("price = %v, want 121", got)
	}
}

func TestHandleSettingsUpdate(t *testing.T) {
	d := newTestDeps(t)
	tk := tilesTakeoff()
	tk.Items[1].ContractQuantity = ptr(25)
	id := addSession(d, tk, services.ModeEstimation)

	body := map[string]any{"vatPct": 7.5, "projectCurrency": "USD", "mode": "payment"}
	rec := serve(t, d, HandleSettingsUpdate, jsonRequest(t, http.MethodPut, "/", body, "id", id))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}

	s := sessionOf(t, d, id)
	if s.Settings.VATPct != 7.5 || s.Settings.Currency != "USD" {
		t.Errorf("settings = %+v", s.Settings)
	}
	if s.Settings.ContingencyPct != 10 || s.Settings.UnitSystem != services.UnitMetric {
		t.Errorf("fields absent from the body changed: %+v", s.Settings)
	}
	if s.Mode != services.ModePayment {
		t.Errorf("mode = %q, want payment", s.Mode)
	}
	if len(s.Overrides) != 1 {
		t.Errorf("switching to payment seeded %d overrides, want 1", len(s.Overrides))
	}

	tests := []struct {
		name string
		body map[string]any
	}{
		{"unknown unit system", map[string]any{"unitSystem": "cubits"}},
		{"negative vat", map[string]any{"vatPct": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, d, HandleSettingsUpdate, jsonRequest(t, http.MethodPut, "/", tt.body, "id", id))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
	if s.Settings.VATPct != 7.5 {
		t.Error("rejected update changed the settings")
	}
}

func TestHandleMetaUpdate(t *testing.T) {
	d := newTestDeps(t)
	id := addSession(d, tilesTakeoff(), services.ModePayment)

	body := map[string]any{"client": "ACME Holdings", "certNo": "04"}
	rec := serve(t, d, HandleMetaUpdate, jsonRequest(t, http.MethodPut, "/", body, "id", id))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	meta := sessionOf(t, d, id).Meta
	if meta.Client != "ACME Holdings" || meta.CertNo != "04" {
		t.Errorf("meta = %+v", meta)
	}
	if meta.ProjectName != "Villa" || meta.ValuationDate != "2026-03-01" {
		t.Errorf("fields absent from the body changed: %+v", meta)
	}
}
