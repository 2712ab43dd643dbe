package handlers

import (
	"math"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"constructboq/services"
	"constructboq/testhelpers"
)

func TestHandleTakeoffSheet(t *testing.T) {
	d := newTestDeps(t)
	id := addSession(d, tilesTakeoff(), services.ModeEstimation)

	var resp struct {
		Sources  []string                  `json:"sources"`
		Sections []services.TakeoffSection `json:"sections"`
	}
	rec := serve(t, d, HandleTakeoffSheet, jsonRequest(t, http.MethodGet, "/api/takeoffs/"+id+"/takeoff-sheet", nil, "id", id))
	testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
	if want := []string{"All", "A-101", "S-201"}; !reflect.DeepEqual(resp.Sources, want) {
		t.Errorf("sources = %v, want %v", resp.Sources, want)
	}
	if len(resp.Sections) != 2 {
		t.Errorf("unfiltered sections = %d, want 2", len(resp.Sections))
	}

	rec = serve(t, d, HandleTakeoffSheet, jsonRequest(t, http.MethodGet, "/api/takeoffs/"+id+"/takeoff-sheet?source=S-201", nil, "id", id))
	testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
	if len(resp.Sections) != 1 || resp.Sections[0].Category != services.CategorySubStruct {
		t.Errorf("filtered sections = %+v", resp.Sections)
	}

	rec = serve(t, d, HandleTakeoffSheet, jsonRequest(t, http.MethodGet, "/api/takeoffs/"+id+"/takeoff-sheet?search=nothing-matches", nil, "id", id))
	if !strings.Contains(rec.Body.String(), `"sections":[]`) {
		t.Errorf("expected an empty sections array, got %s", rec.Body.String())
	}
}

func TestHandleCertificate(t *testing.T) {
	d := newTestDeps(t)
	id := addSession(d, tilesTakeoff(), services.ModePayment)
	s := sessionOf(t, d, id)
	s.SetRate("Excavation", 1000)
	s.Settings.PreviousPayments = 30000

	rec := serve(t, d, HandleCertificate, jsonRequest(t, http.MethodGet, "/", nil, "id", id))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Certificate services.Certificate `json:"certificate"`
		Lines       []struct {
			Label   string `json:"label"`
			Display string `json:"display"`
		} `json:"lines"`
		Statement string `json:"statement"`
	}
	testhelpers.DecodeJSON(t, rec.Body.String(), &resp)

	if len(resp.Lines) != 8 {
		t.Fatalf("lines = %d, want 8", len(resp.Lines))
	}
	if resp.Lines[6].Display != "-30000.00" {
		t.Errorf("previous payments line = %q", resp.Lines[6].Display)
	}
	if !strings.HasPrefix(resp.Statement, "Therefore we certify to contractor payable net amount of") {
		t.Errorf("statement = %q", resp.Statement)
	}
	if resp.Certificate.PreviousPayments != 30000 || resp.Certificate.Currency != "ETB" {
		t.Errorf("certificate = %+v", resp.Certificate)
	}
}

func TestHandleAnalytics(t *testing.T) {
	d := newTestDeps(t)
	id := addSession(d, tilesTakeoff(), services.ModeEstimation)
	sessionOf(t, d, id).SetRate("Excavation", 50)

	rec := serve(t, d, HandleAnalytics, jsonRequest(t, http.MethodGet, "/", nil, "id", id))
	var a services.Analytics
	testhelpers.DecodeJSON(t, rec.Body.String(), &a)
	if math.Abs(a.TotalProjectCost-1000) > 0.001 {
		t.Errorf("totalProjectCost = %v, want 1000", a.TotalProjectCost)
	}
	if len(a.Composition) != 4 {
		t.Errorf("composition slices = %d, want 4", len(a.Composition))
	}
}

func TestHandleWords(t *testing.T) {
	d := newTestDeps(t)

	tests := []struct {
		name   string
		query  string
		status int
		words  string
	}{
		{"dollars", "?amount=1250.50&currency=USD", http.StatusOK, "One Thousand Two Hundred Fifty Dollars and Fifty Cents"},
		{"default currency", "?amount=17", http.StatusOK, "Seventeen Birr Only"},
		{"missing amount", "", http.StatusBadRequest, ""},
		{"not a number", "?amount=lots", http.StatusBadRequest, ""},
		{"nan", "?amount=NaN", http.StatusBadRequest, ""},
		{"infinity", "?amount=Inf", http.StatusBadRequest, ""},
		{"negative infinity", "?amount=-Inf", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, d, HandleWords, jsonRequest(t, http.MethodGet, "/api/words"+tt.query, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var resp struct {
				Words string `json:"words"`
			}
			testhelpers.DecodeJSON(t, rec.Body.String(), &resp)
			if resp.Words != tt.words {
				t.Errorf("words = %q, want %q", resp.Words, tt.words)
			}
		})
	}
}
