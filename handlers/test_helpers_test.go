package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/sirupsen/logrus"

	"constructboq/services"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app core.App, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// newTestDeps wires handlers over an in-memory wallet without a PocketBase
// app, so no ledger is written.
func newTestDeps(t *testing.T) *Deps {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Deps{
		Sessions: NewSessionRegistry(),
		Wallet:   services.NewWallet(services.NewMemoryStore(), map[string]int{"MYDREAM..123": 3}),
		Log:      logger,
		Defaults: services.DefaultSettings(),
		Now:      func() time.Time { return fixedNow },
	}
}

// jsonRequest builds a request with body encoded as JSON and the given path
// values set.
func jsonRequest(t *testing.T, method, target string, body any, pathValues ...string) *http.Request {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	return req
}

// serve runs handler h against req and returns the recorded response.
func serve(t *testing.T, d *Deps, h func(*Deps) func(*core.RequestEvent) error, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	if err := h(d)(newTestRequestEvent(d.App, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

// addSession registers a session directly and returns its ID.
func addSession(d *Deps, t services.TakeoffResult, mode services.Mode) string {
	s := services.NewSession(t, mode, d.Defaults, fixedNow)
	d.Sessions.Add(s)
	return s.Takeoff.ID
}

// sessionOf returns the live session for inspection.
func sessionOf(t *testing.T, d *Deps, id string) *services.Session {
	t.Helper()

	entry, ok := d.Sessions.Get(id)
	if !ok {
		t.Fatalf("session %s not registered", id)
	}
	return entry.s
}

func ptr(v float64) *float64 { return &v }

func tilesTakeoff() services.TakeoffResult {
	return services.TakeoffResult{
		ID:          "t1",
		ProjectName: "Villa",
		Items: []services.LineItem{
			{ID: "a", BillItemDescription: "Finishing Works: Tiles", Timesing: 1, Dimension: "10.00 x 0.60", Quantity: 6, Unit: "m2", Category: services.CategoryFinishing, Confidence: services.ConfidenceHigh, SourceRef: "A-101"},
			{ID: "b", BillItemDescription: "Sub Structure: Excavation", Timesing: 1, Quantity: 20, Unit: "m3", Category: services.CategorySubStruct, Confidence: services.ConfidenceLow, SourceRef: "S-201"},
		},
	}
}

