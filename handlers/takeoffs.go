package handlers

import (
	"maps"
	"net/http"
	"slices"

	"github.com/pocketbase/pocketbase/core"

	"constructboq/services"
)

// sessionResponse is the full state of a session after a recompute.
type sessionResponse struct {
	ID       string                `json:"id"`
	Takeoff  services.TakeoffResult `json:"takeoff"`
	Meta     services.DocumentMeta  `json:"meta"`
	Prices   map[string]float64     `json:"prices"`
	Snapshot services.Snapshot      `json:"snapshot"`
	Flagged  []string               `json:"lowConfidenceItems"`
}

// newSessionResponse copies the session state so the response can be
// encoded after the session lock is released.
func newSessionResponse(s *services.Session) sessionResponse {
	takeoff := s.Takeoff
	takeoff.Items = slices.Clone(s.Takeoff.Items)
	takeoff.RebarItems = slices.Clone(s.Takeoff.RebarItems)
	takeoff.TechnicalQueries = slices.Clone(s.Takeoff.TechnicalQueries)
	takeoff.SourceFiles = slices.Clone(s.Takeoff.SourceFiles)

	prices := maps.Clone(s.Prices)
	if prices == nil {
		prices = map[string]float64{}
	}
	resp := sessionResponse{
		ID:       s.Takeoff.ID,
		Takeoff:  takeoff,
		Meta:     s.Meta,
		Prices:   prices,
		Snapshot: s.Recompute(),
		Flagged:  []string{},
	}
	for _, item := range s.Takeoff.Items {
		if item.LowConfidence() {
			resp.Flagged = append(resp.Flagged, item.ID)
		}
	}
	return resp
}

// respondSession recomputes and writes the session state.
func respondSession(e *core.RequestEvent, status int, entry *sessionEntry) error {
	var resp sessionResponse
	entry.Do(func(s *services.Session) error {
		resp = newSessionResponse(s)
		return nil
	})
	return e.JSON(status, resp)
}

// HandleTakeoffCreate starts a session from an extraction payload. The mode
// comes from the ?mode= query parameter.
func HandleTakeoffCreate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var t services.TakeoffResult
		if !bindJSON(e, &t) {
			return nil
		}
		mode := services.ParseMode(e.Request.URL.Query().Get("mode"))

		s := services.NewSession(t, mode, d.Defaults, d.now())
		if err := services.ValidateTakeoff(s.Takeoff); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, err.Error())
		}
		return respondSession(e, http.StatusCreated, d.Sessions.Add(s))
	}
}

// HandleTakeoffDemo starts a session over the sample villa project.
func HandleTakeoffDemo(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		mode := services.ParseMode(e.Request.URL.Query().Get("mode"))
		now := d.now()
		s := services.NewSession(services.DemoTakeoff(mode, now), mode, d.Defaults, now)
		return respondSession(e, http.StatusCreated, d.Sessions.Add(s))
	}
}

// HandleTakeoffList lists the open sessions.
func HandleTakeoffList(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return e.JSON(http.StatusOK, map[string]any{"takeoffs": d.Sessions.List()})
	}
}

// HandleTakeoffGet returns the recomputed state of a session.
func HandleTakeoffGet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, ok := d.session(e)
		if !ok {
			return nil
		}
		return respondSession(e, http.StatusOK, entry)
	}
}

// HandleTakeoffDelete discards a session.
func HandleTakeoffDelete(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if !d.Sessions.Delete(e.Request.PathValue("id")) {
			return ErrorJSON(e, http.StatusNotFound, "Takeoff not found")
		}
		return e.NoContent(http.StatusNoContent)
	}
}

type mergeRequest struct {
	Takeoff services.TakeoffResult `json:"takeoff"`
	Files   []string               `json:"files"`
}

// HandleTakeoffMerge appends another analysed batch to a session.
func HandleTakeoffMerge(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		entry, ok := d.session(e)
		if !ok {
			return nil
		}
		var req mergeRequest
		if !bindJSON(e, &req) {
			return nil
		}
		req.Takeoff.Items = services.NormalizeItems(req.Takeoff.Items)
		if err := services.ValidateTakeoff(req.Takeoff); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, err.Error())
		}

		entry.Do(func(s *services.Session) error {
			s.Merge(req.Takeoff, req.Files, d.now())
			return nil
		})
		return respondSession(e, http.StatusOK, entry)
	}
}
